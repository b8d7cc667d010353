// Package deviceinfo maps IDCODEs to known parts.
package deviceinfo

import "github.com/OpenTraceLab/ttjtag/pkg/idcode"

// DeviceInfo describes a known part.
type DeviceInfo struct {
	IDCode       idcode.IDCode
	Manufacturer idcode.Manufacturer

	Name        string
	Family      string
	Description string

	HasBoundaryScan bool
	IRLength        int
	BoundaryLength  int
	// BSDLEntity names the entity in the part's BSDL file.
	BSDLEntity string
	Known      bool
}
