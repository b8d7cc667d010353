// Package idcode decodes IEEE 1149.1 IDCODE values.
package idcode

import "fmt"

// IDCode is a decoded 32-bit IDCODE.
type IDCode struct {
	Raw              uint32
	Version          uint8  // [31:28]
	PartNumber       uint16 // [27:12]
	ManufacturerCode uint16 // [11:1], JEP106 bank and identity
	HasIDCode        bool   // bit 0
}

// Manufacturer is a JEP106 table entry.
type Manufacturer struct {
	Code         uint16
	Name         string
	Abbreviation string
}

// ParseIDCode splits raw into its fields.
func ParseIDCode(raw uint32) IDCode {
	return IDCode{
		Raw:              raw,
		Version:          uint8(raw >> 28),
		PartNumber:       uint16(raw >> 12),
		ManufacturerCode: uint16(raw>>1) & 0x7FF,
		HasIDCode:        raw&1 == 1,
	}
}

// Bank returns the JEP106 bank, counting from 1.
func (id IDCode) Bank() int { return int(id.ManufacturerCode>>7) + 1 }

// Identity returns the 7-bit JEP106 identity within the bank.
func (id IDCode) Identity() uint8 { return uint8(id.ManufacturerCode & 0x7F) }

// Validate checks the fields 1149.1 constrains. A bypass-only device shifts
// out a leading 0 and no IDCODE.
func (id IDCode) Validate() error {
	if !id.HasIDCode {
		return fmt.Errorf("idcode: %#08x: bit 0 clear, device has no IDCODE", id.Raw)
	}
	if id.Identity() == 0x7F {
		return fmt.Errorf("idcode: %#08x: manufacturer identity 0x7F is reserved", id.Raw)
	}
	if id.Raw == 0xFFFFFFFF {
		return fmt.Errorf("idcode: all ones, TDO stuck high")
	}
	return nil
}

func (id IDCode) String() string {
	return fmt.Sprintf("%#08x (version %d, part %#04x, manufacturer %#03x)", id.Raw, id.Version, id.PartNumber, id.ManufacturerCode)
}
