package deviceinfo

import "github.com/OpenTraceLab/ttjtag/pkg/idcode"

type key struct {
	ManufacturerCode uint16
	PartNumber       uint16
}

var db = make(map[key]DeviceInfo)

func register(k key, info DeviceInfo) {
	info.Known = true
	db[k] = info
}

// Lookup returns what is known about the part behind rawID. The version
// field is ignored. Unknown parts still get their decoded IDCODE and
// manufacturer.
func Lookup(rawID uint32) DeviceInfo {
	id := idcode.ParseIDCode(rawID)
	m, _ := idcode.LookupManufacturer(id.ManufacturerCode)

	if info, ok := db[key{ManufacturerCode: id.ManufacturerCode, PartNumber: id.PartNumber}]; ok {
		info.IDCode = id
		info.Manufacturer = m
		return info
	}
	return DeviceInfo{
		IDCode:       id,
		Manufacturer: m,
		Name:         "Unknown device",
		Description:  "No entry in device database",
	}
}
