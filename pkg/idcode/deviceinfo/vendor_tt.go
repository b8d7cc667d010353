package deviceinfo

func init() {
	register(key{ManufacturerCode: 0x77E, PartNumber: 0x002A}, DeviceInfo{
		Name:            "TT JTAG counter",
		Family:          "Tiny Tapeout",
		Description:     "4-bit counter with 7-segment output behind a 26-bit boundary",
		HasBoundaryScan: true,
		IRLength:        4,
		BoundaryLength:  26,
		BSDLEntity:      "TT_JTAG_COUNTER",
	})
}
