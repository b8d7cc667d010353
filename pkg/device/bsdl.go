package device

import _ "embed"

// BSDL is the boundary-scan description of the device.
//
//go:embed ttjtag.bsd
var BSDL []byte

// Entity is the BSDL entity name of the device.
const Entity = "TT_JTAG_COUNTER"
