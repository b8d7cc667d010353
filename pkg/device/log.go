package device

import "github.com/btcsuite/btclog"

// log is disabled by default until UseLogger is called.
var log = btclog.Disabled

// UseLogger sets the logger used by the device model.
func UseLogger(logger btclog.Logger) {
	log = logger
}
