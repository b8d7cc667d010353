package jtag

import "github.com/btcsuite/btclog"

var log = btclog.Disabled

// UseLogger sets the logger for adapters.
func UseLogger(logger btclog.Logger) {
	log = logger
}
