package interconnect

import "github.com/btcsuite/btclog"

var log = btclog.Disabled

// UseLogger sets the logger for interconnect discovery.
func UseLogger(logger btclog.Logger) {
	log = logger
}
