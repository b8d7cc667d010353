package bsr

import "github.com/btcsuite/btclog"

var log = btclog.Disabled

// UseLogger sets the logger for boundary-scan operations.
func UseLogger(logger btclog.Logger) {
	log = logger
}
