package session

import "github.com/btcsuite/btclog"

var log = btclog.Disabled

// UseLogger sets the logger for scan sessions.
func UseLogger(logger btclog.Logger) {
	log = logger
}
