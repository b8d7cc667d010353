// Package bsr (Boundary Scan Runtime) provides a pin-centric API for
// boundary-scan operations on a single identified device.
//
// A Controller keeps the boundary vector the host last shifted and turns pin
// operations into instruction loads and DR scans through a session:
//
//	sess := session.New(adapter, repo)
//	target, err := sess.Identify()
//	ctl, err := bsr.NewController(sess, target)
//
//	// Observe the pins without disturbing the core.
//	snap, err := ctl.Sample()
//
//	// Preload safe outputs, then take the pins.
//	err = ctl.Preload(bsr.BusValues("UO_OUT", 8, 0x00))
//	snap, err = ctl.Extest()
//	err = ctl.DrivePin("UO_OUT3", true)
//
// Captures are returned as a Snapshot keyed by BSDL port name. Cell 0 is the
// cell nearest TDO and is shifted first.
package bsr
