package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/ttjtag/internal/config"
	"github.com/OpenTraceLab/ttjtag/pkg/bsr"
	"github.com/OpenTraceLab/ttjtag/pkg/device"
	"github.com/OpenTraceLab/ttjtag/pkg/jtag"
	"github.com/OpenTraceLab/ttjtag/pkg/session"
)

// openAdapter connects to the adapter named in cfg. The returned function
// releases it.
func openAdapter(cfg *config.Config) (jtag.Adapter, func() error, error) {
	switch cfg.Adapter {
	case config.AdapterSim:
		var f jtag.Fixture = jtag.StaticInputs(cfg.Inputs)
		if cfg.Fixture == config.FixtureLoopback {
			f = jtag.StraightLoopback()
		}
		a := jtag.NewDeviceAdapter(device.New(device.Config{Strict: cfg.Strict}), f)
		if err := a.SetSpeed(cfg.SpeedHz); err != nil {
			return nil, nil, err
		}
		return a, func() error { return nil }, nil

	case config.AdapterCMSISDAP:
		a, err := jtag.OpenCMSISDAP(jtag.VendorIDRaspberryPi, jtag.ProductIDCMSISDAP, cfg.Serial)
		if err != nil {
			return nil, nil, err
		}
		if err := a.SetSpeed(cfg.SpeedHz); err != nil {
			a.Close()
			return nil, nil, err
		}
		return a, a.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown adapter %q", cfg.Adapter)
}

// openRepository returns the built-in descriptions plus any in cfg.BSDLDir.
func openRepository(cfg *config.Config) (*session.MemoryRepository, error) {
	repo, err := session.DefaultRepository()
	if err != nil {
		return nil, err
	}
	if cfg.BSDLDir != "" {
		if err := repo.LoadDir(cfg.BSDLDir); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// connection bundles an open session with its identified target.
type connection struct {
	sess   *session.Session
	target *session.Target
	close  func() error
}

// connect opens the adapter and identifies the device. A device without a
// BSDL description is returned together with the lookup error.
func connect(cfg *config.Config) (*connection, error) {
	repo, err := openRepository(cfg)
	if err != nil {
		return nil, err
	}
	adapter, closer, err := openAdapter(cfg)
	if err != nil {
		return nil, err
	}
	sess := session.New(adapter, repo)
	if err := sess.Reset(true); err != nil {
		closer()
		return nil, err
	}
	target, err := sess.Identify()
	if target == nil {
		closer()
		return nil, err
	}
	return &connection{sess: sess, target: target, close: closer}, err
}

// controller connects and builds a boundary-scan controller. It needs a
// description of the device.
func controller(cfg *config.Config) (*bsr.Controller, func() error, error) {
	conn, err := connect(cfg)
	if err != nil {
		if conn != nil {
			conn.close()
		}
		return nil, nil, err
	}
	ctl, err := bsr.NewController(conn.sess, conn.target)
	if err != nil {
		conn.close()
		return nil, nil, err
	}
	return ctl, conn.close, nil
}
