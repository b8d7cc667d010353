package interconnect

import (
	"context"
	"fmt"

	"github.com/OpenTraceLab/ttjtag/pkg/bsr"
)

// Progress reports discovery state.
type Progress struct {
	Phase     string // init, scanning, finalizing
	Driver    string
	Index     int
	Total     int
	NetsFound int
}

// DiscoverNetlist drives each candidate output and connects it to every
// input that follows it. progress may be nil.
func DiscoverNetlist(ctx context.Context, ctl *bsr.Controller, cfg *Config, progress chan<- Progress) (*Netlist, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	desc := ctl.Target().Desc

	var drivers []string
	for _, port := range desc.Pins.Outputs() {
		if cfg.ShouldScanPin(port) {
			drivers = append(drivers, port)
		}
	}
	if len(drivers) == 0 {
		return nil, fmt.Errorf("interconnect: no candidate outputs on %s", desc.Entity)
	}
	inputs := desc.Pins.Inputs()

	report := func(p Progress) error {
		if progress == nil {
			return nil
		}
		select {
		case progress <- p:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := report(Progress{Phase: "init", Total: len(drivers)}); err != nil {
		return nil, err
	}

	nl := NewNetlist(append(append([]string(nil), drivers...), inputs...))
	found := 0
	for i, driver := range drivers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := report(Progress{Phase: "scanning", Driver: driver, Index: i, Total: len(drivers), NetsFound: found}); err != nil {
			return nil, err
		}

		followers, err := detectFollowers(ctl, drivers, inputs, driver, cfg)
		if err != nil {
			return nil, fmt.Errorf("interconnect: drive %s: %w", driver, err)
		}
		for _, in := range followers {
			nl.Connect(driver, in)
		}
		if len(followers) > 0 {
			found++
		}
		log.Debugf("%s -> %v", driver, followers)
	}

	if err := report(Progress{Phase: "finalizing", Index: len(drivers), Total: len(drivers), NetsFound: found}); err != nil {
		return nil, err
	}
	// Leave every output low.
	if err := ctl.Drive(levels(drivers, false)); err != nil {
		return nil, fmt.Errorf("interconnect: park outputs: %w", err)
	}
	nl.Finalize()
	log.Infof("%s: %d nets", desc.Entity, nl.NetCount())
	return nl, nil
}

// detectFollowers returns the inputs that followed driver in at least
// MinToggleStrength cycles.
func detectFollowers(ctl *bsr.Controller, drivers, inputs []string, driver string, cfg *Config) ([]string, error) {
	hits := make(map[string]int)
	for r := 0; r < cfg.RepeatsPerPin; r++ {
		up, err := toggle(ctl, drivers, driver, false)
		if err != nil {
			return nil, err
		}
		var down map[string]bool
		if cfg.RequireSymmetricToggle {
			if down, err = toggle(ctl, drivers, driver, true); err != nil {
				return nil, err
			}
		}
		for _, in := range inputs {
			if up[in] && (down == nil || down[in]) {
				hits[in]++
			}
		}
	}
	var out []string
	for _, in := range inputs {
		if hits[in] >= cfg.MinToggleStrength {
			out = append(out, in)
		}
	}
	return out, nil
}

// toggle parks every output at idle, then moves driver away from idle and
// back, capturing the inputs at each step. It reports the inputs that
// tracked the driver at all three steps.
func toggle(ctl *bsr.Controller, drivers []string, driver string, idle bool) (map[string]bool, error) {
	steps := []bool{idle, !idle, idle}
	var caps []bsr.Snapshot
	for _, level := range steps {
		values := levels(drivers, idle)
		values[driver] = level
		if err := ctl.Drive(values); err != nil {
			return nil, err
		}
		snap, err := ctl.CaptureAll()
		if err != nil {
			return nil, err
		}
		caps = append(caps, snap)
	}
	followed := make(map[string]bool)
	for port := range caps[0].Inputs {
		followed[port] = caps[0].Inputs[port] == steps[0] &&
			caps[1].Inputs[port] == steps[1] &&
			caps[2].Inputs[port] == steps[2]
	}
	return followed, nil
}

func levels(ports []string, v bool) map[string]bool {
	m := make(map[string]bool, len(ports))
	for _, p := range ports {
		m[p] = v
	}
	return m
}
