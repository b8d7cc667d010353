package jtag

import (
	"errors"
	"fmt"
	"sync"
)

// Transport moves one CMSIS-DAP command and its response.
type Transport interface {
	WriteRead(cmd []byte) ([]byte, error)
	PacketSize() int
	Close() error
}

// CMSISDAPAdapter drives a CMSIS-DAP probe in JTAG mode.
type CMSISDAPAdapter struct {
	mu sync.Mutex

	transport Transport
	protocol  *CMSISDAPProtocol
	info      AdapterInfo
	speedHz   int
	connected bool
}

// OpenCMSISDAP opens the first probe matching vid and pid over USB.
func OpenCMSISDAP(vid, pid uint16, serial string) (*CMSISDAPAdapter, error) {
	t, err := OpenUSBTransport(vid, pid, serial)
	if err != nil {
		return nil, err
	}
	a, err := NewCMSISDAPAdapter(t)
	if err != nil {
		t.Close()
		return nil, err
	}
	return a, nil
}

// NewCMSISDAPAdapter queries the probe, connects the JTAG port and sets a
// 1 MHz clock.
func NewCMSISDAPAdapter(t Transport) (*CMSISDAPAdapter, error) {
	a := &CMSISDAPAdapter{
		transport: t,
		protocol:  NewCMSISDAPProtocol(t.PacketSize()),
		speedHz:   1_000_000,
	}
	if err := a.queryInfo(); err != nil {
		return nil, fmt.Errorf("cmsis-dap: query info: %w", err)
	}
	if err := a.connect(); err != nil {
		return nil, fmt.Errorf("cmsis-dap: connect: %w", err)
	}
	if err := a.SetSpeed(a.speedHz); err != nil {
		return nil, err
	}
	log.Infof("cmsis-dap: %s %s (serial %s, firmware %s)", a.info.Vendor, a.info.Model, a.info.SerialNumber, a.info.Firmware)
	return a, nil
}

func (a *CMSISDAPAdapter) queryInfo() error {
	fields := []struct {
		id  byte
		dst *string
	}{
		{InfoVendorID, &a.info.Vendor},
		{InfoProductID, &a.info.Model},
		{InfoSerialNum, &a.info.SerialNumber},
		{InfoFirmwareVer, &a.info.Firmware},
	}
	for _, f := range fields {
		resp, err := a.transport.WriteRead(a.protocol.EncodeInfo(f.id))
		if err != nil {
			return err
		}
		if *f.dst, err = a.protocol.DecodeInfo(resp); err != nil {
			return err
		}
	}
	a.info.Name = "CMSIS-DAP"
	a.info.MinFrequency = 1_000
	a.info.MaxFrequency = 10_000_000
	a.info.SupportsSRST = true
	return nil
}

func (a *CMSISDAPAdapter) connect() error {
	resp, err := a.transport.WriteRead(a.protocol.EncodeConnect(PortJTAG))
	if err != nil {
		return err
	}
	port, err := a.protocol.DecodeConnect(resp)
	if err != nil {
		return err
	}
	if port != PortJTAG {
		return fmt.Errorf("probe connected port %d, want JTAG", port)
	}
	a.connected = true
	return nil
}

func (a *CMSISDAPAdapter) Info() (AdapterInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.info, nil
}

func (a *CMSISDAPAdapter) ShiftIR(tms, tdi []byte, bits int) ([]byte, error) {
	return a.shift(tms, tdi, bits)
}

func (a *CMSISDAPAdapter) ShiftDR(tms, tdi []byte, bits int) ([]byte, error) {
	return a.shift(tms, tdi, bits)
}

// shift splits the vectors into constant-TMS runs and sends as many runs per
// command as fit in a packet.
func (a *CMSISDAPAdapter) shift(tms, tdi []byte, bits int) ([]byte, error) {
	if _, err := ValidateShiftBuffers(tms, tdi, bits); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var tdo []bool
	for _, batch := range batchSequences(buildSequences(tms, tdi, bits), a.protocol.PacketSize) {
		resp, err := a.transport.WriteRead(a.protocol.EncodeJTAGSequence(batch))
		if err != nil {
			return nil, fmt.Errorf("cmsis-dap: shift: %w", err)
		}
		chunks, err := a.protocol.DecodeJTAGSequence(resp, batch)
		if err != nil {
			return nil, err
		}
		for i, chunk := range chunks {
			tdo = append(tdo, UnpackBits(chunk, batch[i].TCKCount())...)
		}
	}
	buf := PackBits(tdo)
	if len(buf) < (bits+7)/8 {
		buf = append(buf, make([]byte, (bits+7)/8-len(buf))...)
	}
	return buf, nil
}

// buildSequences groups bits into runs of equal TMS, at most 64 clocks each.
// Every run captures TDO.
func buildSequences(tms, tdi []byte, bits int) []JTAGSequence {
	var seqs []JTAGSequence
	for start := 0; start < bits; {
		level := bitAt(tms, start)
		n := 1
		for start+n < bits && n < MaxSequenceBits && bitAt(tms, start+n) == level {
			n++
		}
		run := make([]bool, n)
		for i := range run {
			run[i] = bitAt(tdi, start+i)
		}
		seqs = append(seqs, NewJTAGSequence(n, level, true, PackBits(run)))
		start += n
	}
	return seqs
}

// batchSequences splits seqs so every command and its response fit in one
// packet.
func batchSequences(seqs []JTAGSequence, packetSize int) [][]JTAGSequence {
	var batches [][]JTAGSequence
	var cur []JTAGSequence
	cmdLen, respLen := 2, 2
	for _, seq := range seqs {
		n := (seq.TCKCount() + 7) / 8
		if len(cur) > 0 && (cmdLen+1+n > packetSize || respLen+n > packetSize || len(cur) == 255) {
			batches = append(batches, cur)
			cur, cmdLen, respLen = nil, 2, 2
		}
		cur = append(cur, seq)
		cmdLen += 1 + n
		respLen += n
	}
	if len(cur) > 0 {
		batches = append(batches, cur)
	}
	return batches
}

// ResetTAP pulses nRESET with DAP_ResetTarget when hard is set, otherwise it
// clocks five TMS=1 cycles.
func (a *CMSISDAPAdapter) ResetTAP(hard bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if hard {
		resp, err := a.transport.WriteRead(a.protocol.EncodeResetTarget())
		if err != nil {
			return fmt.Errorf("cmsis-dap: reset target: %w", err)
		}
		return a.protocol.DecodeResetTarget(resp)
	}
	seq := []JTAGSequence{NewJTAGSequence(5, true, false, []byte{0})}
	resp, err := a.transport.WriteRead(a.protocol.EncodeJTAGSequence(seq))
	if err != nil {
		return fmt.Errorf("cmsis-dap: TAP reset: %w", err)
	}
	_, err = a.protocol.DecodeJTAGSequence(resp, seq)
	return err
}

func (a *CMSISDAPAdapter) SetSpeed(hz int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := checkSpeed(a.info, hz); err != nil {
		return err
	}
	resp, err := a.transport.WriteRead(a.protocol.EncodeSetClock(uint32(hz)))
	if err != nil {
		return fmt.Errorf("cmsis-dap: set clock: %w", err)
	}
	if err := a.protocol.DecodeSetClock(resp); err != nil {
		return err
	}
	a.speedHz = hz
	return nil
}

// Close disconnects the probe and releases the transport.
func (a *CMSISDAPAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.connected {
		resp, err := a.transport.WriteRead(a.protocol.EncodeDisconnect())
		if err == nil {
			err = a.protocol.DecodeDisconnect(resp)
		}
		errs = append(errs, err)
		a.connected = false
	}
	errs = append(errs, a.transport.Close())
	return errors.Join(errs...)
}
