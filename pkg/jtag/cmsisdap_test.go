package jtag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeProbe answers CMSIS-DAP commands the way a probe with TDO wired to
// TDI would.
type fakeProbe struct {
	packetSize int
	sent       [][]byte
	closed     bool
	failClock  bool
	strings    map[byte]string
}

func newFakeProbe(packetSize int) *fakeProbe {
	return &fakeProbe{
		packetSize: packetSize,
		strings: map[byte]string{
			InfoVendorID:    "Raspberry Pi",
			InfoProductID:   "Debug Probe",
			InfoSerialNum:   "E6633861A3",
			InfoFirmwareVer: "2.1.0",
		},
	}
}

func (f *fakeProbe) PacketSize() int { return f.packetSize }

func (f *fakeProbe) Close() error {
	f.closed = true
	return nil
}

func (f *fakeProbe) WriteRead(cmd []byte) ([]byte, error) {
	f.sent = append(f.sent, append([]byte(nil), cmd...))
	if len(cmd) > f.packetSize {
		return nil, fmt.Errorf("command of %d bytes", len(cmd))
	}
	switch cmd[0] {
	case CmdInfo:
		s := f.strings[cmd[1]]
		resp := []byte{CmdInfo, byte(len(s) + 1)}
		return append(append(resp, s...), 0), nil
	case CmdConnect:
		return []byte{CmdConnect, cmd[1]}, nil
	case CmdSWJClock:
		if f.failClock {
			return []byte{CmdSWJClock, StatusError}, nil
		}
		return []byte{CmdSWJClock, StatusOK}, nil
	case CmdDisconnect, CmdResetTarget:
		return []byte{cmd[0], StatusOK}, nil
	case CmdJTAGSequence:
		resp := []byte{CmdJTAGSequence, StatusOK}
		off := 2
		for i := 0; i < int(cmd[1]); i++ {
			seq := JTAGSequence{Info: cmd[off]}
			n := (seq.TCKCount() + 7) / 8
			if seq.CaptureTDO() {
				resp = append(resp, cmd[off+1:off+1+n]...)
			}
			off += 1 + n
		}
		if len(resp) > f.packetSize {
			return nil, fmt.Errorf("response of %d bytes", len(resp))
		}
		return resp, nil
	}
	return nil, errors.New("unknown command")
}

func (f *fakeProbe) commands() []byte {
	var ids []byte
	for _, cmd := range f.sent {
		ids = append(ids, cmd[0])
	}
	return ids
}

func TestCMSISDAPAdapterOpen(t *testing.T) {
	probe := newFakeProbe(64)
	a, err := NewCMSISDAPAdapter(probe)
	require.NoError(t, err)

	info, err := a.Info()
	require.NoError(t, err)
	require.Equal(t, "Raspberry Pi", info.Vendor)
	require.Equal(t, "E6633861A3", info.SerialNumber)
	require.Equal(t, []byte{CmdInfo, CmdInfo, CmdInfo, CmdInfo, CmdConnect, CmdSWJClock}, probe.commands())

	require.NoError(t, a.Close())
	require.True(t, probe.closed)
	require.Equal(t, byte(CmdDisconnect), probe.sent[len(probe.sent)-1][0])
}

func TestCMSISDAPAdapterOpenFailsOnClock(t *testing.T) {
	probe := newFakeProbe(64)
	probe.failClock = true
	_, err := NewCMSISDAPAdapter(probe)
	require.Error(t, err)
}

func TestCMSISDAPAdapterShiftLoopsBack(t *testing.T) {
	probe := newFakeProbe(64)
	a, err := NewCMSISDAPAdapter(probe)
	require.NoError(t, err)
	probe.sent = nil

	const bits = 300
	tms := make([]bool, bits)
	tdi := make([]bool, bits)
	for i := range tms {
		tms[i] = i%7 == 0 || i > 200
		tdi[i] = i%3 == 1
	}
	tdo, err := a.ShiftDR(PackBits(tms), PackBits(tdi), bits)
	require.NoError(t, err)
	require.Equal(t, PackBits(tdi), tdo)

	require.Greater(t, len(probe.sent), 1, "shift should need several packets")
	for _, cmd := range probe.sent {
		require.LessOrEqual(t, len(cmd), probe.packetSize)
	}
}

func TestCMSISDAPAdapterResets(t *testing.T) {
	probe := newFakeProbe(64)
	a, err := NewCMSISDAPAdapter(probe)
	require.NoError(t, err)
	probe.sent = nil

	require.NoError(t, a.ResetTAP(true))
	require.NoError(t, a.ResetTAP(false))
	require.Equal(t, []byte{CmdResetTarget, CmdJTAGSequence}, probe.commands())
	require.Equal(t, []byte{CmdJTAGSequence, 1, 0x45, 0x00}, probe.sent[1])
}

func TestCMSISDAPAdapterSpeedRange(t *testing.T) {
	a, err := NewCMSISDAPAdapter(newFakeProbe(64))
	require.NoError(t, err)
	require.NoError(t, a.SetSpeed(10_000_000))
	require.Error(t, a.SetSpeed(20_000_000))
}

func TestBuildSequences(t *testing.T) {
	tests := []struct {
		name string
		tms  []byte
		bits int
		want []int
	}{
		{"constant low", nil, 8, []int{8}},
		{"split at 64", nil, 130, []int{64, 64, 2}},
		{"tms edge", []byte{0x0F}, 8, []int{4, 4}},
		{"last bit exits", []byte{0x00, 0x00, 0x00, 0x80}, 32, []int{31, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seqs := buildSequences(tt.tms, nil, tt.bits)
			var got []int
			for _, seq := range seqs {
				got = append(got, seq.TCKCount())
				require.True(t, seq.CaptureTDO())
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBatchSequencesFitPacket(t *testing.T) {
	var seqs []JTAGSequence
	for i := 0; i < 10; i++ {
		seqs = append(seqs, NewJTAGSequence(64, false, true, make([]byte, 8)))
	}
	batches := batchSequences(seqs, 64)
	require.Len(t, batches, 2)
	require.Len(t, batches[0], 6)
	require.Len(t, batches[1], 4)
}
