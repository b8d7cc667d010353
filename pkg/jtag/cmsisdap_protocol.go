package jtag

import (
	"encoding/binary"
	"fmt"
)

// CMSIS-DAP command IDs.
const (
	CmdInfo         = 0x00
	CmdConnect      = 0x02
	CmdDisconnect   = 0x03
	CmdResetTarget  = 0x0A
	CmdSWJClock     = 0x11
	CmdJTAGSequence = 0x14
)

// DAP_Info IDs.
const (
	InfoVendorID    = 0x01
	InfoProductID   = 0x02
	InfoSerialNum   = 0x03
	InfoFirmwareVer = 0x04
	InfoPacketSize  = 0xFF
)

// DAP_Connect ports.
const (
	PortDefault = 0
	PortSWD     = 1
	PortJTAG    = 2
)

const (
	StatusOK    = 0x00
	StatusError = 0xFF
)

// DAP_JTAG_Sequence info byte.
const (
	JTAGSeqTCKMask = 0x3F // clock count, 0 means 64
	JTAGSeqTMS     = 0x40
	JTAGSeqTDO     = 0x80

	// MaxSequenceBits is the longest run one sequence can carry.
	MaxSequenceBits = 64
)

// CMSISDAPProtocol encodes requests and decodes responses. It keeps no
// state beyond the negotiated packet size.
type CMSISDAPProtocol struct {
	PacketSize int
}

func NewCMSISDAPProtocol(packetSize int) *CMSISDAPProtocol {
	return &CMSISDAPProtocol{PacketSize: packetSize}
}

// checkResponse validates the echoed command ID and, when status is set,
// the status byte.
func checkResponse(resp []byte, cmd byte, status bool) error {
	if len(resp) < 2 {
		return fmt.Errorf("cmsis-dap: response to %#02x too short (%d bytes)", cmd, len(resp))
	}
	if resp[0] != cmd {
		return fmt.Errorf("cmsis-dap: response to %#02x carries command %#02x", cmd, resp[0])
	}
	if status && resp[1] != StatusOK {
		return fmt.Errorf("cmsis-dap: command %#02x failed with status %#02x", cmd, resp[1])
	}
	return nil
}

func (p *CMSISDAPProtocol) EncodeInfo(id byte) []byte {
	return []byte{CmdInfo, id}
}

// DecodeInfo returns the string payload of a DAP_Info response.
func (p *CMSISDAPProtocol) DecodeInfo(resp []byte) (string, error) {
	if err := checkResponse(resp, CmdInfo, false); err != nil {
		return "", err
	}
	n := int(resp[1])
	if len(resp) < 2+n {
		return "", fmt.Errorf("cmsis-dap: info payload truncated")
	}
	// Strings are NUL terminated inside the length.
	s := resp[2 : 2+n]
	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return string(s), nil
}

// DecodePacketSize reads the 16-bit payload of DAP_Info(InfoPacketSize).
func (p *CMSISDAPProtocol) DecodePacketSize(resp []byte) (int, error) {
	if err := checkResponse(resp, CmdInfo, false); err != nil {
		return 0, err
	}
	if resp[1] != 2 || len(resp) < 4 {
		return 0, fmt.Errorf("cmsis-dap: packet size payload is %d bytes", resp[1])
	}
	return int(binary.LittleEndian.Uint16(resp[2:4])), nil
}

func (p *CMSISDAPProtocol) EncodeConnect(port byte) []byte {
	return []byte{CmdConnect, port}
}

// DecodeConnect returns the port the probe connected, 0 meaning failure.
func (p *CMSISDAPProtocol) DecodeConnect(resp []byte) (byte, error) {
	if err := checkResponse(resp, CmdConnect, false); err != nil {
		return 0, err
	}
	if resp[1] == PortDefault {
		return 0, fmt.Errorf("cmsis-dap: connect refused")
	}
	return resp[1], nil
}

func (p *CMSISDAPProtocol) EncodeDisconnect() []byte {
	return []byte{CmdDisconnect}
}

func (p *CMSISDAPProtocol) DecodeDisconnect(resp []byte) error {
	return checkResponse(resp, CmdDisconnect, true)
}

func (p *CMSISDAPProtocol) EncodeSetClock(hz uint32) []byte {
	cmd := make([]byte, 5)
	cmd[0] = CmdSWJClock
	binary.LittleEndian.PutUint32(cmd[1:], hz)
	return cmd
}

func (p *CMSISDAPProtocol) DecodeSetClock(resp []byte) error {
	return checkResponse(resp, CmdSWJClock, true)
}

func (p *CMSISDAPProtocol) EncodeResetTarget() []byte {
	return []byte{CmdResetTarget}
}

func (p *CMSISDAPProtocol) DecodeResetTarget(resp []byte) error {
	return checkResponse(resp, CmdResetTarget, true)
}

// JTAGSequence is one run of clocks with a constant TMS.
type JTAGSequence struct {
	Info byte
	TDI  []byte
}

// NewJTAGSequence builds a run of tck clocks, 1 to 64.
func NewJTAGSequence(tck int, tms, captureTDO bool, tdi []byte) JTAGSequence {
	info := byte(tck & JTAGSeqTCKMask)
	if tms {
		info |= JTAGSeqTMS
	}
	if captureTDO {
		info |= JTAGSeqTDO
	}
	return JTAGSequence{Info: info, TDI: tdi}
}

func (seq JTAGSequence) TCKCount() int {
	if n := int(seq.Info & JTAGSeqTCKMask); n != 0 {
		return n
	}
	return MaxSequenceBits
}

func (seq JTAGSequence) TMS() bool { return seq.Info&JTAGSeqTMS != 0 }

func (seq JTAGSequence) CaptureTDO() bool { return seq.Info&JTAGSeqTDO != 0 }

// EncodeJTAGSequence lays out [cmd][count]([info][tdi...])*.
func (p *CMSISDAPProtocol) EncodeJTAGSequence(seqs []JTAGSequence) []byte {
	cmd := []byte{CmdJTAGSequence, byte(len(seqs))}
	for _, seq := range seqs {
		cmd = append(cmd, seq.Info)
		cmd = append(cmd, seq.TDI[:(seq.TCKCount()+7)/8]...)
	}
	return cmd
}

// DecodeJTAGSequence returns one TDO buffer per capturing sequence.
func (p *CMSISDAPProtocol) DecodeJTAGSequence(resp []byte, seqs []JTAGSequence) ([][]byte, error) {
	if err := checkResponse(resp, CmdJTAGSequence, true); err != nil {
		return nil, err
	}
	var out [][]byte
	off := 2
	for _, seq := range seqs {
		if !seq.CaptureTDO() {
			continue
		}
		n := (seq.TCKCount() + 7) / 8
		if off+n > len(resp) {
			return nil, fmt.Errorf("cmsis-dap: TDO data truncated")
		}
		out = append(out, append([]byte(nil), resp[off:off+n]...))
		off += n
	}
	return out, nil
}
