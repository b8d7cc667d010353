package cmd

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog"

	"github.com/OpenTraceLab/ttjtag/pkg/bsr"
	"github.com/OpenTraceLab/ttjtag/pkg/device"
	"github.com/OpenTraceLab/ttjtag/pkg/interconnect"
	"github.com/OpenTraceLab/ttjtag/pkg/jtag"
	"github.com/OpenTraceLab/ttjtag/pkg/session"
)

// logWriter sends log lines to stderr so command output on stdout stays
// machine readable.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	return os.Stderr.Write(p)
}

// One backend feeds every subsystem logger. Add new subsystems here and to
// subsystemLoggers.
var (
	backendLog = btclog.NewBackend(logWriter{})

	mainLog = backendLog.Logger("TTJG")
	devcLog = backendLog.Logger("DEVC")
	jtagLog = backendLog.Logger("JTAG")
	sesnLog = backendLog.Logger("SESN")
	bsrLog  = backendLog.Logger("BSR")
	ictLog  = backendLog.Logger("ICT")
)

func init() {
	device.UseLogger(devcLog)
	jtag.UseLogger(jtagLog)
	session.UseLogger(sesnLog)
	bsr.UseLogger(bsrLog)
	interconnect.UseLogger(ictLog)
}

var subsystemLoggers = map[string]btclog.Logger{
	"TTJG": mainLog,
	"DEVC": devcLog,
	"JTAG": jtagLog,
	"SESN": sesnLog,
	"BSR":  bsrLog,
	"ICT":  ictLog,
}

// setLogLevels sets every subsystem to the named level.
func setLogLevels(name string) error {
	level, ok := btclog.LevelFromString(name)
	if !ok {
		return fmt.Errorf("unknown log level %q", name)
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
	return nil
}
