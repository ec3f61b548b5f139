package bluenrg

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LogMode configures the destination for debug logs.
type LogMode int

const (
	LogModeSilent LogMode = 0 // disable logs
	LogModeStdErr LogMode = 1 // log to stderr
	LogModeLogger LogMode = 2 // log to the supplied logrus logger
)

var (
	silentLogger = newLogger(io.Discard)
	stderrLogger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	return l
}

func (d *Driver) logger() logrus.FieldLogger {
	switch d.LogMode {
	case LogModeStdErr:
		return stderrLogger
	case LogModeLogger:
		if d.Logger != nil {
			return d.Logger
		}
	}
	return silentLogger
}
