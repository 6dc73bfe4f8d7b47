// SPDX-License-Identifier: MPL-2.0

// Package diaglog provides the diagnostic sink used while loading and applying
// module options. A sink writes human-readable traces to stderr, stdout,
// syslog, or an existing regular file, and owns whatever it opened.
package diaglog

import (
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

const (
	// TargetStderr selects the process's standard error. It is the default.
	TargetStderr = "stderr"
	// TargetStdout selects the process's standard output.
	TargetStdout = "stdout"
	// TargetSyslog selects the system logger (auth facility).
	TargetSyslog = "syslog"

	prefix = "keyguard"
)

// Sink is a diagnostic destination. The zero value is not usable; use Default or Open.
type Sink struct {
	logger *log.Logger
	target string
	closer io.Closer
}

// Default returns a sink writing to stderr. Closing it leaves stderr open.
func Default() *Sink {
	return newSink(os.Stderr, TargetStderr, nil)
}

// Open returns a sink for target, which is one of the Target constants or the
// path of an existing regular file. A file target is opened for appending,
// never created, and never reached through a final symlink. Any failure to
// open the requested target falls back to Default.
func Open(target string) *Sink {
	switch target {
	case TargetStderr:
		return Default()
	case TargetStdout:
		return newSink(os.Stdout, TargetStdout, nil)
	case TargetSyslog:
		w, err := openSyslog()
		if err != nil {
			slog.Debug("syslog unavailable, using stderr", "error", err)
			return Default()
		}
		return newSink(w, TargetSyslog, w)
	}

	f, err := openAppend(target)
	if err != nil {
		slog.Debug("diagnostic file unavailable, using stderr", "path", target, "error", err)
		return Default()
	}
	return newSink(f, target, f)
}

func newSink(w io.Writer, target string, closer io.Closer) *Sink {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: prefix,
		Level:  log.DebugLevel,
	})
	return &Sink{logger: logger, target: target, closer: closer}
}

// Target reports where the sink writes: a Target constant or a file path.
func (s *Sink) Target() string {
	return s.target
}

// ToFile reports whether the sink writes to a file path rather than a stream
// or the system logger.
func (s *Sink) ToFile() bool {
	switch s.target {
	case TargetStderr, TargetStdout, TargetSyslog:
		return false
	default:
		return true
	}
}

// Debugf writes one formatted diagnostic line.
func (s *Sink) Debugf(format string, args ...any) {
	s.logger.Debugf(format, args...)
}

// Close releases the sink's destination if the sink opened it. Closing a
// sink more than once is a no-op.
func (s *Sink) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}
