// Package diag routes validation messages and IR dumps to a user-overridable
// reporter.
package diag

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/gogpu/spvkit/internal/logger"
)

// ErrAborted is returned when a reporter asks to stop after a message.
var ErrAborted = errors.New("diag: aborted by reporter")

// Severity orders messages by importance.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "info"
}

// Message is one diagnostic. Source names the layer that produced it, for
// example "translator" or a validation layer prefix.
type Message struct {
	Severity Severity
	Source   string
	Code     int32
	Text     string
}

func (m Message) Error() string {
	if m.Source == "" {
		return m.Text
	}
	return fmt.Sprintf("%s: %s", m.Source, m.Text)
}

// Reporter receives diagnostics. Report returns true when the caller should
// stop; the recommended default is to continue.
type Reporter interface {
	Report(m Message) bool
	DumpIR(stage, text string)
}

// Check passes m to r and converts an abort request into an error wrapping
// ErrAborted.
func Check(r Reporter, m Message) error {
	if r == nil {
		r = Default()
	}
	if r.Report(m) {
		return fmt.Errorf("%w: %w", ErrAborted, m)
	}
	return nil
}

// LogReporter writes diagnostics to a charmbracelet logger.
type LogReporter struct {
	Logger *log.Logger
	// AbortAt is the lowest severity that aborts.
	AbortAt Severity
}

// NewLogReporter returns a reporter that logs everything and aborts on
// errors.
func NewLogReporter(l *log.Logger) *LogReporter {
	return &LogReporter{Logger: l, AbortAt: SeverityError}
}

// Default returns a LogReporter on the shared logger.
func Default() Reporter {
	return NewLogReporter(logger.Get())
}

func (r *LogReporter) Report(m Message) bool {
	kv := []any{"source", m.Source}
	if m.Code != 0 {
		kv = append(kv, "code", m.Code)
	}
	switch m.Severity {
	case SeverityError:
		r.Logger.Error(m.Text, kv...)
	case SeverityWarning:
		r.Logger.Warn(m.Text, kv...)
	default:
		r.Logger.Info(m.Text, kv...)
	}
	return m.Severity >= r.AbortAt
}

func (r *LogReporter) DumpIR(stage, text string) {
	r.Logger.Info("IR dump", "stage", stage)
	r.Logger.Print(text)
}

// Collector keeps every message in memory. It never aborts.
type Collector struct {
	Messages []Message
	Dumps    map[string]string
}

func (c *Collector) Report(m Message) bool {
	c.Messages = append(c.Messages, m)
	return false
}

func (c *Collector) DumpIR(stage, text string) {
	if c.Dumps == nil {
		c.Dumps = make(map[string]string)
	}
	c.Dumps[stage] = text
}

// DirReporter forwards messages to Next and writes each IR dump to
// Dir/<stage>.spvasm as well. Dump write failures are reported to Next as
// warnings.
type DirReporter struct {
	Next Reporter
	Dir  string
}

func (r *DirReporter) next() Reporter {
	if r.Next == nil {
		return Default()
	}
	return r.Next
}

func (r *DirReporter) Report(m Message) bool { return r.next().Report(m) }

func (r *DirReporter) DumpIR(stage, text string) {
	next := r.next()
	next.DumpIR(stage, text)
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		next.Report(Message{Severity: SeverityWarning, Source: "dump", Text: err.Error()})
		return
	}
	path := filepath.Join(r.Dir, stage+".spvasm")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		next.Report(Message{Severity: SeverityWarning, Source: "dump", Text: err.Error()})
	}
}
