package diag

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogReporterAbortsOnError(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogReporter(log.New(&buf))

	err := Check(r, Message{Severity: SeverityWarning, Source: "validation", Text: "slow path"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "slow path")

	err = Check(r, Message{Severity: SeverityError, Source: "validation", Code: 7, Text: "bad layout"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAborted))
	assert.Contains(t, err.Error(), "validation: bad layout")
	assert.Contains(t, buf.String(), "code=7")
}

func TestCollector(t *testing.T) {
	c := &Collector{}
	require.NoError(t, Check(c, Message{Severity: SeverityError, Text: "kept"}))
	c.DumpIR("fragment", "OpCapability Shader")

	require.Len(t, c.Messages, 1)
	assert.Equal(t, "kept", c.Messages[0].Text)
	assert.Equal(t, "OpCapability Shader", c.Dumps["fragment"])
}

func TestDirReporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	var col Collector
	r := &DirReporter{Next: &col, Dir: dir}

	r.DumpIR("vertex", "OpCapability Shader\n")
	data, err := os.ReadFile(filepath.Join(dir, "vertex.spvasm"))
	require.NoError(t, err)
	assert.Equal(t, "OpCapability Shader\n", string(data))
	assert.Contains(t, col.Dumps, "vertex")

	assert.False(t, r.Report(Message{Severity: SeverityError, Text: "forwarded"}))
	require.Len(t, col.Messages, 1)
}
