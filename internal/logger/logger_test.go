package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestConfigure(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer Configure("info", false)

	Configure("debug", false)
	assert.Equal(t, log.DebugLevel, Get().GetLevel())

	Debug("compiled", "stage", "vertex")
	assert.Contains(t, buf.String(), "compiled")
	assert.Contains(t, buf.String(), "stage=vertex")

	Configure("bogus", false)
	assert.Equal(t, log.DebugLevel, Get().GetLevel())
}
