package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerboseGating(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Debug("hidden %d", 1)
	Info("hidden")
	Warn("hidden")
	Section("hidden")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	defer SetVerbose(false)
	assert.True(t, IsVerbose())

	Debug("chunks: %d", 3)
	Info("done")
	Warn("slow")
	Section("Ingest")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] chunks: 3")
	assert.Contains(t, out, "[INFO] done")
	assert.Contains(t, out, "[WARN] slow")
	assert.Contains(t, out, "=== Ingest ===")
}
