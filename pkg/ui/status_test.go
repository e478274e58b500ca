package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Levels(t *testing.T) {
	var buf bytes.Buffer
	s := NewStatus(&buf, false)

	s.Info("posting %s", "now")
	s.Success("posted")
	s.Warn("slow")
	s.Error("failed: %d", 3)
	s.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, " => posting now")
	assert.Contains(t, out, "[+] posted")
	assert.Contains(t, out, "[!] slow")
	assert.Contains(t, out, "[-] failed: 3")
	assert.NotContains(t, out, "hidden")
}

func TestStatus_VerboseDebug(t *testing.T) {
	var buf bytes.Buffer
	NewStatus(&buf, true).Debug("length %d", 120)
	assert.Contains(t, buf.String(), "length 120")
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{"short", "hello", 30, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 5, "hello..."},
		{"multibyte", "héllo wörld", 7, "héllo w..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.text, tt.n))
		})
	}
}
