package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		n       int
		want    string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello..."},
		{"collapses whitespace", "a\n\n  b\tc", 10, "a b c"},
		{"multibyte", "héllo wörld", 4, "héll..."},
		{"no limit", "hello world", 0, "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.content, tt.n))
		})
	}
}

func TestHorizontalRule(t *testing.T) {
	assert.Contains(t, HorizontalRule(3), strings.Repeat("─", 3))
	assert.NotPanics(t, func() { HorizontalRule(-1) })
}

func TestFormatters(t *testing.T) {
	assert.Contains(t, FormatDocHeader(42, 0), "#42")
	assert.Contains(t, FormatDistance(0.5), "0.5000")
}

func TestSetDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer InitLogger()

	SetDebug(true)
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	log.Debug("visible")
	assert.Contains(t, buf.String(), "visible")

	SetDebug(false)
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}
