package middleware

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formatEntry(t *testing.T, cid, message string) string {
	t.Helper()
	formatter := &CustomLogFormatter{}
	entry := &log.Entry{
		Logger:  log.StandardLogger(),
		Data:    log.Fields{correlationIDField: cid},
		Time:    time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		Level:   log.InfoLevel,
		Message: message,
	}
	formatted, err := formatter.Format(entry)
	require.NoError(t, err)
	return string(formatted)
}

func TestLogFormatterUsesEntryCorrelationID(t *testing.T) {
	// Each entry carries its own id, the formatter holds no per-request state.
	first := formatEntry(t, "cid-first", "handled")
	second := formatEntry(t, "cid-second", "handled")

	assert.Contains(t, first, "cid-first")
	assert.NotContains(t, first, "cid-second")
	assert.Contains(t, second, "cid-second")
	assert.NotContains(t, second, "cid-first")

	// The id is rendered in the fixed slot, not as a key=value field.
	assert.NotContains(t, first, correlationIDField+"=")
	assert.Contains(t, first, "INFO")
}

func TestLogFormatterWithoutCorrelationID(t *testing.T) {
	formatter := &CustomLogFormatter{}
	entry := &log.Entry{
		Logger:  log.StandardLogger(),
		Data:    log.Fields{"lane": "lane-1"},
		Time:    time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		Level:   log.WarnLevel,
		Message: "cache flush failed",
	}
	formatted, err := formatter.Format(entry)
	require.NoError(t, err)

	assert.Contains(t, string(formatted), " - ")
	assert.Contains(t, string(formatted), "lane=lane-1")
	assert.Contains(t, string(formatted), "WARNING")
}
