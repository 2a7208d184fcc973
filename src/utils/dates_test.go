package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatODataTime(t *testing.T) {
	t.Run("formats in utc with second precision", func(t *testing.T) {
		ts := time.Date(2026, 3, 1, 9, 30, 15, 123456789, time.UTC)
		assert.Equal(t, "2026-03-01T09:30:15Z", FormatODataTime(ts))
	})

	t.Run("converts other zones to utc", func(t *testing.T) {
		zone := time.FixedZone("ART", -3*60*60)
		ts := time.Date(2026, 3, 1, 6, 30, 15, 0, zone)
		assert.Equal(t, "2026-03-01T09:30:15Z", FormatODataTime(ts))
	})
}

func TestSyncEpoch(t *testing.T) {
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), SyncEpoch)
}
