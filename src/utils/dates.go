package utils

import "time"

// SyncEpoch is the sentinel watermark returned when no sync log row exists
// for a table. It compares earlier than any real record timestamp, and a
// watermark equal to it means "full fetch, no filter".
var SyncEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// FormatODataTime renders a timestamp the way the source API expects it in
// $filter expressions: UTC, second precision.
func FormatODataTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
