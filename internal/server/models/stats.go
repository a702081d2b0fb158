package models

import "time"

// CleanupStats is a read-only snapshot of the reset token table.
type CleanupStats struct {
	TotalTokens   int64
	ExpiredTokens int64
	UsedTokens    int64
}

// ValidTokens is Total - Expired - Used. Rows that are both expired and
// used are subtracted twice.
func (s CleanupStats) ValidTokens() int64 {
	return s.TotalTokens - s.ExpiredTokens - s.UsedTokens
}

// CleanupReport describes one finished cleanup run.
type CleanupReport struct {
	Kind         string
	StartedAt    time.Time
	ExpiredFound int64
	UsedFound    int64
	Deleted      int64
	Duration     time.Duration
}
