package models

import "time"

// CachedPayload is the last successful backend body stored under a request fingerprint.
type CachedPayload struct {
	Fingerprint string    `db:"fingerprint" json:"fingerprint"`
	Payload     []byte    `db:"payload" json:"payload"`
	CachedAt    time.Time `db:"cached_at" json:"cached_at"`
}

// Age returns how old the payload is relative to now.
func (p CachedPayload) Age(now time.Time) time.Duration {
	if p.CachedAt.IsZero() {
		return 0
	}
	return now.Sub(p.CachedAt)
}
