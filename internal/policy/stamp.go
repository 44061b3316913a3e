package policy

import "time"

// Timestamps are the server-assigned creation and modification times of a
// book or review.
type Timestamps struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StampCreate sets both timestamps to now.
func StampCreate(now time.Time) Timestamps {
	now = now.UTC()
	return Timestamps{CreatedAt: now, UpdatedAt: now}
}

// StampUpdate keeps the stored creation time and resets the update time,
// whatever fields changed.
func StampUpdate(stored Timestamps, now time.Time) Timestamps {
	return Timestamps{CreatedAt: stored.CreatedAt, UpdatedAt: now.UTC()}
}
