package domain

import "time"

// Audit holds the creation and modification timestamps every catalog entity carries.
// CreatedDate is set once; LastModifiedDate moves on every mutation.
type Audit struct {
	CreatedDate      time.Time `json:"CreatedDate"`
	LastModifiedDate time.Time `json:"LastModifiedDate"`
}

// InitTimestamps sets both timestamps to now.
// Bulk ingestion passes the run's start time so a whole batch shares one value.
func (a *Audit) InitTimestamps(now time.Time) {
	a.CreatedDate = now
	a.LastModifiedDate = now
}

// Touch records a modification at now.
func (a *Audit) Touch(now time.Time) {
	a.LastModifiedDate = now
}
