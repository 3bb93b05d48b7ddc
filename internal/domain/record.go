// Package domain defines the catalog's record types and their derived display fields.
package domain

import "time"

// Record carries the store-managed fields shared by every catalog document.
// ID is assigned by the store on insert and never changes afterwards.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetID sets the record identity. Only the store calls this.
func (r *Record) SetID(id string) {
	r.ID = id
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (r *Record) InitTimestamps() {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp to the current time.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now()
}

// Base returns the embedded record, giving generic code access to the
// store-managed fields.
func (r *Record) Base() *Record {
	return r
}
