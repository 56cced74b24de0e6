package domain

import "time"

// AuditFields holds the created/updated timestamps shared by every persisted
// entity. It is embedded by value rather than inherited, so each record owns
// exactly one copy.
type AuditFields struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAuditFields returns audit fields stamped with the given creation time.
func NewAuditFields(now time.Time) AuditFields {
	return AuditFields{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp. It must be called on every mutation
// of the owning entity.
func (a *AuditFields) Touch(now time.Time) {
	a.UpdatedAt = now
}
