package model

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetToken is a single-use credential emailed to a user who
// forgot their password. Expired and used tokens are purged by a
// scheduled job.
type PasswordResetToken struct {
	Token     string    `db:"token" json:"-"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	Used      bool      `db:"used" json:"used"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t != nil && !t.Used && now.Before(t.ExpiresAt)
}
