package model

import (
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	AlertTypeError   AlertType = "error"
	AlertTypeWarning AlertType = "warning"
	AlertTypeInfo    AlertType = "info"
)

func (t AlertType) Valid() bool {
	switch t {
	case AlertTypeError, AlertTypeWarning, AlertTypeInfo:
		return true
	}
	return false
}

// Alert is a dashboard notification addressed to a user account.
type Alert struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Type        AlertType `db:"type" json:"type"`
	UserID      uuid.UUID `db:"user_id" json:"userId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`

	User *User `db:"-" json:"user,omitempty"`
}
