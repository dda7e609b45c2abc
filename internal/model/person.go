package model

import (
	"time"

	"github.com/google/uuid"
)

// Person is the root identity record for anyone interacting with the
// faculty: students, professors, staff and administrators. Column names
// keep the historical French schema so existing clients keep working.
type Person struct {
	ID        uuid.UUID  `db:"idp" json:"idp"`
	LastName  string     `db:"nom" json:"nom"`
	FirstName string     `db:"prenom" json:"prenom"`
	Email     string     `db:"email" json:"email"`
	Phone     *string    `db:"tele" json:"tele,omitempty"`
	City      *string    `db:"ville" json:"ville,omitempty"`
	Address   *string    `db:"adr" json:"adr,omitempty"`
	BirthDate *time.Time `db:"date_nai" json:"date_nai,omitempty"`
}
