package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ImportanceLow    = 1
	ImportanceMedium = 2
	ImportanceHigh   = 3
)

// Announcement is a published notice. date_pub is set once at creation and
// never updated; only titre, contenu and deg_imp are mutable.
type Announcement struct {
	ID          uuid.UUID `db:"ida" json:"ida"`
	Title       string    `db:"titre" json:"titre"`
	Content     string    `db:"contenu" json:"contenu"`
	PublishedAt time.Time `db:"date_pub" json:"date_pub"`
	Importance  int       `db:"deg_imp" json:"deg_imp"`

	Authors  []AnnouncementAuthor `db:"-" json:"personne_annonce"`
	Document *Document            `db:"-" json:"document"`
}

// AnnouncementAuthor records which Person proposed an announcement and
// when. Rows are only ever created inside the announcement creation
// transaction, never on their own.
type AnnouncementAuthor struct {
	AnnouncementID uuid.UUID `db:"ida" json:"ida"`
	PersonID       uuid.UUID `db:"idp" json:"idp"`
	ProposedAt     time.Time `db:"date_proposition" json:"date_proposition"`

	Person *Person `db:"-" json:"personnes,omitempty"`
}
