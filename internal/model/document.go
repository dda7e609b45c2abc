package model

import (
	"time"

	"github.com/google/uuid"
)

// DocumentTypeAnnouncement tags documents created as announcement
// attachments. The legacy value is French.
const DocumentTypeAnnouncement = "Annonce"

const (
	DocumentInitialVersion     = "1.0"
	DefaultConfidentialityLevel = 1
)

// Document is the metadata record for a stored file. chemin is a relative
// path under the public static directory. The legacy schema associated a
// document with its announcement by title equality only; AnnouncementID is
// the explicit foreign key that replaces that convention, while titre keeps
// mirroring the announcement title for older readers.
type Document struct {
	ID              uuid.UUID  `db:"idd" json:"idd"`
	Title           string     `db:"titre" json:"titre"`
	Type            string     `db:"type" json:"type"`
	Path            string     `db:"chemin" json:"chemin"`
	CreatedAt       time.Time  `db:"date_creat" json:"date_creat"`
	Version         string     `db:"version" json:"version"`
	Confidentiality int        `db:"niveau_confid" json:"niveau_confid"`
	AnnouncementID  *uuid.UUID `db:"ida" json:"ida,omitempty"`
}

// DocumentAuthor records which Person published a document and when.
type DocumentAuthor struct {
	DocumentID  uuid.UUID `db:"idd" json:"idd"`
	PersonID    uuid.UUID `db:"idp" json:"idp"`
	PublishedAt time.Time `db:"date_publication" json:"date_publication"`

	Person *Person `db:"-" json:"personnes,omitempty"`
}
