package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
)

type documentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) repository.DocumentRepository {
	return &documentRepository{pool: pool}
}

var _ repository.DocumentRepository = (*documentRepository)(nil)

const documentColumns = `
	idd,
	titre,
	type,
	chemin,
	date_creat,
	version,
	niveau_confid,
	ida
`

func (r *documentRepository) CreateTx(
	ctx context.Context,
	tx pgx.Tx,
	d *model.Document,
	author *model.DocumentAuthor,
) error {
	_, err := tx.Exec(
		ctx,
		`INSERT INTO documents (idd, titre, type, chemin, date_creat, version, niveau_confid, ida)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID,
		d.Title,
		d.Type,
		d.Path,
		d.CreatedAt,
		d.Version,
		d.Confidentiality,
		d.AnnouncementID,
	)
	if err != nil {
		return translateError(err)
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO personne_document (idd, idp, date_publication)
		 VALUES ($1, $2, $3)`,
		author.DocumentID,
		author.PersonID,
		author.PublishedAt,
	)
	return translateError(err)
}

func (r *documentRepository) FindByAnnouncement(ctx context.Context, announcementID uuid.UUID) (*model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE ida = $1 AND type = $2`
	doc, err := scanDocument(r.pool.QueryRow(ctx, query, announcementID, model.DocumentTypeAnnouncement))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// FindByAnnouncements returns at most one attachment per announcement,
// keyed by announcement id.
func (r *documentRepository) FindByAnnouncements(
	ctx context.Context,
	announcementIDs []uuid.UUID,
) (map[uuid.UUID]*model.Document, error) {
	out := make(map[uuid.UUID]*model.Document, len(announcementIDs))
	if len(announcementIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT `+documentColumns+`
		   FROM documents
		  WHERE ida = ANY($1) AND type = $2
		  ORDER BY date_creat`,
		announcementIDs,
		model.DocumentTypeAnnouncement,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		doc, scanErr := scanDocument(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		if doc.AnnouncementID == nil {
			continue
		}
		if _, exists := out[*doc.AnnouncementID]; !exists {
			out[*doc.AnnouncementID] = doc
		}
	}
	return out, rows.Err()
}

func scanDocument(src scanTarget) (*model.Document, error) {
	doc := &model.Document{}
	if err := src.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Type,
		&doc.Path,
		&doc.CreatedAt,
		&doc.Version,
		&doc.Confidentiality,
		&doc.AnnouncementID,
	); err != nil {
		return nil, err
	}
	return doc, nil
}
