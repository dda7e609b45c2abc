package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
)

type announcementRepository struct {
	pool *pgxpool.Pool
}

func NewAnnouncementRepository(pool *pgxpool.Pool) repository.AnnouncementRepository {
	return &announcementRepository{pool: pool}
}

var _ repository.AnnouncementRepository = (*announcementRepository)(nil)

const announcementColumns = `
	ida,
	titre,
	contenu,
	date_pub,
	deg_imp
`

// listOrderColumns whitelists sortable columns; callers pass the legacy
// query-string names straight through.
var listOrderColumns = map[string]string{
	"date_pub": "date_pub",
	"titre":    "titre",
	"deg_imp":  "deg_imp",
}

func (r *announcementRepository) CreateTx(
	ctx context.Context,
	tx pgx.Tx,
	a *model.Announcement,
	author *model.AnnouncementAuthor,
) error {
	_, err := tx.Exec(
		ctx,
		`INSERT INTO annonces (ida, titre, contenu, date_pub, deg_imp)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID,
		a.Title,
		a.Content,
		a.PublishedAt,
		a.Importance,
	)
	if err != nil {
		return translateError(err)
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO personne_annonce (ida, idp, date_proposition)
		 VALUES ($1, $2, $3)`,
		author.AnnouncementID,
		author.PersonID,
		author.ProposedAt,
	)
	return translateError(err)
}

func (r *announcementRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM annonces WHERE ida = $1`
	a, err := scanAnnouncement(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachAuthors(ctx, []*model.Announcement{a}); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *announcementRepository) List(
	ctx context.Context,
	opts repository.AnnouncementListOptions,
) ([]*model.Announcement, error) {
	orderColumn, ok := listOrderColumns[opts.OrderBy]
	if !ok {
		orderColumn = "date_pub"
	}
	direction := "DESC"
	if opts.Order == repository.SortAsc {
		direction = "ASC"
	}

	query := `SELECT ` + announcementColumns + ` FROM annonces ORDER BY ` + orderColumn + ` ` + direction
	if opts.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(opts.Limit)
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*model.Announcement, 0, 16)
	for rows.Next() {
		item, scanErr := scanAnnouncement(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachAuthors(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *announcementRepository) Update(ctx context.Context, a *model.Announcement) error {
	// date_pub and authorship are immutable
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE annonces
		    SET titre = $2,
		        contenu = $3,
		        deg_imp = $4
		  WHERE ida = $1`,
		a.ID,
		a.Title,
		a.Content,
		a.Importance,
	)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *announcementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM annonces WHERE ida = $1`, id)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

// attachAuthors loads the personne_annonce links (with their persons) for
// every listed announcement in one query.
func (r *announcementRepository) attachAuthors(ctx context.Context, items []*model.Announcement) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	byID := make(map[uuid.UUID]*model.Announcement, len(items))
	for _, item := range items {
		item.Authors = make([]model.AnnouncementAuthor, 0, 1)
		ids = append(ids, item.ID)
		byID[item.ID] = item
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT pa.ida, pa.idp, pa.date_proposition,
		        p.idp, p.nom, p.prenom, p.email, p.tele, p.ville, p.adr, p.date_nai
		   FROM personne_annonce pa
		   JOIN personnes p ON p.idp = pa.idp
		  WHERE pa.ida = ANY($1)
		  ORDER BY pa.date_proposition`,
		ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var link model.AnnouncementAuthor
		person := &model.Person{}
		if err := rows.Scan(
			&link.AnnouncementID,
			&link.PersonID,
			&link.ProposedAt,
			&person.ID,
			&person.LastName,
			&person.FirstName,
			&person.Email,
			&person.Phone,
			&person.City,
			&person.Address,
			&person.BirthDate,
		); err != nil {
			return err
		}
		link.Person = person

		if item, ok := byID[link.AnnouncementID]; ok {
			item.Authors = append(item.Authors, link)
		}
	}
	return rows.Err()
}

func scanAnnouncement(src scanTarget) (*model.Announcement, error) {
	item := &model.Announcement{}
	if err := src.Scan(
		&item.ID,
		&item.Title,
		&item.Content,
		&item.PublishedAt,
		&item.Importance,
	); err != nil {
		return nil, err
	}
	return item, nil
}
