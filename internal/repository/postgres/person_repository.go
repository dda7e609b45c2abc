package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
)

type personRepository struct {
	pool *pgxpool.Pool
}

func NewPersonRepository(pool *pgxpool.Pool) repository.PersonRepository {
	return &personRepository{pool: pool}
}

var _ repository.PersonRepository = (*personRepository)(nil)

const personColumns = `
	idp,
	nom,
	prenom,
	email,
	tele,
	ville,
	adr,
	date_nai
`

func (r *personRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Person, error) {
	query := `SELECT ` + personColumns + ` FROM personnes WHERE idp = $1`
	person, err := scanPerson(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return person, nil
}

func (r *personRepository) FindByEmail(ctx context.Context, email string) (*model.Person, error) {
	query := `SELECT ` + personColumns + ` FROM personnes WHERE email = $1`
	person, err := scanPerson(r.pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return person, nil
}

func (r *personRepository) CreateTx(ctx context.Context, tx pgx.Tx, person *model.Person) error {
	if person.ID == uuid.Nil {
		person.ID = uuid.New()
	}

	query := `
		INSERT INTO personnes (idp, nom, prenom, email, tele, ville, adr, date_nai)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.Exec(
		ctx,
		query,
		person.ID,
		person.LastName,
		person.FirstName,
		person.Email,
		person.Phone,
		person.City,
		person.Address,
		normalizeBirthDate(person.BirthDate),
	)
	return translateError(err)
}

func normalizeBirthDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func scanPerson(src scanTarget) (*model.Person, error) {
	person := &model.Person{}
	if err := src.Scan(
		&person.ID,
		&person.LastName,
		&person.FirstName,
		&person.Email,
		&person.Phone,
		&person.City,
		&person.Address,
		&person.BirthDate,
	); err != nil {
		return nil, err
	}
	return person, nil
}
