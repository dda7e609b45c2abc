package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
)

type departmentRepository struct {
	pool *pgxpool.Pool
}

func NewDepartmentRepository(pool *pgxpool.Pool) repository.DepartmentRepository {
	return &departmentRepository{pool: pool}
}

var _ repository.DepartmentRepository = (*departmentRepository)(nil)

func (r *departmentRepository) FindByCode(ctx context.Context, code string) (*model.Department, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT coded, intitule, description FROM departements WHERE coded = $1`,
		code,
	)

	dept := &model.Department{}
	err := row.Scan(&dept.Code, &dept.Name, &dept.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return dept, nil
}

func (r *departmentRepository) FindByCodeWithPrograms(ctx context.Context, code string) (*model.Department, error) {
	dept, err := r.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT codef, intitule, niveau, duree, coded FROM filieres WHERE coded = $1 ORDER BY codef`,
		code,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dept.Programs = make([]model.Program, 0, 8)
	for rows.Next() {
		var p model.Program
		if err := rows.Scan(&p.Code, &p.Name, &p.Level, &p.DurationYears, &p.DepartmentCode); err != nil {
			return nil, err
		}
		dept.Programs = append(dept.Programs, p)
	}
	return dept, rows.Err()
}

func (r *departmentRepository) List(ctx context.Context) ([]*model.Department, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT coded, intitule, description FROM departements ORDER BY coded`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	depts := make([]*model.Department, 0, 8)
	for rows.Next() {
		dept := &model.Department{}
		if err := rows.Scan(&dept.Code, &dept.Name, &dept.Description); err != nil {
			return nil, err
		}
		depts = append(depts, dept)
	}
	return depts, rows.Err()
}

func (r *departmentRepository) Create(ctx context.Context, d *model.Department) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO departements (coded, intitule, description) VALUES ($1, $2, $3)`,
		d.Code,
		d.Name,
		d.Description,
	)
	return translateError(err)
}

func (r *departmentRepository) Update(ctx context.Context, d *model.Department) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE departements SET intitule = $2, description = $3 WHERE coded = $1`,
		d.Code,
		d.Name,
		d.Description,
	)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

func (r *departmentRepository) Delete(ctx context.Context, code string) error {
	// filieres and modules go with it (ON DELETE CASCADE)
	tag, err := r.pool.Exec(ctx, `DELETE FROM departements WHERE coded = $1`, code)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

type programRepository struct {
	pool *pgxpool.Pool
}

func NewProgramRepository(pool *pgxpool.Pool) repository.ProgramRepository {
	return &programRepository{pool: pool}
}

var _ repository.ProgramRepository = (*programRepository)(nil)

func (r *programRepository) FindByCode(ctx context.Context, code string) (*model.Program, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT codef, intitule, niveau, duree, coded FROM filieres WHERE codef = $1`,
		code,
	)

	p := &model.Program{}
	err := row.Scan(&p.Code, &p.Name, &p.Level, &p.DurationYears, &p.DepartmentCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *programRepository) List(ctx context.Context, departmentCode *string) ([]*model.Program, error) {
	query := `SELECT codef, intitule, niveau, duree, coded FROM filieres`
	args := make([]any, 0, 1)
	if departmentCode != nil {
		query += ` WHERE coded = $1`
		args = append(args, *departmentCode)
	}
	query += ` ORDER BY codef`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	programs := make([]*model.Program, 0, 8)
	for rows.Next() {
		p := &model.Program{}
		if err := rows.Scan(&p.Code, &p.Name, &p.Level, &p.DurationYears, &p.DepartmentCode); err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

func (r *programRepository) Create(ctx context.Context, p *model.Program) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO filieres (codef, intitule, niveau, duree, coded) VALUES ($1, $2, $3, $4, $5)`,
		p.Code,
		p.Name,
		p.Level,
		p.DurationYears,
		p.DepartmentCode,
	)
	return translateError(err)
}

func (r *programRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM filieres WHERE codef = $1`, code)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}

type courseModuleRepository struct {
	pool *pgxpool.Pool
}

func NewCourseModuleRepository(pool *pgxpool.Pool) repository.CourseModuleRepository {
	return &courseModuleRepository{pool: pool}
}

var _ repository.CourseModuleRepository = (*courseModuleRepository)(nil)

func (r *courseModuleRepository) FindByProgram(ctx context.Context, programCode string) ([]*model.CourseModule, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT codem, intitule, volumeh, semestre, codef FROM modules WHERE codef = $1 ORDER BY codem`,
		programCode,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	modules := make([]*model.CourseModule, 0, 8)
	for rows.Next() {
		m := &model.CourseModule{}
		if err := rows.Scan(&m.Code, &m.Name, &m.HourlyLoad, &m.Semester, &m.ProgramCode); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

func (r *courseModuleRepository) Create(ctx context.Context, m *model.CourseModule) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO modules (codem, intitule, volumeh, semestre, codef) VALUES ($1, $2, $3, $4, $5)`,
		m.Code,
		m.Name,
		m.HourlyLoad,
		m.Semester,
		m.ProgramCode,
	)
	return translateError(err)
}

func (r *courseModuleRepository) Delete(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM modules WHERE codem = $1`, code)
	if err != nil {
		return err
	}
	return ensureAffected(tag)
}
