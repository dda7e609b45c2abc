package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
)

var ErrNotFound = errors.New("record not found")

var ErrDuplicate = errors.New("record already exists")

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// AnnouncementListOptions controls ordering and truncation of the public
// listing. OrderBy is validated against a column whitelist by the
// implementation; zero values fall back to date_pub descending.
type AnnouncementListOptions struct {
	Limit   int       `json:"limit"`
	OrderBy string    `json:"orderBy"`
	Order   SortOrder `json:"order"`
}

type UserListFilter struct {
	Role   *model.UserRole   `json:"role,omitempty"`
	Status *model.UserStatus `json:"status,omitempty"`
}

type AuditListFilter struct {
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	ResourceType *string    `json:"resource_type,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Limit        int32      `json:"limit"`
	Offset       int32      `json:"offset"`
}

type PersonRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Person, error)
	FindByEmail(ctx context.Context, email string) (*model.Person, error)
	CreateTx(ctx context.Context, tx pgx.Tx, person *model.Person) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByEmailWithPerson resolves the account and its linked Person in
	// one round trip; User.Person is nil when the account has no profile.
	FindByEmailWithPerson(ctx context.Context, email string) (*model.User, error)
	CreateTx(ctx context.Context, tx pgx.Tx, user *model.User) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	List(ctx context.Context, filter UserListFilter) ([]*model.User, error)
}

// AnnouncementRepository persists announcements and their authorship links.
// CreateTx runs inside a caller-supplied transaction so the annonce row,
// the link row and any document rows commit or roll back as one unit.
type AnnouncementRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, a *model.Announcement, author *model.AnnouncementAuthor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Announcement, error)
	List(ctx context.Context, opts AnnouncementListOptions) ([]*model.Announcement, error)
	Update(ctx context.Context, a *model.Announcement) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type DocumentRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, d *model.Document, author *model.DocumentAuthor) error
	FindByAnnouncement(ctx context.Context, announcementID uuid.UUID) (*model.Document, error)
	FindByAnnouncements(ctx context.Context, announcementIDs []uuid.UUID) (map[uuid.UUID]*model.Document, error)
}

type DepartmentRepository interface {
	FindByCode(ctx context.Context, code string) (*model.Department, error)
	FindByCodeWithPrograms(ctx context.Context, code string) (*model.Department, error)
	List(ctx context.Context) ([]*model.Department, error)
	Create(ctx context.Context, d *model.Department) error
	Update(ctx context.Context, d *model.Department) error
	Delete(ctx context.Context, code string) error
}

type ProgramRepository interface {
	FindByCode(ctx context.Context, code string) (*model.Program, error)
	List(ctx context.Context, departmentCode *string) ([]*model.Program, error)
	Create(ctx context.Context, p *model.Program) error
	Delete(ctx context.Context, code string) error
}

type CourseModuleRepository interface {
	FindByProgram(ctx context.Context, programCode string) ([]*model.CourseModule, error)
	Create(ctx context.Context, m *model.CourseModule) error
	Delete(ctx context.Context, code string) error
}

type AlertRepository interface {
	List(ctx context.Context) ([]*model.Alert, error)
	Create(ctx context.Context, alert *model.Alert) error
	Update(ctx context.Context, alert *model.Alert) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ResetTokenRepository interface {
	Create(ctx context.Context, token *model.PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	MarkUsed(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type AuditRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	List(ctx context.Context, filter AuditListFilter) ([]*model.AuditLog, error)
}
