package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
)

type stubResetTokenRepo struct {
	record        *model.PasswordResetToken
	markUsedCalls int
}

func (r *stubResetTokenRepo) Create(ctx context.Context, token *model.PasswordResetToken) error {
	return nil
}

func (r *stubResetTokenRepo) FindByToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	if r.record == nil || r.record.Token != token {
		return nil, repository.ErrNotFound
	}
	return r.record, nil
}

func (r *stubResetTokenRepo) MarkUsed(ctx context.Context, token string) error {
	r.markUsedCalls++
	return nil
}

func (r *stubResetTokenRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type stubUserRepo struct {
	updateHashErr   error
	updateHashCalls int
}

func (r *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) FindByEmailWithPerson(ctx context.Context, email string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) CreateTx(ctx context.Context, tx pgx.Tx, user *model.User) error {
	return nil
}

func (r *stubUserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus) error {
	return nil
}

func (r *stubUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	r.updateHashCalls++
	return r.updateHashErr
}

func (r *stubUserRepo) List(ctx context.Context, filter repository.UserListFilter) ([]*model.User, error) {
	return nil, nil
}

func newUsableResetToken() *model.PasswordResetToken {
	return &model.PasswordResetToken{
		Token:     "reset-token",
		UserID:    uuid.New(),
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}
}

// A failed password write must leave the token usable for a retry.
func TestResetPassword_FailedHashWriteKeepsTokenUsable(t *testing.T) {
	resetRepo := &stubResetTokenRepo{record: newUsableResetToken()}
	userRepo := &stubUserRepo{updateHashErr: errors.New("connection reset")}
	svc := NewAuthService(nil, userRepo, nil, resetRepo, nil, nil, nil)

	err := svc.ResetPassword(context.Background(), "reset-token", "longenough1")
	if err == nil {
		t.Fatal("expected the hash write failure to propagate")
	}
	if userRepo.updateHashCalls != 1 {
		t.Fatalf("expected one hash write attempt, got %d", userRepo.updateHashCalls)
	}
	if resetRepo.markUsedCalls != 0 {
		t.Fatalf("token must not be burned when the password was not changed, MarkUsed called %d times", resetRepo.markUsedCalls)
	}
}

func TestResetPassword_Success_BurnsTokenAfterHashWrite(t *testing.T) {
	resetRepo := &stubResetTokenRepo{record: newUsableResetToken()}
	userRepo := &stubUserRepo{}
	svc := NewAuthService(nil, userRepo, nil, resetRepo, nil, nil, nil)

	if err := svc.ResetPassword(context.Background(), "reset-token", "longenough1"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if userRepo.updateHashCalls != 1 {
		t.Fatalf("expected one hash write, got %d", userRepo.updateHashCalls)
	}
	if resetRepo.markUsedCalls != 1 {
		t.Fatalf("expected the token to be marked used once, got %d", resetRepo.markUsedCalls)
	}
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	record := newUsableResetToken()
	record.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	resetRepo := &stubResetTokenRepo{record: record}
	svc := NewAuthService(nil, &stubUserRepo{}, nil, resetRepo, nil, nil, nil)

	err := svc.ResetPassword(context.Background(), "reset-token", "longenough1")
	if !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("expected ErrInvalidResetToken, got %v", err)
	}
	if resetRepo.markUsedCalls != 0 {
		t.Fatalf("expired token must not be marked used, got %d calls", resetRepo.markUsedCalls)
	}
}
