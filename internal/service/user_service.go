package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidUserID = errors.New("invalid user id")
	ErrInvalidStatus = errors.New("invalid account status")
)

type UserService struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	logger    *zap.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &UserService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (s *UserService) List(ctx context.Context, filter repository.UserListFilter) ([]*model.User, error) {
	return s.userRepo.List(ctx, filter)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmailWithPerson(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// SetStatus approves or disables an account. Registration leaves accounts
// PENDING until the administration flips them ACTIVE here.
func (s *UserService) SetStatus(
	ctx context.Context,
	operatorID string,
	userID string,
	status model.UserStatus,
) (*model.User, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	id, err := uuid.Parse(strings.TrimSpace(userID))
	if err != nil {
		return nil, ErrInvalidUserID
	}

	current, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.userRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.writeAudit(ctx, operatorID, "user.set_status", id.String(), map[string]interface{}{
		"status": string(current.Status),
	}, map[string]interface{}{
		"status": string(status),
	})

	current.Status = status
	return current, nil
}

func (s *UserService) writeAudit(
	ctx context.Context,
	operatorID string,
	action, resourceID string,
	oldValue, newValue map[string]interface{},
) {
	if s.auditRepo == nil {
		return
	}

	resourceType := "user"
	log := &model.AuditLog{
		Action:       action,
		ResourceType: &resourceType,
		ResourceID:   &resourceID,
		OldValue:     oldValue,
		NewValue:     newValue,
		CreatedAt:    time.Now().UTC(),
	}
	if parsed, err := uuid.Parse(strings.TrimSpace(operatorID)); err == nil {
		log.UserID = &parsed
	}
	if err := s.auditRepo.Create(ctx, log); err != nil {
		s.logger.Warn("write audit log failed", zap.String("action", action), zap.Error(err))
	}
}
