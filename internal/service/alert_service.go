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
	ErrInvalidAlertType = errors.New("invalid alert type")
	ErrInvalidAlertReq  = errors.New("invalid alert input")
)

type CreateAlertRequest struct {
	Title       string
	Description string
	Type        model.AlertType
	UserID      string
}

type UpdateAlertRequest struct {
	ID          string
	Title       string
	Description string
	Type        model.AlertType
}

type AlertService struct {
	alertRepo repository.AlertRepository
	auditRepo repository.AuditRepository
	logger    *zap.Logger
}

func NewAlertService(
	alertRepo repository.AlertRepository,
	auditRepo repository.AuditRepository,
	logger *zap.Logger,
) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AlertService{
		alertRepo: alertRepo,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (s *AlertService) List(ctx context.Context) ([]*model.Alert, error) {
	return s.alertRepo.List(ctx)
}

func (s *AlertService) Create(ctx context.Context, req CreateAlertRequest) (*model.Alert, error) {
	if !req.Type.Valid() {
		return nil, ErrInvalidAlertType
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrInvalidAlertReq
	}
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, ErrInvalidAlertReq
	}

	alert := &model.Alert{
		ID:          uuid.New(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Type:        req.Type,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.alertRepo.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.writeAudit(ctx, "alert.create", alert.ID.String(), nil, map[string]interface{}{
		"title": alert.Title,
		"type":  string(alert.Type),
	})

	return alert, nil
}

func (s *AlertService) Update(ctx context.Context, req UpdateAlertRequest) error {
	if !req.Type.Valid() {
		return ErrInvalidAlertType
	}

	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return ErrInvalidAlertReq
	}

	alert := &model.Alert{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Type:        req.Type,
	}
	if err := s.alertRepo.Update(ctx, alert); err != nil {
		return err
	}

	s.writeAudit(ctx, "alert.update", id.String(), nil, map[string]interface{}{
		"title": alert.Title,
		"type":  string(alert.Type),
	})

	return nil
}

// Delete propagates the store's not-found error unchanged: the legacy API
// reported a missing id as a plain store failure, and clients depend on
// that.
func (s *AlertService) Delete(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return ErrInvalidAlertReq
	}

	if err := s.alertRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.writeAudit(ctx, "alert.delete", id.String(), nil, nil)
	return nil
}

func (s *AlertService) writeAudit(
	ctx context.Context,
	action, resourceID string,
	oldValue, newValue map[string]interface{},
) {
	if s.auditRepo == nil {
		return
	}

	resourceType := "alert"
	if err := s.auditRepo.Create(ctx, &model.AuditLog{
		Action:       action,
		ResourceType: &resourceType,
		ResourceID:   &resourceID,
		OldValue:     oldValue,
		NewValue:     newValue,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("write audit log failed", zap.String("action", action), zap.Error(err))
	}
}
