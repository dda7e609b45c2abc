package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/metrics"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/storage"
)

// MaxAttachmentSize caps announcement attachments at 5 MiB.
const MaxAttachmentSize = 5 << 20

// allowedAttachmentTypes is the declared-content-type allow list: PDF,
// Word (.doc/.docx), JPEG and PNG.
var allowedAttachmentTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"image/jpeg": {},
	"image/png":  {},
}

var (
	ErrAnnouncementNotFound   = errors.New("announcement not found")
	ErrInvalidAnnouncementReq = errors.New("invalid announcement input")
	ErrPersonNotFound         = errors.New("no person linked to account")
	ErrUnsupportedFileType    = errors.New("unsupported attachment type")
	ErrFileTooLarge           = errors.New("attachment exceeds size limit")
)

// Attachment is an optional uploaded file accompanying a creation request.
// Size and ContentType come from the multipart headers and are validated
// before any byte is written.
type Attachment struct {
	FileName    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type CreateAnnouncementRequest struct {
	Title      string
	Content    string
	Importance int
	Attachment *Attachment
}

type UpdateAnnouncementRequest struct {
	Title      *string
	Content    *string
	Importance *int
}

type AnnouncementService struct {
	db               TxBeginner
	announcementRepo repository.AnnouncementRepository
	documentRepo     repository.DocumentRepository
	userRepo         repository.UserRepository
	auditRepo        repository.AuditRepository
	files            *storage.LocalStore
	logger           *zap.Logger
}

func NewAnnouncementService(
	db TxBeginner,
	announcementRepo repository.AnnouncementRepository,
	documentRepo repository.DocumentRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	files *storage.LocalStore,
	logger *zap.Logger,
) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnnouncementService{
		db:               db,
		announcementRepo: announcementRepo,
		documentRepo:     documentRepo,
		userRepo:         userRepo,
		auditRepo:        auditRepo,
		files:            files,
		logger:           logger,
	}
}

// ValidateAttachment enforces the content-type allow list and the size
// cap. It runs before any database or filesystem write.
func ValidateAttachment(contentType string, size int64) error {
	mediaType := contentType
	if idx := strings.IndexByte(mediaType, ';'); idx >= 0 {
		mediaType = mediaType[:idx]
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	if _, ok := allowedAttachmentTypes[mediaType]; !ok {
		return ErrUnsupportedFileType
	}
	if size > MaxAttachmentSize {
		return ErrFileTooLarge
	}
	return nil
}

// Create records an announcement attributed to the caller, plus a document
// row when an attachment is supplied, as one atomic unit.
//
// The attachment is first written to a staging directory; the database
// transaction covers the annonce, its authorship link and the document
// rows. Only after commit is the staged file renamed into the public
// uploads directory, so a rolled-back transaction never leaves a reachable
// file behind.
func (s *AnnouncementService) Create(
	ctx context.Context,
	callerEmail string,
	req CreateAnnouncementRequest,
) (*model.Announcement, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, ErrInvalidAnnouncementReq
	}

	importance := req.Importance
	if importance <= 0 {
		importance = model.ImportanceLow
	}

	if req.Attachment != nil {
		if err := ValidateAttachment(req.Attachment.ContentType, req.Attachment.Size); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.FindByEmailWithPerson(ctx, callerEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	if user.Person == nil {
		return nil, ErrPersonNotFound
	}
	person := user.Person

	var staged *storage.StagedFile
	if req.Attachment != nil {
		staged, err = s.stageAttachment(req.Attachment)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	announcement := &model.Announcement{
		ID:          uuid.New(),
		Title:       title,
		Content:     content,
		PublishedAt: now,
		Importance:  importance,
	}
	author := &model.AnnouncementAuthor{
		AnnouncementID: announcement.ID,
		PersonID:       person.ID,
		ProposedAt:     now,
		Person:         person,
	}

	if err := s.createInTx(ctx, announcement, author, staged, person, now); err != nil {
		if staged != nil {
			if discardErr := staged.Discard(); discardErr != nil {
				s.logger.Warn("discard staged upload failed",
					zap.String("announcement_id", announcement.ID.String()),
					zap.Error(discardErr),
				)
			}
		}
		return nil, err
	}

	if staged != nil {
		if err := staged.Promote(); err != nil {
			// The document row is committed; leaving the file in staging
			// would break retrieval, so this is a loud failure.
			s.logger.Error("promote staged upload failed",
				zap.String("announcement_id", announcement.ID.String()),
				zap.String("path", staged.PublicPath()),
				zap.Error(err),
			)
			return nil, fmt.Errorf("promote attachment: %w", err)
		}
		metrics.AttachmentsStored.Inc()
	}

	metrics.AnnouncementsCreated.Inc()
	announcement.Authors = []model.AnnouncementAuthor{*author}

	s.writeAudit(ctx, &user.ID, "announcement.create", announcement.ID.String(), nil, map[string]interface{}{
		"titre":    announcement.Title,
		"deg_imp":  announcement.Importance,
		"attached": staged != nil,
	})

	return announcement, nil
}

func (s *AnnouncementService) stageAttachment(att *Attachment) (*storage.StagedFile, error) {
	src, err := att.Open()
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	defer src.Close()

	// LimitReader guards against a lying Content-Length: reading one byte
	// past the cap makes an oversize stream visible in the staged count,
	// which must match the declared size exactly.
	staged, err := s.files.Stage(att.FileName, io.LimitReader(src, MaxAttachmentSize+1))
	if err != nil {
		return nil, err
	}

	if staged.Size() != att.Size {
		if discardErr := staged.Discard(); discardErr != nil {
			s.logger.Warn("discard staged upload failed",
				zap.String("file", att.FileName),
				zap.Error(discardErr),
			)
		}
		if staged.Size() > MaxAttachmentSize {
			return nil, ErrFileTooLarge
		}
		return nil, fmt.Errorf("attachment stream is %d bytes, declared %d", staged.Size(), att.Size)
	}
	return staged, nil
}

func (s *AnnouncementService) createInTx(
	ctx context.Context,
	announcement *model.Announcement,
	author *model.AnnouncementAuthor,
	staged *storage.StagedFile,
	person *model.Person,
	now time.Time,
) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := s.announcementRepo.CreateTx(ctx, tx, announcement, author); err != nil {
		return err
	}

	if staged != nil {
		document := &model.Document{
			ID:              uuid.New(),
			Title:           announcement.Title,
			Type:            model.DocumentTypeAnnouncement,
			Path:            staged.PublicPath(),
			CreatedAt:       now,
			Version:         model.DocumentInitialVersion,
			Confidentiality: model.DefaultConfidentialityLevel,
			AnnouncementID:  &announcement.ID,
		}
		docAuthor := &model.DocumentAuthor{
			DocumentID:  document.ID,
			PersonID:    person.ID,
			PublishedAt: now,
		}
		if err := s.documentRepo.CreateTx(ctx, tx, document, docAuthor); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// List returns announcements ordered per the caller's options, each with
// its authors and its attachment (or nil).
func (s *AnnouncementService) List(
	ctx context.Context,
	opts repository.AnnouncementListOptions,
) ([]*model.Announcement, error) {
	items, err := s.announcementRepo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	documents, err := s.documentRepo.FindByAnnouncements(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		item.Document = documents[item.ID]
	}
	return items, nil
}

func (s *AnnouncementService) GetByID(ctx context.Context, announcementID string) (*model.Announcement, error) {
	id, err := uuid.Parse(strings.TrimSpace(announcementID))
	if err != nil {
		return nil, ErrInvalidAnnouncementReq
	}

	item, err := s.announcementRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}

	doc, err := s.documentRepo.FindByAnnouncement(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	item.Document = doc
	return item, nil
}

// Update replaces titre, contenu and deg_imp. date_pub and the authorship
// link are immutable.
func (s *AnnouncementService) Update(
	ctx context.Context,
	operatorID string,
	announcementID string,
	req UpdateAnnouncementRequest,
) (*model.Announcement, error) {
	current, err := s.GetByID(ctx, announcementID)
	if err != nil {
		return nil, err
	}

	next := *current
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrInvalidAnnouncementReq
		}
		next.Title = title
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, ErrInvalidAnnouncementReq
		}
		next.Content = content
	}
	if req.Importance != nil {
		if *req.Importance < model.ImportanceLow || *req.Importance > model.ImportanceHigh {
			return nil, ErrInvalidAnnouncementReq
		}
		next.Importance = *req.Importance
	}

	if err := s.announcementRepo.Update(ctx, &next); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}

	s.auditFromOperator(ctx, operatorID, "announcement.update", next.ID.String(), map[string]interface{}{
		"titre":   current.Title,
		"deg_imp": current.Importance,
	}, map[string]interface{}{
		"titre":   next.Title,
		"deg_imp": next.Importance,
	})

	return &next, nil
}

// Delete removes the announcement; links and document rows cascade at the
// database level. The stored file, if any, is removed best-effort.
func (s *AnnouncementService) Delete(ctx context.Context, operatorID string, announcementID string) error {
	current, err := s.GetByID(ctx, announcementID)
	if err != nil {
		return err
	}

	if err := s.announcementRepo.Delete(ctx, current.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAnnouncementNotFound
		}
		return err
	}

	if current.Document != nil {
		if err := s.files.Remove(current.Document.Path); err != nil {
			s.logger.Warn("remove attachment file failed",
				zap.String("path", current.Document.Path),
				zap.Error(err),
			)
		}
	}

	s.auditFromOperator(ctx, operatorID, "announcement.delete", current.ID.String(), map[string]interface{}{
		"titre": current.Title,
	}, nil)

	return nil
}

func (s *AnnouncementService) writeAudit(
	ctx context.Context,
	userID *uuid.UUID,
	action, resourceID string,
	oldValue, newValue map[string]interface{},
) {
	if s.auditRepo == nil {
		return
	}

	resourceType := "announcement"
	if err := s.auditRepo.Create(ctx, &model.AuditLog{
		UserID:       userID,
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

func (s *AnnouncementService) auditFromOperator(
	ctx context.Context,
	operatorID string,
	action, resourceID string,
	oldValue, newValue map[string]interface{},
) {
	var userID *uuid.UUID
	if parsed, err := uuid.Parse(strings.TrimSpace(operatorID)); err == nil {
		userID = &parsed
	}
	s.writeAudit(ctx, userID, action, resourceID, oldValue, newValue)
}
