package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/metrics"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/model"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
	jwtutil "github.com/Soufiane-Tahiri/faculty-management-portal/pkg/jwt"
)

const (
	accessTokenTTL = 12 * time.Hour

	resetTokenTTL   = 30 * time.Minute
	resetTokenBytes = 32

	minPasswordLength = 8
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountPending      = errors.New("account awaiting approval")
	ErrAccountDisabled     = errors.New("account disabled")
	ErrInvalidRegistration = errors.New("invalid registration input")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrPasswordTooShort    = errors.New("password too short")
)

type RegisterRequest struct {
	LastName  string
	FirstName string
	Email     string
	Password  string
	Role      model.UserRole
	Phone     *string
	City      *string
	Address   *string
}

// LoginResult carries the signed session token and the role's dashboard
// destination, resolved once here instead of in every frontend page.
type LoginResult struct {
	User        *model.User
	AccessToken string
	Redirect    string
}

type AuthService struct {
	db            TxBeginner
	userRepo      repository.UserRepository
	personRepo    repository.PersonRepository
	resetRepo     repository.ResetTokenRepository
	auditRepo     repository.AuditRepository
	jwtPrivateKey *rsa.PrivateKey
	logger        *zap.Logger
}

func NewAuthService(
	db TxBeginner,
	userRepo repository.UserRepository,
	personRepo repository.PersonRepository,
	resetRepo repository.ResetTokenRepository,
	auditRepo repository.AuditRepository,
	jwtPrivateKey *rsa.PrivateKey,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{
		db:            db,
		userRepo:      userRepo,
		personRepo:    personRepo,
		resetRepo:     resetRepo,
		auditRepo:     auditRepo,
		jwtPrivateKey: jwtPrivateKey,
		logger:        logger,
	}
}

// Login verifies credentials and account status, then issues an access
// token. Pending and disabled accounts never authenticate.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.LoginAttempts.WithLabelValues("unknown_account").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginAttempts.WithLabelValues("bad_password").Inc()
		return nil, ErrInvalidCredentials
	}

	switch user.Status {
	case model.UserStatusActive:
	case model.UserStatusPending:
		metrics.LoginAttempts.WithLabelValues("pending").Inc()
		return nil, ErrAccountPending
	default:
		metrics.LoginAttempts.WithLabelValues("disabled").Inc()
		return nil, ErrAccountDisabled
	}

	claims := jwtutil.NewClaims(user.ID.String(), user.Email, string(user.Role), accessTokenTTL)
	token, err := jwtutil.GenerateAccessToken(claims, s.jwtPrivateKey)
	if err != nil {
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return &LoginResult{
		User:        user,
		AccessToken: token,
		Redirect:    user.Role.Dashboard(),
	}, nil
}

// Register creates the Person profile and its pending user account in one
// transaction.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	lastName := strings.TrimSpace(req.LastName)
	firstName := strings.TrimSpace(req.FirstName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if lastName == "" || firstName == "" || email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidRegistration
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := req.Role
	if role == "" {
		role = model.UserRoleStudent
	}
	if !role.Valid() {
		return nil, ErrInvalidRegistration
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	person := &model.Person{
		LastName:  lastName,
		FirstName: firstName,
		Email:     email,
		Phone:     req.Phone,
		City:      req.City,
		Address:   req.Address,
	}
	name := firstName + " " + lastName
	user := &model.User{
		Email:        email,
		Name:         &name,
		PasswordHash: string(hash),
		Role:         role,
		Status:       model.UserStatusPending,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := s.personRepo.CreateTx(ctx, tx, person); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.PersonID = &person.ID
	if err := s.userRepo.CreateTx(ctx, tx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	user.Person = person
	return user, nil
}

// ForgotPassword issues a reset token for the account. The token would be
// delivered out of band; callers always receive success so the endpoint
// cannot be used to probe for registered emails.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	token := hex.EncodeToString(buf)

	if err := s.resetRepo.Create(ctx, &model.PasswordResetToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(resetTokenTTL),
	}); err != nil {
		return err
	}

	// Mail delivery lives outside this service; the token is logged for
	// the operator until a mailer is wired in.
	s.logger.Info("password reset token issued", zap.String("user_id", user.ID.String()))
	return nil
}

// ResetPassword consumes a token and replaces the account password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	record, err := s.resetRepo.FindByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if !record.Usable(time.Now().UTC()) {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// The hash write goes first: if it fails the token stays usable and
	// the user can retry, instead of burning the token for nothing.
	if err := s.userRepo.UpdatePasswordHash(ctx, record.UserID, string(hash)); err != nil {
		return err
	}
	if err := s.resetRepo.MarkUsed(ctx, record.Token); err != nil {
		return err
	}

	s.writeAudit(ctx, record.UserID.String(), "user.password_reset", record.UserID.String())
	return nil
}

func (s *AuthService) writeAudit(ctx context.Context, userID, action, resourceID string) {
	if s.auditRepo == nil {
		return
	}

	resourceType := "user"
	log := &model.AuditLog{
		Action:       action,
		ResourceType: &resourceType,
		ResourceID:   &resourceID,
		CreatedAt:    time.Now().UTC(),
	}
	if parsed, err := uuid.Parse(userID); err == nil {
		log.UserID = &parsed
	}
	if err := s.auditRepo.Create(ctx, log); err != nil {
		s.logger.Warn("write audit log failed", zap.String("action", action), zap.Error(err))
	}
}
