package services

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "cakeshop/common/errors"
	"cakeshop/models"
	aws_pkg "cakeshop/pkg/aws"
	"cakeshop/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// ResetRequestedMessage is returned whether or not the email exists.
	ResetRequestedMessage = "If the email exists, a reset link has been sent"
	ResetTokenTTL         = time.Hour
)

// TokenIssuer signs session credentials.
type TokenIssuer interface {
	GenerateToken(userID, email string, role models.Role) (string, error)
}

// AuthService covers the identity lifecycle and the caller's own profile.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, req *LoginRequest) (*models.User, string, error)
	Me(ctx context.Context, caller *models.Identity) (*models.User, error)
	RequestPasswordReset(ctx context.Context, req *ResetPasswordRequest) error
	ConfirmPasswordReset(ctx context.Context, req *ConfirmResetRequest) error
	GetProfile(ctx context.Context, caller *models.Identity) (*models.User, error)
	UpdateProfile(ctx context.Context, caller *models.Identity, req *ProfileUpdateRequest) (*models.User, error)
}

type authServiceImpl struct {
	users   repository.UserRepository
	tokens  TokenIssuer
	events  eventPublisher
	metrics aws_pkg.MetricsRecorder
	logger  *zap.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens TokenIssuer,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	metrics aws_pkg.MetricsRecorder,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		users:   users,
		tokens:  tokens,
		events:  eventPublisher{sns: snsClient, topicArn: snsTopicArn, logger: logger},
		metrics: metrics,
		logger:  logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authServiceImpl) Register(ctx context.Context, req *RegisterRequest) (*models.User, string, error) {
	email := normalizeEmail(req.Email)

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, "", apperrors.Conflict("Email already registered")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to look up user", zap.Error(err))
		return nil, "", apperrors.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}

	now := time.Now()
	user := &models.User{
		ID:        newID("user"),
		Email:     email,
		Password:  string(hash),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperrors.Conflict("Email already registered")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, "", apperrors.Internal(err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID))
	recordCount(ctx, s.metrics, s.logger, aws_pkg.MetricUsersRegistered, nil)
	s.events.publish(ctx, EventUserRegistered, AuthEvent{
		EventType: EventUserRegistered,
		UserID:    user.ID,
		Email:     user.Email,
		Timestamp: now,
	})
	return user, token, nil
}

func (s *authServiceImpl) Login(ctx context.Context, req *LoginRequest) (*models.User, string, error) {
	invalid := apperrors.Unauthorized("Invalid email or password")

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", invalid
	}
	if err != nil {
		s.logger.Error("Failed to look up user", zap.Error(err))
		return nil, "", apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, "", invalid
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}
	return user, token, nil
}

// Me returns nil without an error for anonymous callers and for credentials
// whose user no longer exists.
func (s *authServiceImpl) Me(ctx context.Context, caller *models.Identity) (*models.User, error) {
	if caller == nil {
		return nil, nil
	}
	user, err := s.users.FindByID(ctx, caller.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *authServiceImpl) RequestPasswordReset(ctx context.Context, req *ResetPasswordRequest) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Internal(err)
	}

	token := uuid.NewString()
	expiry := time.Now().Add(ResetTokenTTL)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("Failed to store reset token", zap.String("user_id", user.ID), zap.Error(err))
		return apperrors.Internal(err)
	}

	s.events.publish(ctx, EventPasswordResetRequested, AuthEvent{
		EventType:  EventPasswordResetRequested,
		UserID:     user.ID,
		Email:      user.Email,
		ResetToken: token,
		ExpiresAt:  &expiry,
		Timestamp:  time.Now(),
	})
	return nil
}

func (s *authServiceImpl) ConfirmPasswordReset(ctx context.Context, req *ConfirmResetRequest) error {
	invalid := apperrors.BadRequest("Invalid or expired reset token")

	user, err := s.users.FindByResetToken(ctx, req.Token)
	if errors.Is(err, repository.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return apperrors.Internal(err)
	}
	if user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		return invalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal(err)
	}
	user.Password = string(hash)
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.Internal(err)
	}

	s.logger.Info("Password reset", zap.String("user_id", user.ID))
	return nil
}

func (s *authServiceImpl) GetProfile(ctx context.Context, caller *models.Identity) (*models.User, error) {
	if caller == nil {
		return nil, apperrors.Unauthorized("")
	}
	user, err := s.users.FindByID(ctx, caller.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *authServiceImpl) UpdateProfile(ctx context.Context, caller *models.Identity, req *ProfileUpdateRequest) (*models.User, error) {
	user, err := s.GetProfile(ctx, caller)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	other, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil && other.ID != user.ID:
		return nil, apperrors.Conflict("Email already in use")
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.Internal(err)
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Email = email
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Email already in use")
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}
