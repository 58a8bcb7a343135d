package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/harborgoods/storefront-backend/pkg/auth"
	"github.com/harborgoods/storefront-backend/pkg/auth/session"
	"github.com/harborgoods/storefront-backend/pkg/config"
	"github.com/harborgoods/storefront-backend/pkg/db/models"
	"github.com/harborgoods/storefront-backend/pkg/enums"
	pkgerrors "github.com/harborgoods/storefront-backend/pkg/errors"
	"github.com/harborgoods/storefront-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// CheckKindUsername and CheckKindEmail name the fields CheckValid accepts.
const (
	CheckKindUsername = "username"
	CheckKindEmail    = "email"
)

// Service defines the account behavior needed by the controllers.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	CheckValid(ctx context.Context, value, kind string) (bool, error)
	SelectQuestion(ctx context.Context, username string) (string, error)
	CheckAnswer(ctx context.Context, req CheckAnswerRequest) (string, error)
	ForgetResetPassword(ctx context.Context, req ForgetResetRequest) error
	ResetPassword(ctx context.Context, userID uuid.UUID, req ResetPasswordRequest) error
	UpdateInformation(ctx context.Context, userID uuid.UUID, req UpdateInformationRequest) (*UserDTO, error)
	GetInformation(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
}

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateProfile(ctx context.Context, user *models.User) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

type resetTokenStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	ResetTokenKey(username string) string
}

type service struct {
	store       userStore
	session     sessionManager
	tokens      resetTokenStore
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Store          userStore
	SessionManager sessionManager
	ResetTokens    resetTokenStore
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs an account service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.ResetTokens == nil {
		return nil, fmt.Errorf("reset token store is required")
	}
	return &service{
		store:       params.Store,
		session:     params.SessionManager,
		tokens:      params.ResetTokens,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*UserDTO, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	taken, err := s.store.UsernameTaken(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already registered")
	}
	taken, err = s.store.EmailTaken(ctx, email, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		Phone:        req.Phone,
		Question:     req.Question,
		Answer:       req.Answer,
		Role:         enums.UserRoleCustomer,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FromModel(user),
	}, nil
}

// CheckValid reports whether the value is still available for registration.
func (s *service) CheckValid(ctx context.Context, value, kind string) (bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "value is required")
	}
	switch kind {
	case CheckKindUsername:
		taken, err := s.store.UsernameTaken(ctx, trimmed)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}
		return !taken, nil
	case CheckKindEmail:
		taken, err := s.store.EmailTaken(ctx, strings.ToLower(trimmed), uuid.Nil)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}
		return !taken, nil
	default:
		return false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown check type %q", kind))
	}
}

func (s *service) SelectQuestion(ctx context.Context, username string) (string, error) {
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user.Question == nil || strings.TrimSpace(*user.Question) == "" {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "security question not set")
	}
	return *user.Question, nil
}

// CheckAnswer verifies the security answer and mints a short-lived reset
// token held in Redis. The token is the only proof accepted by
// ForgetResetPassword.
func (s *service) CheckAnswer(ctx context.Context, req CheckAnswerRequest) (string, error) {
	user, err := s.findByUsername(ctx, req.Username)
	if err != nil {
		return "", err
	}
	if user.Answer == nil || !strings.EqualFold(strings.TrimSpace(*user.Answer), strings.TrimSpace(req.Answer)) {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "answer does not match")
	}

	token := uuid.NewString()
	key := s.tokens.ResetTokenKey(user.Username)
	if err := s.tokens.Set(ctx, key, token, s.passwordCfg.ResetTokenTTL()); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store reset token")
	}
	return token, nil
}

func (s *service) ForgetResetPassword(ctx context.Context, req ForgetResetRequest) error {
	user, err := s.findByUsername(ctx, req.Username)
	if err != nil {
		return err
	}

	key := s.tokens.ResetTokenKey(user.Username)
	stored, err := s.tokens.Get(ctx, key)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired reset token")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(req.ResetToken)) != 1 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired reset token")
	}

	if err := s.rotatePassword(ctx, user.ID, req.NewPassword); err != nil {
		return err
	}
	if err := s.tokens.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume reset token")
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, userID uuid.UUID, req ResetPasswordRequest) error {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return err
	}
	valid, err := security.VerifyPassword(req.OldPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "old password does not match")
	}
	return s.rotatePassword(ctx, user.ID, req.NewPassword)
}

func (s *service) UpdateInformation(ctx context.Context, userID uuid.UUID, req UpdateInformationRequest) (*UserDTO, error) {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	taken, err := s.store.EmailTaken(ctx, email, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	user.Email = email
	user.Phone = req.Phone
	user.Question = req.Question
	if req.Answer != nil {
		user.Answer = req.Answer
	}
	if err := s.store.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	return FromModel(user), nil
}

func (s *service) GetInformation(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	input := strings.TrimSpace(username)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.store.FindByUsername(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) rotatePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	passwordHash, err := security.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.store.UpdatePassword(ctx, userID, passwordHash); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	return nil
}

func (s *service) findByUsername(ctx context.Context, username string) (*models.User, error) {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	user, err := s.store.FindByUsername(ctx, trimmed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return user, nil
}

func (s *service) findByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not resolved")
	}
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return user, nil
}
