package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/attendly/attendance-api/internal/models"
	"github.com/attendly/attendance-api/pkg/config"
	appErrors "github.com/attendly/attendance-api/pkg/errors"
)

type adminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	Update(ctx context.Context, admin *models.Admin) error
}

type authEmployeeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	FindByCode(ctx context.Context, code string) (*models.Employee, error)
	Update(ctx context.Context, emp *models.Employee) error
}

type tokenRepository interface {
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
	RevokeSubjectRefreshTokens(ctx context.Context, subjectType models.Role, subjectID string) error
	CreatePasswordResetToken(ctx context.Context, token *models.PasswordResetToken) error
	ConsumePasswordResetToken(ctx context.Context, token string, now time.Time) (*models.PasswordResetToken, error)
}

// AuthService issues and validates tokens for both admins and employees.
type AuthService struct {
	admins    adminRepository
	employees authEmployeeRepository
	tokens    tokenRepository
	cfg       config.JWTConfig
	resetTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs the service.
func NewAuthService(admins adminRepository, employees authEmployeeRepository, tokens tokenRepository, cfg config.JWTConfig, resetTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if resetTTL <= 0 {
		resetTTL = 30 * time.Minute
	}
	return &AuthService{
		admins:    admins,
		employees: employees,
		tokens:    tokens,
		cfg:       cfg,
		resetTTL:  resetTTL,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// AdminLoginRequest is the admin credential payload.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// EmployeeLoginRequest is the employee credential payload; Code is the badge code.
type EmployeeLoginRequest struct {
	Code     string `json:"code" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest starts the reset flow. The badge code, registered
// email and recovery phrase must all match before a token is issued.
type ForgotPasswordRequest struct {
	Code           string `json:"code" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	RecoveryPhrase string `json:"recovery_phrase" validate:"required"`
}

// ResetPasswordRequest consumes a reset token and sets a new password.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// UpdateAdminProfileRequest mutates the caller's own admin account. The
// current password must be re-presented for any change.
type UpdateAdminProfileRequest struct {
	Username        string  `json:"username" validate:"required"`
	CurrentPassword string  `json:"current_password" validate:"required"`
	NewPassword     *string `json:"new_password" validate:"omitempty,min=6"`
}

// AdminLogin verifies admin credentials and issues a token pair. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) AdminLogin(ctx context.Context, req AdminLoginRequest) (*models.TokenPair, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	admin, err := s.admins.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	pair, err := s.issuePair(ctx, models.RoleAdmin, admin.ID, "")
	if err != nil {
		return nil, err
	}
	s.logger.Info("admin login", zap.String("admin_id", admin.ID))
	return pair, nil
}

// EmployeeLogin verifies employee credentials and issues a token pair.
func (s *AuthService) EmployeeLogin(ctx context.Context, req EmployeeLoginRequest) (*models.TokenPair, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	emp, err := s.employees.FindByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	if bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	pair, err := s.issuePair(ctx, models.RoleEmployee, emp.ID, emp.Code)
	if err != nil {
		return nil, err
	}
	s.logger.Info("employee login", zap.String("employee_id", emp.ID))
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a fresh
// pair is issued for the same subject.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	if refreshToken == "" {
		return nil, appErrors.ErrUnauthorized
	}
	stored, err := s.tokens.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnauthorized
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load refresh token")
	}
	now := s.now().UTC()
	if stored.Revoked || now.After(stored.ExpiresAt) {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.tokens.RevokeRefreshToken(ctx, stored.ID, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rotate refresh token")
	}

	code := ""
	if stored.SubjectType == models.RoleEmployee {
		emp, err := s.employees.FindByID(ctx, stored.SubjectID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.ErrUnauthorized
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
		}
		code = emp.Code
	}
	return s.issuePair(ctx, stored.SubjectType, stored.SubjectID, code)
}

// Logout revokes every active refresh token for the subject.
func (s *AuthService) Logout(ctx context.Context, role models.Role, subjectID string) error {
	if err := s.tokens.RevokeSubjectRefreshTokens(ctx, role, subjectID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke tokens")
	}
	return nil
}

// ForgotPassword issues a single-use reset token when the badge code, email
// and recovery phrase all match. Failures are reported uniformly.
func (s *AuthService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*models.PasswordResetToken, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	emp, err := s.employees.FindByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	if emp.Email == nil || !strings.EqualFold(strings.TrimSpace(*emp.Email), strings.TrimSpace(req.Email)) {
		return nil, appErrors.ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(emp.RecoveryPhrase), []byte(req.RecoveryPhrase)) != 1 {
		return nil, appErrors.ErrInvalidCredentials
	}

	raw, err := randomToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate token")
	}
	token := &models.PasswordResetToken{
		EmployeeID: emp.ID,
		Token:      raw,
		ExpiresAt:  s.now().UTC().Add(s.resetTTL),
	}
	if err := s.tokens.CreatePasswordResetToken(ctx, token); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store token")
	}
	s.logger.Info("password reset token issued", zap.String("employee_id", emp.ID))
	return token, nil
}

// ResetPassword consumes a reset token and replaces the employee password.
// Every active session for the employee is revoked.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	consumed, err := s.tokens.ConsumePasswordResetToken(ctx, req.Token, s.now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrUnauthorized, "reset token is invalid or expired")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to consume token")
	}
	emp, err := s.employees.FindByID(ctx, consumed.EmployeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	emp.PasswordHash = string(hash)
	if err := s.employees.Update(ctx, emp); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	if err := s.tokens.RevokeSubjectRefreshTokens(ctx, models.RoleEmployee, emp.ID); err != nil {
		s.logger.Warn("failed to revoke sessions after reset", zap.Error(err), zap.String("employee_id", emp.ID))
	}
	s.logger.Info("password reset", zap.String("employee_id", emp.ID))
	return nil
}

// UpdateAdminProfile changes the caller's username and optionally password.
// A password change revokes every active session for the admin.
func (s *AuthService) UpdateAdminProfile(ctx context.Context, adminID string, req UpdateAdminProfileRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	admin, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin")
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	username := strings.TrimSpace(req.Username)
	if username != admin.Username {
		if _, err := s.admins.FindByUsername(ctx, username); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username already in use")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
		}
		admin.Username = username
	}

	passwordChanged := false
	if req.NewPassword != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		admin.PasswordHash = string(hash)
		passwordChanged = true
	}

	if err := s.admins.Update(ctx, admin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update admin")
	}
	if passwordChanged {
		if err := s.tokens.RevokeSubjectRefreshTokens(ctx, models.RoleAdmin, admin.ID); err != nil {
			s.logger.Warn("failed to revoke sessions after password change", zap.Error(err), zap.String("admin_id", admin.ID))
		}
	}
	s.logger.Info("admin profile updated", zap.String("admin_id", admin.ID))
	return admin, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.ErrUnauthorized
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) issuePair(ctx context.Context, role models.Role, subjectID, employeeCode string) (*models.TokenPair, error) {
	now := s.now().UTC()
	claims := models.JWTClaims{
		SubjectID:    subjectID,
		Role:         role,
		EmployeeCode: employeeCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Expiration)),
			ID:        uuid.NewString(),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	refresh, err := randomToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate refresh token")
	}
	if err := s.tokens.CreateRefreshToken(ctx, &models.RefreshToken{
		SubjectType: role,
		SubjectID:   subjectID,
		Token:       refresh,
		ExpiresAt:   now.Add(s.cfg.RefreshExpiration),
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store refresh token")
	}

	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.Expiration.Seconds()),
		IssuedAt:     now,
	}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
