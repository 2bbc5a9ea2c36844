// internal/domain/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/brewflow-storefront/internal/infrastructure/backend"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"github.com/your-org/brewflow-storefront/internal/pkg/auth"
	"github.com/your-org/brewflow-storefront/internal/pkg/persistence"
)

const (
	MsgTokenMissing = "Admin token missing"
	MsgReauth       = "Not authorized. Please login again."
	MsgExpired      = "Session expired. Please login again."
)

// Service is the admin authentication client. The admin token lives in the
// visitor's store under persistence.KeyAdminToken.
type Service struct {
	client *backend.Client
	store  persistence.Store
	policy *auth.PasswordPolicy
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewService creates a new auth client over the visitor's store
func NewService(client *backend.Client, store persistence.Store, policy *auth.PasswordPolicy, logger logrus.FieldLogger) *Service {
	if policy == nil {
		policy = auth.NewPasswordPolicy(0)
	}
	return &Service{
		client: client,
		store:  store,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login signs the admin in and stores the returned token
func (s *Service) Login(ctx context.Context, req LoginRequest) error {
	const op = "auth.Login"

	req.Email = strings.TrimSpace(req.Email)
	if auth.Blank(req.Email, req.Password) {
		return apperr.Validation(op, "Email and password are required")
	}
	if req.Role == "" {
		req.Role = RoleAdmin
	}

	var resp loginResponse
	if err := s.client.DoJSON(ctx, op, backend.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		Body:   req,
	}, &resp, "Login failed"); err != nil {
		return err
	}
	if resp.Token == "" {
		return apperr.Transport(op, "Login failed", nil)
	}

	if err := s.store.Set(ctx, persistence.KeyAdminToken, resp.Token); err != nil {
		return fmt.Errorf("failed to store admin token: %w", err)
	}

	s.logger.WithField("email", req.Email).Info("Admin logged in")
	return nil
}

// ForgotPassword asks the backend to email a reset link
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.ForgotPassword"

	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.Validation(op, "Please enter your admin email")
	}

	return s.client.DoJSON(ctx, op, backend.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/forgot-password",
		Body:   map[string]string{"email": email},
	}, nil, "Failed to send reset email")
}

// ResetPassword sets a new password using the token from the reset email
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword, confirm string) error {
	const op = "auth.ResetPassword"

	if strings.TrimSpace(resetToken) == "" {
		return apperr.Validation(op, "Invalid or missing reset token")
	}
	if auth.Blank(newPassword, confirm) {
		return apperr.Validation(op, "Please fill in both fields.")
	}
	if newPassword != confirm {
		return apperr.Validation(op, "Please make sure both passwords are identical.")
	}
	if err := s.policy.ValidatePassword(newPassword); err != nil {
		return apperr.Validation(op, err.Error())
	}

	return s.client.DoJSON(ctx, op, backend.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/update-password",
		Body: map[string]string{
			"token":       resetToken,
			"newPassword": newPassword,
		},
	}, nil, "Failed to reset password")
}

// ChangePassword changes the signed-in admin's password
func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error {
	const op = "auth.ChangePassword"

	if auth.Blank(oldPassword, newPassword, confirm) {
		return apperr.Validation(op, "All fields are required.")
	}
	if newPassword != confirm {
		return apperr.Validation(op, "New passwords do not match.")
	}
	if err := s.policy.ValidatePassword(newPassword); err != nil {
		return apperr.Validation(op, err.Error())
	}

	token, err := s.Token(ctx)
	if err != nil {
		return err
	}

	err = s.client.DoJSON(ctx, op, backend.Request{
		Method: http.MethodPost,
		Path:   "/api/admin/change-password",
		Body: map[string]string{
			"oldPassword": oldPassword,
			"newPassword": newPassword,
		},
		Token: token,
	}, nil, "Failed to change password")
	return s.checkRejected(ctx, op, err)
}

// Logout forgets the admin token
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Remove(ctx, persistence.KeyAdminToken); err != nil {
		return fmt.Errorf("failed to clear admin token: %w", err)
	}
	return nil
}

// Token returns the stored admin token. A missing or locally expired token
// is an authorization error; an expired one is also removed.
func (s *Service) Token(ctx context.Context) (string, error) {
	const op = "auth.Token"

	token, err := s.store.Get(ctx, persistence.KeyAdminToken)
	if errors.Is(err, persistence.ErrNotFound) || (err == nil && strings.TrimSpace(token) == "") {
		return "", apperr.Authorization(op, MsgTokenMissing)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read admin token: %w", err)
	}

	if auth.Expired(token, s.now()) {
		s.logger.Info("Stored admin token expired")
		if err := s.Logout(ctx); err != nil {
			s.logger.WithError(err).Warn("Failed to clear expired admin token")
		}
		return "", apperr.Authorization(op, MsgExpired)
	}
	return token, nil
}

// Reject clears the token after the backend refused it
func (s *Service) Reject(ctx context.Context) error {
	s.logger.Warn("Backend rejected admin token")
	return s.Logout(ctx)
}

func (s *Service) checkRejected(ctx context.Context, op string, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		return err
	}
	if appErr.Status == http.StatusForbidden || appErr.Status == http.StatusUnauthorized {
		if rerr := s.Reject(ctx); rerr != nil {
			s.logger.WithError(rerr).Warn("Failed to clear rejected admin token")
		}
		return apperr.Authorization(op, MsgReauth)
	}
	return err
}
