// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/brewflow-storefront/internal/domain/auth"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"github.com/your-org/brewflow-storefront/internal/pkg/notify"
)

// AuthHandler handles admin authentication
type AuthHandler struct {
	deps *Dependencies
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(deps *Dependencies) *AuthHandler {
	return &AuthHandler{deps: deps}
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password
type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePasswordRequest is the body of POST /admin/change-password
type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Login handles POST /auth/login?role=admin. Customers have no password and
// continue with their Customer ID instead.
func (h *AuthHandler) Login(c *gin.Context) {
	v := h.deps.visitor(c)

	role := auth.ParseRole(c.Query("role"))
	if !role.IsAdmin() {
		fail(c, v, "Brew interrupted", apperr.Validation("auth.Login", "Customers continue with their Customer ID"))
		return
	}

	var req LoginRequest
	if !bindJSON(c, v, "auth.Login", "Brew interrupted", &req) {
		return
	}

	err := v.auth.Login(c.Request.Context(), auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		fail(c, v, "Brew interrupted", err)
		return
	}

	v.notices.Notify(c.Request.Context(), notify.Success("Welcome back, Admin!", "Let's get brewing ☕"))
	respond(c, http.StatusOK, v, "Login successful", gin.H{"role": role})
}

// ForgotPassword handles POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	v := h.deps.visitor(c)

	var req ForgotPasswordRequest
	if !bindJSON(c, v, "auth.ForgotPassword", "Request failed", &req) {
		return
	}

	if err := v.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		fail(c, v, "Request failed", err)
		return
	}

	v.notices.Notify(c.Request.Context(), notify.Success("Check your inbox", "A reset link has been sent to your email."))
	respond(c, http.StatusOK, v, "Reset email sent", nil)
}

// ResetPassword handles POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	v := h.deps.visitor(c)

	var req ResetPasswordRequest
	if !bindJSON(c, v, "auth.ResetPassword", "Reset failed", &req) {
		return
	}
	if req.Token == "" {
		req.Token = c.Query("token")
	}

	if err := v.auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		fail(c, v, "Reset failed", err)
		return
	}

	v.notices.Notify(c.Request.Context(), notify.Success("Password updated", "You can now log in with your new password."))
	respond(c, http.StatusOK, v, "Password reset successfully", nil)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	v := h.deps.visitor(c)

	if err := v.auth.Logout(c.Request.Context()); err != nil {
		fail(c, v, "Error", err)
		return
	}

	v.notices.Notify(c.Request.Context(), notify.Success("Signed out successfully", "See you at the next shift ☕"))
	respond(c, http.StatusOK, v, "Logged out", nil)
}

// ChangePassword handles POST /admin/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	v := h.deps.visitor(c)

	var req ChangePasswordRequest
	if !bindJSON(c, v, "auth.ChangePassword", "Update failed", &req) {
		return
	}

	err := v.auth.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		fail(c, v, "Update failed", err)
		return
	}

	v.notices.Notify(c.Request.Context(), notify.Success("Password changed", "Your admin password has been updated."))
	respond(c, http.StatusOK, v, "Password changed successfully", nil)
}
