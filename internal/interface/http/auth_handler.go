package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-registration/internal/application"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/failure"
	"github.com/oksasatya/go-ddd-user-registration/pkg/response"
	"github.com/oksasatya/go-ddd-user-registration/pkg/validation"
)

// AuthService is what the handlers need from the service layer.
type AuthService interface {
	Register(ctx context.Context, in application.RegisterUserInput, meta application.RequestMeta) (*application.RegisterUserOutput, error)
	VerifyEmail(ctx context.Context, userID, token string) error
	RequestRecovery(ctx context.Context, email string, meta application.RequestMeta) error
	ResetPassword(ctx context.Context, in application.ResetPasswordInput) error
	IsEmailVerified(ctx context.Context, userID string) (bool, error)
}

type AuthHandler struct {
	Svc    AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func requestMeta(c *gin.Context) application.RequestMeta {
	return application.RequestMeta{IP: clientIP(c), UserAgent: c.GetHeader("User-Agent")}
}

// statusFor maps a domain failure kind onto an HTTP status.
func statusFor(k failure.Kind) int {
	switch k {
	case failure.Conflict:
		return http.StatusConflict
	case failure.UserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// fail writes err. Domain failures keep their message; anything else is logged
// and reported as a generic 500.
func (h *AuthHandler) fail(c *gin.Context, err error) {
	if f, ok := failure.As(err); ok {
		details := gin.H{"kind": f.Kind.String()}
		if f.Email != "" {
			details["email"] = f.Email
		}
		response.Error[any](c, statusFor(f.Kind), f.Error(), details)
		return
	}
	if h.Logger != nil {
		h.Logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
}

func (h *AuthHandler) badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, failure.NewInvalidData().Error(), validation.ToDetails(err))
}

type registerRequest struct {
	Email                 string `json:"email" binding:"required"`
	Password              string `json:"password" binding:"required"`
	Name                  string `json:"name" binding:"required,max=255"`
	AcceptedTerms         bool   `json:"accepted_terms"`
	AcceptedPrivacyPolicy bool   `json:"accepted_privacy_policy"`
	SystemID              string `json:"system_id"`
	RoleID                string `json:"role_id" binding:"omitempty,uuid"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	out, err := h.Svc.Register(c.Request.Context(), application.RegisterUserInput{
		Email:                 req.Email,
		Password:              req.Password,
		Name:                  req.Name,
		AcceptedTerms:         req.AcceptedTerms,
		AcceptedPrivacyPolicy: req.AcceptedPrivacyPolicy,
		SystemID:              req.SystemID,
		RoleID:                req.RoleID,
	}, requestMeta(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, out, "user registered", nil)
}

// VerifyConfirm POST /api/auth/verify/confirm {user_id, token}
func (h *AuthHandler) VerifyConfirm(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required"`
		Token  string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	if err := h.Svc.VerifyEmail(c.Request.Context(), req.UserID, req.Token); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true}, "email verified", nil)
}

// Recovery POST /api/auth/recovery {email}
func (h *AuthHandler) Recovery(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	if err := h.Svc.RequestRecovery(c.Request.Context(), req.Email, requestMeta(c)); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sent": true}, "recovery email sent", nil)
}

// ResetConfirm POST /api/auth/reset/confirm {email, token, new_password}
func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, err)
		return
	}
	err := h.Svc.ResetPassword(c.Request.Context(), application.ResetPasswordInput{
		Email:       req.Email,
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}

// Verified GET /api/auth/users/:id/verified
func (h *AuthHandler) Verified(c *gin.Context) {
	id := c.Param("id")
	ok, err := h.Svc.IsEmailVerified(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user_id": id, "verified": ok}, "", nil)
}
