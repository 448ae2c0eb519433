package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/httpx"
)

type Handler interface {
	Login(w http.ResponseWriter, r *http.Request)
	ForgotPassword(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	Routes() chi.Router
}

type handler struct {
	logger       *zap.Logger
	service      Service
	validator    *validator.Validate
	resetBaseURL string
}

func NewHandler(service Service, resetBaseURL string, l *zap.Logger) Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	return &handler{
		logger:       l,
		service:      service,
		validator:    v,
		resetBaseURL: resetBaseURL,
	}
}

func (h *handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/reset-password", h.ResetPassword)
	return r
}

func (h *handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req loginRequest
	if !httpx.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	res, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch err {
		case ErrInvalidCredentials, ErrUserNotActive:
			h.logger.Debug("login rejected", zap.Error(err))
			httpx.WriteError(w, http.StatusUnauthorized, httpx.ErrorResponse[any]{
				Code:    httpx.ErrUnauthorized,
				Message: "invalid username or password",
			})
		default:
			h.logger.Error("login failed", zap.Error(err))
			httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
				Code:    httpx.ErrInternal,
				Message: "internal server error",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   res.ExpiresAt,
		Role:        string(res.User.Role),
		TenantID:    res.User.TenantID,
	})
}

func (h *handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req forgotPasswordRequest
	if !httpx.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	if err := h.service.InitiatePasswordReset(ctx, req.Email, h.resetBaseURL); err != nil {
		h.logger.Error("failed to initiate password reset", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}

	// Same response whether or not the account exists.
	httpx.WriteJSON(w, http.StatusAccepted, messageResponse{
		Message: "if the account exists, a reset link has been sent",
	})
}

func (h *handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req resetPasswordRequest
	if !httpx.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	if err := h.service.ResetPassword(ctx, req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		switch err {
		case ErrPasswordMismatch:
			httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ErrorResponse[any]{
				Code:    httpx.ErrValidationFailed,
				Message: "passwords do not match",
			})
		case ErrInvalidResetToken:
			httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
				Code:    httpx.ErrUnauthorized,
				Message: "invalid or expired reset token",
			})
		default:
			h.logger.Error("failed to reset password", zap.Error(err))
			httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
				Code:    httpx.ErrInternal,
				Message: "internal server error",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

type loginRequest struct {
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        string    `json:"role"`
	TenantID    *int64    `json:"tenant_id,omitempty"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,min=8,max=72"`
}

type messageResponse struct {
	Message string `json:"message"`
}
