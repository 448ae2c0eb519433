package user

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/httpx"
	"github.com/AhilyaKokare/visitor-pass-service/internal/middleware"
	"github.com/AhilyaKokare/visitor-pass-service/internal/role"
)

type Handler interface {
	AdminRoutes() chi.Router
	ProfileRoutes() chi.Router
}

type handler struct {
	logger    *zap.Logger
	service   Service
	validator *validator.Validate
}

func NewHandler(service Service, l *zap.Logger) Handler {
	return &handler{
		logger:    l,
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// AdminRoutes is mounted under a tenant-scoped admin prefix.
func (h *handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/users", h.list)
	r.Post("/users", h.create)
	r.Put("/users/{userID}/status", h.updateStatus)
	return r
}

func (h *handler) ProfileRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/me", h.profile)
	r.Put("/me", h.updateProfile)
	return r
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	tenantID, ok := tenantParam(w, r)
	if !ok {
		return
	}

	users, err := h.service.ListByTenant(ctx, tenantID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		h.writeInternal(w, nil)
		return
	}
	tenantID, ok := tenantParam(w, r)
	if !ok {
		return
	}

	var req createUserRequest
	if !httpx.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	u, err := h.service.Create(ctx, tenantID, claims.UID, CreateUserRequest{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Contact:     req.Contact,
		Role:        role.Role(req.Role),
		JoiningDate: req.JoiningDate,
		Address:     req.Address,
		Gender:      req.Gender,
		Department:  req.Department,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (h *handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		h.writeInternal(w, nil)
		return
	}
	tenantID, ok := tenantParam(w, r)
	if !ok {
		return
	}
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrValidationFailed,
			Message: "invalid user id",
		})
		return
	}

	var req updateStatusRequest
	if !httpx.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	u, err := h.service.UpdateStatus(ctx, tenantID, userID, claims.UID, *req.IsActive)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		h.writeInternal(w, nil)
		return
	}

	u, err := h.service.Profile(ctx, claims.UID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		h.writeInternal(w, nil)
		return
	}

	var req updateProfileRequest
	if !httpx.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	u, err := h.service.UpdateProfile(ctx, claims.UID, UpdateProfileRequest{
		Email:   req.Email,
		Contact: req.Contact,
		Address: req.Address,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

func (h *handler) writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrNotFound:
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: "user not found",
		})
	case ErrDuplicateEmail:
		httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
			Code:    httpx.ErrConflict,
			Message: "email already exists",
		})
	case ErrWrongTenant:
		httpx.WriteError(w, http.StatusForbidden, httpx.ErrorResponse[any]{
			Code:    httpx.ErrForbidden,
			Message: "user does not belong to the specified tenant",
		})
	case ErrInvalidRole:
		httpx.WriteError(w, http.StatusUnprocessableEntity, httpx.ErrorResponse[any]{
			Code:    httpx.ErrValidationFailed,
			Message: "invalid role",
		})
	default:
		h.writeInternal(w, err)
	}
}

func (h *handler) writeInternal(w http.ResponseWriter, err error) {
	if err != nil {
		h.logger.Error("internal server error", zap.Error(err))
	}
	httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
		Code:    httpx.ErrInternal,
		Message: "internal server error",
	})
}

func tenantParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrValidationFailed,
			Message: "invalid tenant id",
		})
		return 0, false
	}
	return id, true
}

type createUserRequest struct {
	Name        string     `json:"name" validate:"required,min=2,max=128"`
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=8,max=72"`
	Contact     string     `json:"contact" validate:"omitempty,max=20"`
	Role        string     `json:"role" validate:"required,oneof=tenant_admin employee approver security"`
	JoiningDate *time.Time `json:"joining_date,omitempty"`
	Address     string     `json:"address" validate:"omitempty,max=512"`
	Gender      string     `json:"gender" validate:"omitempty,max=32"`
	Department  string     `json:"department" validate:"omitempty,max=64"`
}

type updateStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type updateProfileRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Contact string `json:"contact" validate:"omitempty,max=20"`
	Address string `json:"address" validate:"omitempty,max=512"`
}
