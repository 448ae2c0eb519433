package tenant

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
	"github.com/AhilyaKokare/visitor-pass-service/internal/user"
)

type Handler interface {
	Routes() chi.Router
}

type handler struct {
	logger    *zap.Logger
	service   Service
	users     user.Service
	validator *validator.Validate
}

func NewHandler(service Service, users user.Service, l *zap.Logger) Handler {
	return &handler{
		logger:    l,
		service:   service,
		users:     users,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/tenants", h.create)
	r.Get("/locations", h.list)
	r.Delete("/locations/{tenantID}/admin", h.deleteAdmin)
	return r
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		h.writeInternal(w, nil)
		return
	}

	var req createTenantRequest
	if !httpx.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	creator, err := h.users.Profile(ctx, claims.UID)
	if err != nil {
		h.writeInternal(w, err)
		return
	}

	info, err := h.service.CreateWithAdmin(ctx, creator.Name, CreateTenantAndAdminRequest{
		TenantName:      req.TenantName,
		LocationDetails: req.LocationDetails,
		AdminName:       req.AdminName,
		AdminEmail:      req.AdminEmail,
		AdminPassword:   req.AdminPassword,
		AdminContact:    req.AdminContact,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, info)
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	infos, err := h.service.List(ctx)
	if err != nil {
		h.writeInternal(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, infos)
}

func (h *handler) deleteAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	tenantID, err := strconv.ParseInt(chi.URLParam(r, "tenantID"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrValidationFailed,
			Message: "invalid tenant id",
		})
		return
	}

	deleted, err := h.service.DeleteAdmin(ctx, tenantID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, deleteAdminResponse{Deleted: deleted})
}

func (h *handler) writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrNotFound:
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: "tenant not found",
		})
	case user.ErrDuplicateEmail:
		httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
			Code:    httpx.ErrConflict,
			Message: "email already exists",
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

type createTenantRequest struct {
	TenantName      string `json:"tenant_name" validate:"required,min=2,max=128"`
	LocationDetails string `json:"location_details" validate:"omitempty,max=512"`
	AdminName       string `json:"admin_name" validate:"required,min=2,max=128"`
	AdminEmail      string `json:"admin_email" validate:"required,email"`
	AdminPassword   string `json:"admin_password" validate:"required,min=8,max=72"`
	AdminContact    string `json:"admin_contact" validate:"omitempty,max=20"`
}

type deleteAdminResponse struct {
	Deleted int64 `json:"deleted"`
}
