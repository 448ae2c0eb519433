package pass

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
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type Handler interface {
	PassRoutes() chi.Router
	ApprovalRoutes() chi.Router
	SecurityRoutes() chi.Router
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

// PassRoutes serves the employee surface: create a pass, view own history.
func (h *handler) PassRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/history", h.history)
	return r
}

func (h *handler) ApprovalRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/{passID}/approve", h.approve)
	r.Post("/{passID}/reject", h.reject)
	return r
}

func (h *handler) SecurityRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/dashboard/today", h.today)
	r.Get("/passes/search", h.search)
	r.Post("/check-in/{passID}", h.checkIn)
	r.Post("/check-out/{passID}", h.checkOut)
	return r
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

	var req createPassRequest
	if !httpx.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	p, err := h.service.Create(ctx, tenantID, claims.UID, CreateRequest{
		VisitorName:  req.VisitorName,
		VisitorEmail: req.VisitorEmail,
		VisitorPhone: req.VisitorPhone,
		Purpose:      req.Purpose,
		VisitAt:      req.VisitAt,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		h.writeInternal(w, nil)
		return
	}

	offset, limit := pageParams(r)
	page, err := h.service.History(ctx, claims.UID, offset, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	tenantID, ok := tenantParam(w, r)
	if !ok {
		return
	}

	offset, limit := pageParams(r)
	page, err := h.service.ListByTenant(ctx, tenantID, offset, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

func (h *handler) approve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		h.writeInternal(w, nil)
		return
	}
	passID, ok := passParam(w, r)
	if !ok {
		return
	}

	p, err := h.service.Approve(ctx, passID, claims.UID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *handler) reject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		h.writeInternal(w, nil)
		return
	}
	passID, ok := passParam(w, r)
	if !ok {
		return
	}

	var req rejectPassRequest
	if !httpx.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	p, err := h.service.Reject(ctx, passID, claims.UID, req.Reason)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *handler) today(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	tenantID, ok := tenantParam(w, r)
	if !ok {
		return
	}

	visitors, err := h.service.TodayVisitors(ctx, tenantID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, visitors)
}

func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	tenantID, ok := tenantParam(w, r)
	if !ok {
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrValidationFailed,
			Message: "code query parameter is required",
		})
		return
	}

	p, err := h.service.FindByCode(ctx, tenantID, code)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *handler) checkIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CheckIn)
}

func (h *handler) checkOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CheckOut)
}

func (h *handler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, passID, securityUserID int64) (*VisitorPass, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		h.writeInternal(w, nil)
		return
	}
	passID, ok := passParam(w, r)
	if !ok {
		return
	}

	p, err := op(ctx, passID, claims.UID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *handler) writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrNotFound:
		httpx.WriteError(w, http.StatusNotFound, httpx.ErrorResponse[any]{
			Code:    httpx.ErrNotFound,
			Message: "visitor pass not found",
		})
	case ErrNotApproved, ErrNotCheckedIn, ErrAlreadyFinalized:
		httpx.WriteError(w, http.StatusConflict, httpx.ErrorResponse[any]{
			Code:    httpx.ErrConflict,
			Message: err.Error(),
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

func passParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "passID"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.ErrorResponse[any]{
			Code:    httpx.ErrValidationFailed,
			Message: "invalid pass id",
		})
		return 0, false
	}
	return id, true
}

func pageParams(r *http.Request) (offset, limit int) {
	limit = defaultPageLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, maxPageLimit)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return offset, limit
}

type createPassRequest struct {
	VisitorName  string    `json:"visitor_name" validate:"required,min=2,max=128"`
	VisitorEmail string    `json:"visitor_email" validate:"required,email"`
	VisitorPhone string    `json:"visitor_phone" validate:"required,min=7,max=20"`
	Purpose      string    `json:"purpose" validate:"required,min=3,max=512"`
	VisitAt      time.Time `json:"visit_at" validate:"required"`
}

type rejectPassRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=512"`
}
