package dashboard

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/httpx"
	"github.com/AhilyaKokare/visitor-pass-service/internal/middleware"
)

type Handler interface {
	// Routes serves the per-user stats endpoint.
	Routes() chi.Router
	// TenantOverview is mounted under the tenant admin prefix.
	TenantOverview(w http.ResponseWriter, r *http.Request)
	// GlobalOverview is mounted under the super admin prefix.
	GlobalOverview(w http.ResponseWriter, r *http.Request)
}

type handler struct {
	logger *zap.Logger
	repo   Repo
}

func NewHandler(repo Repo, l *zap.Logger) Handler {
	return &handler{logger: l, repo: repo}
}

func (h *handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/user-stats", h.userStats)
	return r
}

func (h *handler) userStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		h.writeInternal(w, nil)
		return
	}

	stats, err := h.repo.UserStats(ctx, claims.UID)
	if err != nil {
		h.writeInternal(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *handler) TenantOverview(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.repo.TenantStats(ctx, tenantID, time.Now())
	if err != nil {
		h.writeInternal(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *handler) GlobalOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	stats, err := h.repo.GlobalStats(ctx, time.Now())
	if err != nil {
		h.writeInternal(w, err)
		return
	}

	activity, err := h.repo.TenantActivity(ctx, 0, 20)
	if err != nil {
		h.writeInternal(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, globalOverviewResponse{
		Stats:    *stats,
		Activity: activity,
	})
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

type globalOverviewResponse struct {
	Stats    GlobalStats      `json:"stats"`
	Activity []TenantActivity `json:"activity"`
}
