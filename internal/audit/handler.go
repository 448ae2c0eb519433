package audit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/httpx"
)

const defaultListLimit = 100

type Handler interface {
	// List serves the tenant admin's audit trail view.
	List(w http.ResponseWriter, r *http.Request)
}

type handler struct {
	logger *zap.Logger
	repo   Repo
}

func NewHandler(repo Repo, l *zap.Logger) Handler {
	return &handler{logger: l, repo: repo}
}

func (h *handler) List(w http.ResponseWriter, r *http.Request) {
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

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= defaultListLimit {
			limit = n
		}
	}

	entries, err := h.repo.ListByTenant(ctx, tenantID, limit)
	if err != nil {
		h.logger.Error("internal server error", zap.Error(err))
		httpx.WriteError(w, http.StatusInternalServerError, httpx.ErrorResponse[any]{
			Code:    httpx.ErrInternal,
			Message: "internal server error",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}
