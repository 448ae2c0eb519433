package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
	"moul.io/chizap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/audit"
	"github.com/AhilyaKokare/visitor-pass-service/internal/auth"
	"github.com/AhilyaKokare/visitor-pass-service/internal/config"
	"github.com/AhilyaKokare/visitor-pass-service/internal/dashboard"
	"github.com/AhilyaKokare/visitor-pass-service/internal/middleware"
	"github.com/AhilyaKokare/visitor-pass-service/internal/pass"
	"github.com/AhilyaKokare/visitor-pass-service/internal/role"
	"github.com/AhilyaKokare/visitor-pass-service/internal/tenant"
	"github.com/AhilyaKokare/visitor-pass-service/internal/token"
	"github.com/AhilyaKokare/visitor-pass-service/internal/user"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      auth.Handler
	Users     user.Handler
	Tenants   tenant.Handler
	Passes    pass.Handler
	Dashboard dashboard.Handler
	Audit     audit.Handler
}

func NewRouter(cfg *config.Config, tokens token.Service, h Handlers, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMeta)
	r.Use(chizap.New(logger, &chizap.Opts{
		WithReferer:   false,
		WithUserAgent: true,
	}))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		// Credential endpoints are unauthenticated and rate limited.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(20, time.Minute))
			r.Mount("/auth", h.Auth.Routes())
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens, logger))

			r.Mount("/profile", h.Users.ProfileRoutes())
			r.Mount("/dashboard", h.Dashboard.Routes())

			r.Route("/super-admin", func(r chi.Router) {
				r.Use(middleware.RequireRoles(role.SuperAdmin))
				r.Get("/dashboard", h.Dashboard.GlobalOverview)
				r.Mount("/", h.Tenants.Routes())
			})

			r.Route("/tenants/{tenantID}", func(r chi.Router) {
				r.Use(middleware.TenantGuard)

				r.With(middleware.RequireRoles(role.Employee, role.TenantAdmin)).
					Mount("/passes", h.Passes.PassRoutes())
				r.With(middleware.RequireRoles(role.Approver, role.TenantAdmin)).
					Mount("/approvals", h.Passes.ApprovalRoutes())
				r.With(middleware.RequireRoles(role.Security, role.TenantAdmin)).
					Mount("/security", h.Passes.SecurityRoutes())

				r.Route("/admin", func(r chi.Router) {
					r.Use(middleware.RequireRoles(role.TenantAdmin))
					r.Get("/dashboard", h.Dashboard.TenantOverview)
					r.Get("/audit", h.Audit.List)
					r.Mount("/", h.Users.AdminRoutes())
				})
			})
		})
	})

	return r
}
