package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	accountapp "github.com/linkup-api/internal/application/account"
	"github.com/linkup-api/internal/application/auth"
	"github.com/linkup-api/internal/application/recovery"
	"github.com/linkup-api/internal/config"
	jwtinfra "github.com/linkup-api/internal/infrastructure/jwt"
	"github.com/linkup-api/internal/transport/http/handler"
	appmiddleware "github.com/linkup-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo AccountRepository
	Gateway     NotificationGateway
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		Gateway:     deps.Gateway,
		Signer:      deps.JWTProvider,
	})
	recoverySvc := recovery.NewService(deps.AccountRepo, deps.Gateway)
	accountSvc := accountapp.NewService(deps.AccountRepo)

	healthH := handler.NewHealthHandler()
	accountH := handler.NewAccountHandler(authSvc, accountSvc)
	sessionH := handler.NewSessionHandler(authSvc)
	verificationH := handler.NewVerificationHandler(authSvc)
	recoveryH := handler.NewPasswordRecoveryHandler(recoverySvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/accounts", accountH.Register)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/verification/{action}", verificationH.Action)
		r.With(sensitiveRL.Limit).Post("/password-recovery/{action}", recoveryH.Action)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Get("/accounts/me", accountH.GetCurrent)
			r.Get("/accounts/{id}", accountH.Get)
		})
	})

	return r
}
