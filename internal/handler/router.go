package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/eventman/internal/middleware"
	"github.com/hitoshi/eventman/internal/validation"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.IdentityFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	HTTPMetrics       middleware.HTTPMetricsRecorder
	Logger            *slog.Logger

	// サービス
	AuthService  AuthServiceInterface
	AuthConfig   AuthHandlerConfig
	EventService EventServiceInterface
	Validator    *validation.Validator

	// 運用エンドポイント
	MetricsHandler http.Handler
	DB             Pinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → SecurityHeaders → CORS → CSRF
//
// 認証エンドポイント（sign-up/sign-in）にはIP単位のレート制限を、
// 認証必須グループにはSession → RateLimit(General)を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.Validator, deps.AuthConfig)
	eventHandler := NewEventHandler(deps.EventService, deps.Validator)

	// --- 運用エンドポイント ---
	r.Get("/healthz", NewHealthHandler(deps.DB))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- 認証ルート ---
	r.Route("/auth", func(r chi.Router) {
		// 未認証エンドポイントはIP単位のレート制限を適用
		r.Group(func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.AuthMiddleware())
			}
			r.Post("/sign-up", authHandler.SignUp)
			r.Post("/sign-in", authHandler.SignIn)
		})

		r.Method(http.MethodGet, "/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

		// セッション必須
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
			r.Post("/log-out", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Route("/api/events", func(r chi.Router) {
			r.Get("/", eventHandler.List)
			r.Post("/", eventHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", eventHandler.Get)
				r.Patch("/edit", eventHandler.Update)
				r.Patch("/complete", eventHandler.Complete)
				r.Delete("/", eventHandler.Delete)
			})
		})
	})

	return r
}
