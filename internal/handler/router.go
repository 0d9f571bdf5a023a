package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/lockin90/internal/metrics"
	"github.com/hitoshi/lockin90/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger       *slog.Logger
	UserResolver middleware.UserResolver
	CORSOrigins  []string
	RateLimiter  *middleware.RateLimiter
	CSRFConfig   middleware.CSRFConfig

	// メトリクス（省略時は/metricsを公開しない）
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// プロジェクト
	ProjectService ProjectServiceInterface

	// 集計・公開フィード
	StatsService StatsServiceInterface

	// ユーザー
	UserService UserServiceInterface
}

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Health はAPIのヘルスチェックを処理する。
// GET /api/
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Message: "90-Day Lock-In Challenge API",
		Status:  "healthy",
	})
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → Metrics → CORS → SecurityHeaders
//
// 認証が必要なルートはさらに Session → CSRF → RateLimit(General) を通る。
// ログインエンドポイントは認証前のため、接続元IP単位のレート制限のみ適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(metrics.NewHTTPMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSOrigins))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	var sessionMetrics SessionMetrics
	if deps.Metrics != nil {
		sessionMetrics = deps.Metrics
	}
	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, sessionMetrics)
	projectHandler := NewProjectHandler(deps.ProjectService)
	statsHandler := NewStatsHandler(deps.StatsService)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig)

	// Prometheusスクレイプ用（/apiの外）
	if deps.Gatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.Gatherer).ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		// --- 認証不要のルート ---
		r.Get("/", Health)
		r.Get("/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

		// ログイン（外部ID交換）。IP単位のレート制限を適用
		r.With(deps.RateLimiter.AuthExchangeMiddleware()).
			Post("/auth/session", authHandler.CreateSession)

		// ログアウトは無効なセッションでも成功するため、認証の外に置く
		r.Post("/auth/logout", authHandler.Logout)

		// 公開フィード
		r.Get("/projects/explore", statsHandler.Explore)

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: Session → CSRF → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.UserResolver))
			r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Get("/auth/me", authHandler.Me)

			// /projects/exploreは上で公開ルートとして定義済みのため、
			// サブルーターをマウントせずメソッド単位で定義する
			r.Post("/projects", projectHandler.Create)
			r.Get("/projects", projectHandler.List)
			r.Put("/projects/{id}", projectHandler.Update)
			r.Delete("/projects/{id}", projectHandler.Delete)

			r.Get("/dashboard", statsHandler.Dashboard)

			r.Delete("/users/me", userHandler.Withdraw)
		})
	})

	return r
}
