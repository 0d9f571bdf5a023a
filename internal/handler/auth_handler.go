package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/lockin90/internal/middleware"
	"github.com/hitoshi/lockin90/internal/model"
)

// sessionIDHeaderName は外部セッションIDを受け取るヘッダー名。
const sessionIDHeaderName = "X-Session-ID"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// CreateSession は外部セッションIDを検証し、ログインセッションを発行する。
	CreateSession(ctx context.Context, externalSessionID string) (*model.User, *model.Session, error)
	// Logout はセッションを破棄する。
	Logout(ctx context.Context, token string) error
}

// SessionMetrics はセッション発行のメトリクス記録インターフェース。
type SessionMetrics interface {
	RecordSessionCreated()
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はセッション認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics SessionMetrics
}

// NewAuthHandler はAuthHandlerを生成する。metricsは省略可能。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, metrics SessionMetrics) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: metrics,
	}
}

// userResponse はユーザー情報のAPIレスポンス。セッショントークンは含めない。
type userResponse struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	Picture            string     `json:"picture"`
	ChallengeStartDate *time.Time `json:"challenge_start_date"`
}

func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:                 user.ID,
		Email:              user.Email,
		Name:               user.Name,
		Picture:            user.Picture,
		ChallengeStartDate: user.ChallengeStartDate,
	}
}

// CreateSession は外部セッションIDからログインセッションを発行する。
// POST /api/auth/session
// 外部セッションIDはX-Session-IDヘッダーで受け取る。
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	externalSessionID := r.Header.Get(sessionIDHeaderName)

	user, session, err := h.service.CreateSession(r.Context(), externalSessionID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSessionCreated()
	}

	// セッショントークンをHTTP Only Cookieに設定。
	// フロントエンドは別オリジンのため、SameSite=Noneが必要。
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteNoneMode,
	})

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Me は現在のログインユーザー情報を返す。
// GET /api/auth/me （セッションミドルウェアの内側）
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// Logout はセッションを破棄する。
// POST /api/auth/logout
// トークンの有無や有効性にかかわらず200を返し、Cookieをクリアする。
// ユーザーレコードは削除されず、再ログインでチャレンジ進捗は引き継がれる。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if err := h.service.Logout(r.Context(), token); err != nil {
		slog.Error("failed to logout", slog.String("error", err.Error()))
		// ログアウト失敗してもCookieはクリアする
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteNoneMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}
