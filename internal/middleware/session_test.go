package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/lockin90/internal/model"
)

// --- モック ---

type mockUserResolver struct {
	resolveFunc func(ctx context.Context, token string) (*model.User, error)
}

func (m *mockUserResolver) Resolve(ctx context.Context, token string) (*model.User, error) {
	return m.resolveFunc(ctx, token)
}

func okHandler(t *testing.T, wantUserID string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := UserFromContext(r.Context())
		if err != nil {
			t.Errorf("UserFromContext() error = %v", err)
		} else if user.ID != wantUserID {
			t.Errorf("user ID = %q, want %q", user.ID, wantUserID)
		}
		w.WriteHeader(http.StatusOK)
	})
}

// Cookieのトークンで認証されることを検証
func TestSessionMiddleware_CookieToken(t *testing.T) {
	resolver := &mockUserResolver{
		resolveFunc: func(ctx context.Context, token string) (*model.User, error) {
			if token != "tok-1" {
				t.Errorf("token = %q, want tok-1", token)
			}
			return &model.User{ID: "user-1"}, nil
		},
	}
	handler := NewSessionMiddleware(resolver)(okHandler(t, "user-1"))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// Bearerヘッダーのトークンで認証されることを検証
func TestSessionMiddleware_BearerToken(t *testing.T) {
	resolver := &mockUserResolver{
		resolveFunc: func(ctx context.Context, token string) (*model.User, error) {
			if token != "tok-2" {
				t.Errorf("token = %q, want tok-2", token)
			}
			return &model.User{ID: "user-2"}, nil
		},
	}
	handler := NewSessionMiddleware(resolver)(okHandler(t, "user-2"))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer tok-2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// Cookieがヘッダーより優先されることを検証
func TestTokenFromRequest_CookieWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")

	if got := TokenFromRequest(req); got != "cookie-token" {
		t.Errorf("TokenFromRequest() = %q, want cookie-token", got)
	}
}

// トークン欠落・無効トークン・解決エラーで401になることを検証
func TestSessionMiddleware_Unauthenticated(t *testing.T) {
	cases := []struct {
		name     string
		setToken bool
		resolve  func(ctx context.Context, token string) (*model.User, error)
	}{
		{
			name:     "トークンなし",
			setToken: false,
			resolve: func(ctx context.Context, token string) (*model.User, error) {
				t.Error("resolver should not be called without a token")
				return nil, nil
			},
		},
		{
			name:     "無効トークン",
			setToken: true,
			resolve: func(ctx context.Context, token string) (*model.User, error) {
				return nil, nil
			},
		},
		{
			name:     "解決エラー",
			setToken: true,
			resolve: func(ctx context.Context, token string) (*model.User, error) {
				return nil, errors.New("db down")
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resolver := &mockUserResolver{resolveFunc: c.resolve}
			handler := NewSessionMiddleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("next handler should not be called")
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if c.setToken {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-x"})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}

			var body ErrorResponseBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("response should be JSON: %v", err)
			}
			if body.Code != model.ErrCodeUnauthenticated {
				t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUnauthenticated)
			}
		})
	}
}

// コンテキストヘルパーの挙動を検証
func TestUserFromContext(t *testing.T) {
	ctx := context.Background()
	if _, err := UserFromContext(ctx); err == nil {
		t.Error("UserFromContext() should fail for empty context")
	}

	ctx = ContextWithUser(ctx, &model.User{ID: "user-1"})
	user, err := UserFromContext(ctx)
	if err != nil || user.ID != "user-1" {
		t.Errorf("UserFromContext() = (%v, %v)", user, err)
	}

	userID, err := UserIDFromContext(ctx)
	if err != nil || userID != "user-1" {
		t.Errorf("UserIDFromContext() = (%q, %v)", userID, err)
	}
}
