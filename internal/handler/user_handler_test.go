package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/lockin90/internal/middleware"
	"github.com/hitoshi/lockin90/internal/model"
)

// --- モック ---

type mockUserService struct {
	withdrawFunc func(ctx context.Context, userID string) error
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	return m.withdrawFunc(ctx, userID)
}

// 退会で204が返り、セッションCookieがクリアされることを検証
func TestUserHandler_Withdraw(t *testing.T) {
	service := &mockUserService{
		withdrawFunc: func(ctx context.Context, userID string) error {
			if userID != "user-1" {
				t.Errorf("userID = %q", userID)
			}
			return nil
		},
	}
	h := NewUserHandler(service, AuthHandlerConfig{CookieSecure: true})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	req = req.WithContext(middleware.ContextWithUser(req.Context(), &model.User{ID: "user-1"}))
	rec := httptest.NewRecorder()
	h.Withdraw(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}

	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName && cookie.MaxAge == -1 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie should be cleared after withdrawal")
	}
}

// 未認証で401になることを検証
func TestUserHandler_Withdraw_Unauthenticated(t *testing.T) {
	h := NewUserHandler(&mockUserService{}, AuthHandlerConfig{})

	rec := httptest.NewRecorder()
	h.Withdraw(rec, httptest.NewRequest(http.MethodDelete, "/api/users/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// 存在しないユーザーの退会が404になることを検証
func TestUserHandler_Withdraw_NotFound(t *testing.T) {
	service := &mockUserService{
		withdrawFunc: func(ctx context.Context, userID string) error {
			return model.NewUserNotFoundError()
		},
	}
	h := NewUserHandler(service, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/me", nil)
	req = req.WithContext(middleware.ContextWithUser(req.Context(), &model.User{ID: "gone"}))
	rec := httptest.NewRecorder()
	h.Withdraw(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
