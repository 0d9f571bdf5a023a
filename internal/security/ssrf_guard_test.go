package security

import (
	"testing"
	"time"
)

// ValidateURLが公開URLを許可することを検証
func TestValidateURL_AllowsPublicURLs(t *testing.T) {
	guard := NewSSRFGuard()

	valid := []string{
		"https://example.com",
		"https://github.com/user/repo",
		"http://my-app.vercel.app/path?q=1",
		"https://93.184.216.34/",
	}
	for _, u := range valid {
		if err := guard.ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}
}

// ValidateURLが危険なURLを拒否することを検証
func TestValidateURL_BlocksDangerousURLs(t *testing.T) {
	guard := NewSSRFGuard()

	invalid := []string{
		"",
		"ftp://example.com/file",
		"javascript:alert(1)",
		"https://",
		"http://localhost:8080/admin",
		"http://127.0.0.1/",
		"http://10.0.0.5/internal",
		"http://172.16.1.1/",
		"http://192.168.1.1/router",
		"http://169.254.169.254/latest/meta-data/",
		"http://[::1]/",
	}
	for _, u := range invalid {
		if err := guard.ValidateURL(u); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", u)
		}
	}
}

// NewSafeClientがタイムアウト付きクライアントを返すことを検証
func TestNewSafeClient_SetsTimeout(t *testing.T) {
	guard := NewSSRFGuard()
	client := guard.NewSafeClient(5 * time.Second)
	if client == nil {
		t.Fatal("NewSafeClient returned nil")
	}
}

// ssrfGuardがインターフェースを満たすことを検証
func TestSSRFGuard_ImplementsInterface(t *testing.T) {
	var _ SSRFGuardService = NewSSRFGuard()
}
