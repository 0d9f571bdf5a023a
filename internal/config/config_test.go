package config

import (
	"testing"
	"time"
)

// 必須環境変数がそろっている場合にLoadが成功することを検証
func TestLoad_RequiredVariables(t *testing.T) {
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("DB_NAME", "lockin90_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MongoURL != "mongodb://localhost:27017" {
		t.Errorf("MongoURL = %q", cfg.MongoURL)
	}
	if cfg.MongoDatabase != "lockin90_test" {
		t.Errorf("MongoDatabase = %q", cfg.MongoDatabase)
	}
}

// 必須環境変数の欠落でLoadがエラーを返すことを検証
func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("MONGO_URL", "")
	t.Setenv("DB_NAME", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when MONGO_URL and DB_NAME are unset")
	}
}

// オプション項目のデフォルト値を検証
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("DB_NAME", "lockin90_test")
	t.Setenv("AUTH_EXCHANGE_URL", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("COOKIE_SECURE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AuthExchangeURL != defaultAuthExchangeURL {
		t.Errorf("AuthExchangeURL = %q", cfg.AuthExchangeURL)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Errorf("SessionTTL = %v, want 168h", cfg.SessionTTL)
	}
	if cfg.AuthExchangeTimeout != 10*time.Second {
		t.Errorf("AuthExchangeTimeout = %v, want 10s", cfg.AuthExchangeTimeout)
	}
	if cfg.AuthExchangeMaxAttempts != 3 {
		t.Errorf("AuthExchangeMaxAttempts = %d, want 3", cfg.AuthExchangeMaxAttempts)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure should default to true")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

// CORS_ORIGINSのカンマ区切りパースを検証
func TestLoad_CORSOriginsSplit(t *testing.T) {
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("DB_NAME", "lockin90_test")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://staging.example.com ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"https://app.example.com", "https://staging.example.com"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins = %v, want %v", cfg.CORSAllowedOrigins, want)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Errorf("origin[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], want[i])
		}
	}
}

// 不正な形式のオプション値はデフォルトにフォールバックすることを検証
func TestLoad_InvalidOptionalValuesFallBack(t *testing.T) {
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("DB_NAME", "lockin90_test")
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("RATE_LIMIT_GENERAL", "abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Errorf("SessionTTL = %v, want default 168h", cfg.SessionTTL)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want default 120", cfg.RateLimitGeneral)
	}
}
