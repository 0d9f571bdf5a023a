// Package auth は外部ID交換によるセッション認証を提供する。
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxExchangeResponseSize は交換レスポンスボディの読み取り上限。
const maxExchangeResponseSize = 1 << 20 // 1MiB

// IdentityPayload は外部ID交換エンドポイントが返すユーザー情報。
type IdentityPayload struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

// ExchangeMetrics は交換結果のメトリクス記録インターフェース。
type ExchangeMetrics interface {
	RecordExchangeSuccess()
	RecordExchangeFailure(reason string)
	RecordExchangeRetry()
}

// ExchangeConfig は外部ID交換クライアントの設定。
type ExchangeConfig struct {
	// URL は交換エンドポイント。
	URL string
	// Timeout は1試行あたりのタイムアウト。
	Timeout time.Duration
	// MaxAttempts は最大試行回数（初回を含む）。
	MaxAttempts int
	// HTTPClient は送信に使うクライアント。本番ではSSRFガード付き
	// クライアントを渡す。省略時はhttp.DefaultClient。
	HTTPClient *http.Client
	// Metrics は交換結果の記録先。省略可能。
	Metrics ExchangeMetrics
}

// ExchangeClient は外部ID交換エンドポイントのHTTPクライアント。
// 一時的な失敗（429/5xx/ネットワークエラー）に対して短い指数バックオフで
// 有限回リトライする。ログインパスを無期限にブロックしないよう、
// 各試行には必ずタイムアウトが設定される。
type ExchangeClient struct {
	config ExchangeConfig
	client *http.Client
}

// NewExchangeClient はExchangeClientを生成する。
func NewExchangeClient(config ExchangeConfig) *ExchangeClient {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	client := config.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &ExchangeClient{config: config, client: client}
}

// Exchange は外部セッションIDをユーザー情報に交換する。
// X-Session-IDヘッダーで識別子を渡し、成功時はemail/name/picture/
// session_tokenを含むペイロードを返す。
func (c *ExchangeClient) Exchange(ctx context.Context, sessionID string) (*IdentityPayload, error) {
	var lastErr error

	for attempt := 0; attempt < c.config.MaxAttempts; attempt++ {
		if attempt > 0 {
			c.recordRetry()
			select {
			case <-ctx.Done():
				c.recordFailure("canceled")
				return nil, ctx.Err()
			case <-time.After(ExchangeBackoff(attempt - 1)):
			}
		}

		payload, result, err := c.attempt(ctx, sessionID)
		switch result {
		case ExchangeResultOK:
			c.recordSuccess()
			return payload, nil
		case ExchangeResultRetry:
			lastErr = err
		default:
			c.recordFailure("rejected")
			return nil, err
		}
	}

	c.recordFailure("exhausted")
	return nil, fmt.Errorf("identity exchange failed after %d attempts: %w", c.config.MaxAttempts, lastErr)
}

// attempt は交換エンドポイントへの1回の試行を実行する。
func (c *ExchangeClient) attempt(ctx context.Context, sessionID string) (*IdentityPayload, ExchangeResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.config.URL, nil)
	if err != nil {
		return nil, ExchangeResultFail, fmt.Errorf("failed to create exchange request: %w", err)
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := c.client.Do(req)
	if err != nil {
		// ネットワークエラーとタイムアウトはリトライ対象
		return nil, ExchangeResultRetry, fmt.Errorf("exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxExchangeResponseSize))
	if err != nil {
		return nil, ExchangeResultRetry, fmt.Errorf("failed to read exchange response: %w", err)
	}

	if result := ClassifyExchangeStatus(resp.StatusCode); result != ExchangeResultOK {
		return nil, result, fmt.Errorf("exchange returned status %d", resp.StatusCode)
	}

	var payload IdentityPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ExchangeResultFail, fmt.Errorf("failed to parse exchange response: %w", err)
	}
	if payload.Email == "" || payload.SessionToken == "" {
		return nil, ExchangeResultFail, fmt.Errorf("exchange response missing email or session_token")
	}

	return &payload, ExchangeResultOK, nil
}

func (c *ExchangeClient) recordSuccess() {
	if c.config.Metrics != nil {
		c.config.Metrics.RecordExchangeSuccess()
	}
}

func (c *ExchangeClient) recordFailure(reason string) {
	if c.config.Metrics != nil {
		c.config.Metrics.RecordExchangeFailure(reason)
	}
}

func (c *ExchangeClient) recordRetry() {
	if c.config.Metrics != nil {
		c.config.Metrics.RecordExchangeRetry()
	}
}
