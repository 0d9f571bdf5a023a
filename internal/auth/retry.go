package auth

import "time"

// ExchangeResult はHTTPステータスコードに基づく外部ID交換結果の分類。
type ExchangeResult int

const (
	// ExchangeResultOK は交換成功（200）。
	ExchangeResultOK ExchangeResult = iota
	// ExchangeResultRetry はリトライ対象のステータス（429/5xx）。
	ExchangeResultRetry
	// ExchangeResultFail はリトライしない失敗（その他の非200。無効なセッションID等）。
	ExchangeResultFail
)

const (
	// initialExchangeBackoff はリトライの初回遅延。
	initialExchangeBackoff = 200 * time.Millisecond
	// maxExchangeBackoff はリトライの最大遅延。
	// ログインパスはリクエストをブロックするため、上限は短く保つ。
	maxExchangeBackoff = 2 * time.Second
)

// ClassifyExchangeStatus はHTTPステータスコードを交換結果に分類する。
// 429と5xxは一時的な失敗としてリトライし、その他の非200は
// セッションID自体が無効とみなして即座に失敗させる。
func ClassifyExchangeStatus(statusCode int) ExchangeResult {
	switch {
	case statusCode == 200:
		return ExchangeResultOK
	case statusCode == 429:
		return ExchangeResultRetry
	case statusCode >= 500:
		return ExchangeResultRetry
	default:
		return ExchangeResultFail
	}
}

// ExchangeBackoff はリトライ回数に基づいて指数バックオフ遅延を計算する。
// 初回200ms、2倍ずつ増加、最大2秒。
func ExchangeBackoff(retries int) time.Duration {
	delay := initialExchangeBackoff
	for i := 0; i < retries; i++ {
		delay *= 2
		if delay > maxExchangeBackoff {
			return maxExchangeBackoff
		}
	}
	return delay
}
