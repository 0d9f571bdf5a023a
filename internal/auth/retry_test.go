package auth

import (
	"testing"
	"time"
)

// ステータスコードの分類を検証
func TestClassifyExchangeStatus(t *testing.T) {
	cases := []struct {
		status int
		want   ExchangeResult
	}{
		{200, ExchangeResultOK},
		{429, ExchangeResultRetry},
		{500, ExchangeResultRetry},
		{502, ExchangeResultRetry},
		{503, ExchangeResultRetry},
		{400, ExchangeResultFail},
		{401, ExchangeResultFail},
		{403, ExchangeResultFail},
		{404, ExchangeResultFail},
	}
	for _, c := range cases {
		if got := ClassifyExchangeStatus(c.status); got != c.want {
			t.Errorf("ClassifyExchangeStatus(%d) = %v, want %v", c.status, got, c.want)
		}
	}
}

// 指数バックオフの計算を検証
func TestExchangeBackoff(t *testing.T) {
	cases := []struct {
		retries int
		want    time.Duration
	}{
		{0, 200 * time.Millisecond},
		{1, 400 * time.Millisecond},
		{2, 800 * time.Millisecond},
		{3, 1600 * time.Millisecond},
		{4, 2 * time.Second},
		{10, 2 * time.Second},
	}
	for _, c := range cases {
		if got := ExchangeBackoff(c.retries); got != c.want {
			t.Errorf("ExchangeBackoff(%d) = %v, want %v", c.retries, got, c.want)
		}
	}
}
