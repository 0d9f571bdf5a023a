// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// auth.ExchangeMetricsインターフェースを満たし、外部ID交換の
// 成否とリトライを記録する。
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	exchangeSuccess prometheus.Counter
	exchangeFail    *prometheus.CounterVec
	exchangeRetry   prometheus.Counter
	sessionsCreated prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lockin_http_requests_total",
			Help: "HTTPリクエストの合計数（メソッド・パス・ステータス別）",
		}, []string{"method", "path", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lockin_http_request_duration_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		exchangeSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lockin_auth_exchange_success_total",
			Help: "外部ID交換成功の合計数",
		}),
		exchangeFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lockin_auth_exchange_fail_total",
			Help: "外部ID交換失敗の合計数（理由別）",
		}, []string{"reason"}),
		exchangeRetry: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lockin_auth_exchange_retry_total",
			Help: "外部ID交換リトライの合計数",
		}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lockin_sessions_created_total",
			Help: "発行されたログインセッションの合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.exchangeSuccess,
		c.exchangeFail,
		c.exchangeRetry,
		c.sessionsCreated,
	)

	return c
}

// RecordExchangeSuccess は外部ID交換の成功を記録する。
func (c *Collector) RecordExchangeSuccess() {
	c.exchangeSuccess.Inc()
}

// RecordExchangeFailure は外部ID交換の失敗を記録する。
func (c *Collector) RecordExchangeFailure(reason string) {
	c.exchangeFail.WithLabelValues(reason).Inc()
}

// RecordExchangeRetry は外部ID交換のリトライを記録する。
func (c *Collector) RecordExchangeRetry() {
	c.exchangeRetry.Inc()
}

// RecordSessionCreated はログインセッションの発行を記録する。
func (c *Collector) RecordSessionCreated() {
	c.sessionsCreated.Inc()
}

// RecordHTTPRequest はHTTPリクエストの完了を記録する。
func (c *Collector) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, path).Observe(duration.Seconds())
}

// statusRecorder はhttp.ResponseWriterをラップし、ステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// NewHTTPMiddleware はHTTPリクエストのメトリクスを記録するミドルウェアを返す。
// カーディナリティを抑えるため、パスラベルには実URLではなく
// chiのルートパターン（例: /api/projects/{id}）を使用する。
func NewHTTPMiddleware(c *Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}
			c.RecordHTTPRequest(r.Method, path, rec.statusCode, time.Since(start))
		})
	}
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
