// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// 認証・イベント操作のドメインカウンタとHTTPレイヤの計測を持つ。
type Collector struct {
	signups         prometheus.Counter
	logins          prometheus.Counter
	loginFailures   *prometheus.CounterVec
	eventsCreated   prometheus.Counter
	eventsCompleted prometheus.Counter
	eventsDeleted   prometheus.Counter
	sessionsPurged  prometheus.Counter
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventman_signups_total",
			Help: "サインアップ成功の合計数",
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventman_logins_total",
			Help: "サインイン成功の合計数",
		}),
		loginFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventman_login_failures_total",
			Help: "サインイン失敗の理由別合計数",
		}, []string{"reason"}),
		eventsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventman_events_created_total",
			Help: "作成されたイベントの合計数",
		}),
		eventsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventman_events_completed_total",
			Help: "完了にされたイベントの合計数",
		}),
		eventsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventman_events_deleted_total",
			Help: "削除されたイベントの合計数",
		}),
		sessionsPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eventman_sessions_purged_total",
			Help: "クリーンアップで削除された期限切れセッションの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eventman_http_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.signups,
		c.logins,
		c.loginFailures,
		c.eventsCreated,
		c.eventsCompleted,
		c.eventsDeleted,
		c.sessionsPurged,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordSignup はサインアップ成功を記録する。
func (c *Collector) RecordSignup() {
	c.signups.Inc()
}

// RecordLogin はサインイン成功を記録する。
func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

// RecordLoginFailure はサインイン失敗を理由付きで記録する。
func (c *Collector) RecordLoginFailure(reason string) {
	c.loginFailures.WithLabelValues(reason).Inc()
}

// RecordEventCreated はイベント作成を記録する。
func (c *Collector) RecordEventCreated() {
	c.eventsCreated.Inc()
}

// RecordEventCompleted はイベント完了を記録する。
func (c *Collector) RecordEventCompleted() {
	c.eventsCompleted.Inc()
}

// RecordEventDeleted はイベント削除を記録する。
func (c *Collector) RecordEventDeleted() {
	c.eventsDeleted.Inc()
}

// RecordSessionsPurged は期限切れセッションの削除件数を記録する。
func (c *Collector) RecordSessionsPurged(count int64) {
	c.sessionsPurged.Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
