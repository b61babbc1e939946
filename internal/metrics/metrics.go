package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fitdex"

// Metrics - счетчики игрового сервиса
type Metrics struct {
	MatchesStarted  *prometheus.CounterVec
	MatchesFinished *prometheus.CounterVec
	ScoreDelta      *prometheus.HistogramVec
	ActiveSessions  prometheus.Gauge
	SessionsReaped  prometheus.Counter
	PracticeGames   *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	RateLimited     prometheus.Counter
	WSConnections   prometheus.Gauge
}

// New регистрирует метрики в reg, nil - глобальный регистр
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		MatchesStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_started_total",
			Help:      "Количество начатых матчей",
		}, []string{"kind"}),
		MatchesFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_finished_total",
			Help:      "Количество завершенных матчей по исходу",
		}, []string{"kind", "outcome"}),
		ScoreDelta: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "score_delta",
			Help:      "Изменение рейтинга по итогам матча",
			Buckets:   []float64{-20, -15, -10, 0, 25},
		}, []string{"kind"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Живые игровые сессии",
		}),
		SessionsReaped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_reaped_total",
			Help:      "Сессии, убранные по простою",
		}),
		PracticeGames: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "practice_games_total",
			Help:      "Тренировочные партии по результату",
		}, []string{"status"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP запросы",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Время обработки HTTP запросов",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Запросы, отклоненные лимитером",
		}),
		WSConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "Открытые WebSocket соединения",
		}),
	}
}
