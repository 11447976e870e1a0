package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP 指标
var (
	// HTTPRequestsTotal HTTP 请求总数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eapproval_http_requests_total",
			Help: "HTTP 请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP 请求耗时（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eapproval_http_request_duration_seconds",
			Help:    "HTTP 请求耗时分布",
			Buckets: []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1, 3, 5},
		},
		[]string{"method", "path"},
	)
)

// 决裁与通知指标
var (
	// DocumentsPendingGauge 当前未终结的决裁文书数量
	DocumentsPendingGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eapproval_documents_pending",
			Help: "当前待决裁/决裁中的文书数量",
		},
		[]string{"doc_type"},
	)

	// DecisionsTotal 决裁处理次数
	// decision_type: normal(正常顺序决裁), forced(管理员强制), admin(删除/复原)
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eapproval_decisions_total",
			Help: "决裁处理次数",
		},
		[]string{"doc_type", "action", "decision_type"},
	)

	// NotificationsTotal 通知投递次数
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eapproval_notifications_total",
			Help: "决裁通知投递次数",
		},
		[]string{"channel", "status"},
	)

	// HistoryWriteFailures 决裁历史写入失败次数
	// 历史写入为尽力而为，失败只计数和记日志，不影响主流程
	HistoryWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eapproval_history_write_failures_total",
			Help: "决裁历史写入失败次数",
		},
	)
)
