package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumereview",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "存储操作耗时分布（秒）。",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	operationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumereview",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "存储操作总数。",
		},
		[]string{"operation", "status"},
	)
)

// Register 将存储层指标注册到默认 Registry，可安全地重复调用。
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(operationDuration, operationTotal)
	})
}

// ObserveStoreOperation 记录一次存储操作的结果与耗时。
func ObserveStoreOperation(operation string, elapsed time.Duration, ok bool) {
	Register()

	status := "ok"
	if !ok {
		status = "error"
	}
	labels := prometheus.Labels{
		"operation": operation,
		"status":    status,
	}

	operationDuration.With(labels).Observe(elapsed.Seconds())
	operationTotal.With(labels).Inc()
}
