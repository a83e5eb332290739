package monitor

import (
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics records per-operation duration summaries and error counters in the
// default VictoriaMetrics set.
type Metrics struct{}

func (Metrics) Observe(op string, took time.Duration, err error) {
	metrics.GetOrCreateSummary(fmt.Sprintf(`kvstate_op_duration_seconds{op=%q}`, op)).
		Update(took.Seconds())
	metrics.GetOrCreateCounter(fmt.Sprintf(`kvstate_op_total{op=%q}`, op)).Inc()
	if err != nil {
		metrics.GetOrCreateCounter(fmt.Sprintf(`kvstate_op_errors_total{op=%q}`, op)).Inc()
	}
}

// WritePrometheus dumps all recorded metrics in Prometheus text format, for
// wiring into an existing /metrics handler.
func WritePrometheus(w io.Writer) {
	metrics.WritePrometheus(w, false)
}
