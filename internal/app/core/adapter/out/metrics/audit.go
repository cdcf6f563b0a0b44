package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/audit"
)

// AuditCounter 依操作與結果累計次數
type AuditCounter struct {
	operations *prometheus.CounterVec
}

// NewAuditCounter 建立計數器並註冊到 reg
func NewAuditCounter(reg prometheus.Registerer) (*AuditCounter, error) {
	c := &AuditCounter{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_operations_total",
				Help: "Audited ledger operations by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
	}
	if err := reg.Register(c.operations); err != nil {
		return nil, err
	}
	return c, nil
}

// Record 實作 audit.Sink
func (c *AuditCounter) Record(_ context.Context, entry audit.Entry) error {
	c.operations.WithLabelValues(entry.Operation, entry.Outcome).Inc()
	return nil
}

var _ audit.Sink = (*AuditCounter)(nil)
