package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/audit"
)

func TestAuditCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewAuditCounter(reg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Record(ctx, audit.Entry{Operation: audit.OpDeposit, Outcome: audit.OutcomeOK}))
	require.NoError(t, c.Record(ctx, audit.Entry{Operation: audit.OpDeposit, Outcome: audit.OutcomeOK}))
	require.NoError(t, c.Record(ctx, audit.Entry{Operation: audit.OpWithdraw, Outcome: audit.OutcomeFailed}))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.operations.WithLabelValues(audit.OpDeposit, audit.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operations.WithLabelValues(audit.OpWithdraw, audit.OutcomeFailed)))

	// 重複註冊會失敗
	_, err = NewAuditCounter(reg)
	assert.Error(t, err)
}
