package file

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/audit"
	"github.com/JoeShih716/go-branch-ledger/pkg/wal"
)

func TestAuditLogWritesOneLinePerCall(t *testing.T) {
	w, err := wal.Open(filepath.Join(t.TempDir(), "audit.log"), wal.WithoutSync())
	require.NoError(t, err)
	defer w.Close()

	rec := audit.NewRecorder(NewAuditLog(w))
	ctx := context.Background()
	_ = rec.Do(ctx, audit.OpDeposit, audit.Args{"amount": "10"}, func() error { return nil })
	_ = rec.Do(ctx, audit.OpWithdraw, audit.Args{"amount": "99"}, func() error { return assert.AnError })

	var entries []audit.Entry
	require.NoError(t, w.ReadAll(func(raw json.RawMessage) error {
		var e audit.Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	}))
	require.Len(t, entries, 2)
	assert.Equal(t, audit.OpDeposit, entries[0].Operation)
	assert.Equal(t, audit.OutcomeOK, entries[0].Outcome)
	assert.Equal(t, "10", entries[0].Args["amount"])
	assert.Equal(t, audit.OutcomeFailed, entries[1].Outcome)
	assert.Equal(t, assert.AnError.Error(), entries[1].Error)
}
