package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/domain"
)

// memorySink 把紀錄留在記憶體供測試檢查
type memorySink struct {
	entries []Entry
	ctxs    []context.Context
	err     error
}

func (m *memorySink) Record(ctx context.Context, entry Entry) error {
	m.entries = append(m.entries, entry)
	m.ctxs = append(m.ctxs, ctx)
	return m.err
}

func TestDoRecordsOnceAndReturnsOutcome(t *testing.T) {
	sink := &memorySink{}
	at := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	rec := NewRecorder(sink, WithClock(func() time.Time { return at }))

	calls := 0
	err := rec.Do(context.Background(), OpAuthorize, Args{"amount": "10"}, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = rec.Do(context.Background(), OpAuthorize, Args{"amount": "20"}, func() error {
		calls++
		return boom
	})
	assert.Same(t, boom, err)

	assert.Equal(t, 2, calls)
	require.Len(t, sink.entries, 2)
	assert.Equal(t, OutcomeOK, sink.entries[0].Outcome)
	assert.Empty(t, sink.entries[0].Error)
	assert.Equal(t, at, sink.entries[0].Timestamp)
	assert.Equal(t, "10", sink.entries[0].Args["amount"])
	assert.Equal(t, OutcomeFailed, sink.entries[1].Outcome)
	assert.Equal(t, "boom", sink.entries[1].Error)
	assert.NotEqual(t, sink.entries[0].ID, sink.entries[1].ID)
	assert.Less(t, sink.entries[0].ID, sink.entries[1].ID)
}

func TestDoSinkFailureDoesNotReachCaller(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sink := &memorySink{err: errors.New("disk full")}
	rec := NewRecorder(sink, WithLogger(zap.New(core)))

	err := rec.Do(context.Background(), OpDeposit, nil, func() error { return nil })
	require.NoError(t, err)
	assert.Len(t, sink.entries, 1)
	assert.Equal(t, 1, logs.FilterMessage("audit sink failed").Len())
}

func TestDoRecordsPanicAndRepanics(t *testing.T) {
	sink := &memorySink{}
	rec := NewRecorder(sink)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = rec.Do(context.Background(), OpWithdraw, nil, func() error { panic("kaboom") })
	})
	require.Len(t, sink.entries, 1)
	assert.Equal(t, OutcomePanic, sink.entries[0].Outcome)
	assert.Equal(t, "kaboom", sink.entries[0].Error)
}

func TestCallReturnsValue(t *testing.T) {
	sink := &memorySink{}
	rec := NewRecorder(sink)

	n, err := Call(context.Background(), rec, "count", nil, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Len(t, sink.entries, 1)
}

func TestArgsAreCopied(t *testing.T) {
	sink := &memorySink{}
	rec := NewRecorder(sink)
	args := Args{"k": "v"}

	_ = rec.Do(context.Background(), "op", args, func() error { return nil })
	args["k"] = "changed"
	assert.Equal(t, "v", sink.entries[0].Args["k"])
}

func TestNilSinkIsNoop(t *testing.T) {
	rec := NewRecorder(nil)
	assert.NoError(t, rec.Do(context.Background(), "op", nil, func() error { return nil }))
}

func TestWrapAccountAuditsEveryMutation(t *testing.T) {
	sink := &memorySink{}
	rec := NewRecorder(sink)
	r := domain.NewRegistry(domain.WithDecorator(Decorator(rec)))
	client := r.NewClient("Ana", "", "111", "")
	acc := r.Open(client)

	require.NoError(t, client.Authorize(acc, domain.NewDeposit(decimal.NewFromInt(100))))
	require.ErrorIs(t, client.Authorize(acc, domain.NewWithdrawal(decimal.NewFromInt(600))), domain.ErrCeilingExceeded)

	require.Len(t, sink.entries, 2)
	assert.Equal(t, OpDeposit, sink.entries[0].Operation)
	assert.Equal(t, OutcomeOK, sink.entries[0].Outcome)
	assert.Equal(t, acc.Number(), sink.entries[0].Args["account"])
	assert.Equal(t, "100", sink.entries[0].Args["amount"])
	assert.Equal(t, OpWithdraw, sink.entries[1].Operation)
	assert.Equal(t, domain.ErrCeilingExceeded.Error(), sink.entries[1].Error)

	// 包裝後的帳戶仍然共用同一份 History
	assert.Equal(t, 1, acc.History().Len())
	ceiling, ok := domain.CeilingOf(acc)
	assert.True(t, ok)
	assert.True(t, ceiling.Equal(domain.DefaultCeiling))
}

func TestMultiFansOutAndJoinsErrors(t *testing.T) {
	a, b := &memorySink{}, &memorySink{err: errors.New("b down")}
	err := Multi(a, b).Record(context.Background(), Entry{Operation: "op"})
	assert.ErrorContains(t, err, "b down")
	assert.Len(t, a.entries, 1)
	assert.Len(t, b.entries, 1)
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	err := LogSink(zap.New(core)).Record(context.Background(), Entry{ID: "x", Operation: OpDeposit, Outcome: OutcomeOK})
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, OpDeposit, fields["operation"])
	assert.Equal(t, OutcomeOK, fields["outcome"])
}

func TestIDMatchesTimestamp(t *testing.T) {
	sink := &memorySink{}
	at := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := NewRecorder(sink, WithClock(func() time.Time { return at }))

	require.NoError(t, rec.Do(context.Background(), OpDeposit, nil, func() error { return nil }))
	require.Len(t, sink.entries, 1)

	id, err := ulid.Parse(sink.entries[0].ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(ulid.Time(id.Time())))
	assert.Equal(t, at, sink.entries[0].Timestamp)
}

type ctxKey struct{}

func TestWrapAccountUsesBaseContext(t *testing.T) {
	sink := &memorySink{}
	base := context.WithValue(context.Background(), ctxKey{}, "service")
	rec := NewRecorder(sink, WithBaseContext(base))

	account := domain.NewRegistry(domain.WithDecorator(Decorator(rec))).Open(nil, domain.Basic())
	require.NoError(t, account.Deposit(decimal.NewFromInt(10)))
	require.ErrorIs(t, account.Withdraw(decimal.NewFromInt(50)), domain.ErrInsufficientFunds)

	require.Len(t, sink.ctxs, 2)
	for _, ctx := range sink.ctxs {
		assert.Equal(t, "service", ctx.Value(ctxKey{}))
	}

	// 未設定時為 context.Background
	plain := &memorySink{}
	wrapped := WrapAccount(domain.NewRegistry().Open(nil, domain.Basic()), NewRecorder(plain))
	require.NoError(t, wrapped.Deposit(decimal.NewFromInt(1)))
	require.Len(t, plain.ctxs, 1)
	assert.Equal(t, context.Background(), plain.ctxs[0])
}
