package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryDayQueries(t *testing.T) {
	clock := newTestClock()
	h := NewHistory(clock.Now)

	h.Append(h.newEntry(KindDeposit, dec(10)))
	h.Append(h.newEntry(KindWithdrawal, dec(5)))
	clock.Advance(24 * time.Hour)
	h.Append(h.newEntry(KindDeposit, dec(7)))

	yesterday := clock.Now().Add(-24 * time.Hour)
	assert.Len(t, h.EntriesOnDate(yesterday), 2)
	assert.Len(t, h.EntriesOnDate(clock.Now()), 1)
	assert.Equal(t, 1, h.CountOfKind(KindDeposit, yesterday))
	assert.Equal(t, 1, h.CountOfKind(KindWithdrawal, yesterday))
	assert.Equal(t, 0, h.CountOfKind(KindWithdrawal, clock.Now()))
}

func TestHistoryEntriesIsCopy(t *testing.T) {
	h := NewHistory(nil)
	h.Append(h.newEntry(KindDeposit, dec(10)))

	snap := h.Entries()
	snap[0].Amount = dec(999)
	assert.True(t, h.Entries()[0].Amount.Equal(dec(10)))
}

func TestHistoryReportIsRestartable(t *testing.T) {
	h := NewHistory(nil)
	for i := int64(1); i <= 3; i++ {
		h.Append(h.newEntry(KindDeposit, dec(i)))
	}

	var first, second []int64
	for e := range h.Report() {
		first = append(first, e.Amount.IntPart())
	}
	for e := range h.Report() {
		second = append(second, e.Amount.IntPart())
		if len(second) == 2 {
			break
		}
	}
	assert.Equal(t, []int64{1, 2, 3}, first)
	assert.Equal(t, []int64{1, 2}, second)
}

func TestEntryCarriesKindAmountTimestamp(t *testing.T) {
	clock := newTestClock()
	r := NewRegistry(WithClock(clock.Now))
	acc := r.Open(r.NewClient("Ana", "", "111", ""))

	require.NoError(t, NewDeposit(dec(42)).Apply(acc))
	entries := acc.History().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, KindDeposit, entries[0].Kind)
	assert.True(t, entries[0].Amount.Equal(dec(42)))
	assert.Equal(t, clock.Now(), entries[0].Timestamp)
	assert.NotEqual(t, [16]byte{}, [16]byte(entries[0].ID))
}

func TestTransactionKindString(t *testing.T) {
	assert.Equal(t, "Deposit", KindDeposit.String())
	assert.Equal(t, "Withdrawal", KindWithdrawal.String())
	assert.Equal(t, "TransactionKind(9)", TransactionKind(9).String())
}
