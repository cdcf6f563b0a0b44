package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeDailyDepositLimit(t *testing.T) {
	clock := newTestClock()
	r := NewRegistry(WithClock(clock.Now))
	client := r.NewClient("Ana", "", "111", "")
	acc := r.Open(client)
	client.AddAccount(acc)

	for i := 0; i < DailyTransactionLimit; i++ {
		require.NoError(t, client.Authorize(acc, NewDeposit(dec(100))))
	}
	err := client.Authorize(acc, NewDeposit(dec(100)))
	require.ErrorIs(t, err, ErrDailyLimitExceeded)
	assert.True(t, acc.Balance().Equal(dec(300)))
	assert.Equal(t, 3, acc.History().Len())

	// 提款計數與存款分開
	require.NoError(t, client.Authorize(acc, NewWithdrawal(dec(10))))

	// 隔天重新計算
	clock.Advance(24 * time.Hour)
	require.NoError(t, client.Authorize(acc, NewDeposit(dec(100))))
}

func TestAuthorizeWithdrawalsNeverExceedLimit(t *testing.T) {
	clock := newTestClock()
	r := NewRegistry(WithClock(clock.Now))
	client := r.NewClient("Ana", "", "111", "")
	acc := r.Open(client, Basic())
	client.AddAccount(acc)
	require.NoError(t, acc.Deposit(dec(1000)))

	for i := 0; i < 10; i++ {
		_ = client.Authorize(acc, NewWithdrawal(dec(1)))
		clock.Advance(time.Minute)
	}
	assert.Equal(t, DailyTransactionLimit, acc.History().CountOfKind(KindWithdrawal, clock.Now()))
	assert.True(t, acc.Balance().Equal(dec(997)))
}

func TestAuthorizeFailedTransactionDoesNotCount(t *testing.T) {
	r := NewRegistry()
	client := r.NewClient("Ana", "", "111", "")
	acc := r.Open(client)

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, client.Authorize(acc, NewWithdrawal(dec(10))), ErrInsufficientFunds)
	}
	require.NoError(t, client.Authorize(acc, NewDeposit(dec(10))))
	require.NoError(t, client.Authorize(acc, NewWithdrawal(dec(10))))
}

func TestClientAccountsInCreationOrder(t *testing.T) {
	r := NewRegistry()
	client := r.NewClient("Ana", "01/02/1990", "111", "Rua A, 1")
	a1 := r.Open(client)
	a2 := r.Open(client, Basic())
	client.AddAccount(a1)
	client.AddAccount(a2)

	got := client.Accounts()
	require.Len(t, got, 2)
	assert.Equal(t, a1.Number(), got[0].Number())
	assert.Equal(t, a2.Number(), got[1].Number())
	assert.Same(t, client, got[0].Owner())
	assert.Equal(t, "01/02/1990", client.BirthDate())
	assert.Equal(t, "Rua A, 1", client.Address())
}
