package statement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-branch-ledger/internal/app/core/usecase"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "R$100,00", Format(decimal.NewFromInt(100)))
	assert.Equal(t, "R$10,50", Format(decimal.RequireFromString("10.5")))
	assert.Equal(t, "R$0,00", Format(decimal.Zero))
}

func TestMarkdownEmpty(t *testing.T) {
	v := usecase.StatementView{
		Account: usecase.AccountView{
			Number:  1,
			Branch:  "0001",
			Holder:  "Ana",
			CPF:     "111",
			Kind:    usecase.AccountKindBasic,
			Balance: decimal.Zero,
		},
	}
	md := Markdown(v)
	assert.Contains(t, md, "# Statement 0001-1")
	assert.Contains(t, md, "Ana (CPF 111)")
	assert.Contains(t, md, EmptyMessage)
	assert.NotContains(t, md, "Withdrawal ceiling")
	assert.NotContains(t, md, "| # |")
}

func TestMarkdownEntries(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	v := usecase.StatementView{
		Account: usecase.AccountView{
			Number:  7,
			Branch:  "0001",
			Holder:  "Ana",
			CPF:     "111",
			Kind:    usecase.AccountKindChecking,
			Balance: decimal.NewFromInt(70),
			Ceiling: decimal.NewNullDecimal(decimal.NewFromInt(500)),
		},
		Entries: []domain.Entry{
			{Kind: domain.KindDeposit, Amount: decimal.NewFromInt(100), Timestamp: ts},
			{Kind: domain.KindWithdrawal, Amount: decimal.NewFromInt(30), Timestamp: ts},
		},
	}
	md := Markdown(v)
	assert.Contains(t, md, "**Withdrawal ceiling:** R$500,00")
	assert.Contains(t, md, "**Balance:** R$70,00")
	assert.Contains(t, md, "| 1 | 15/03/2024 10:30 | Deposit | R$100,00 |")
	assert.Contains(t, md, "| 2 | 15/03/2024 10:30 | Withdrawal | R$30,00 |")
	assert.NotContains(t, md, EmptyMessage)
}
