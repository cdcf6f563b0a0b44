package audit

import (
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/domain"
)

// auditedAccount 帳戶的稽核包裝，Deposit / Withdraw 會經過 Recorder
// 寫入 Sink 時使用 Recorder 的 base context (見 WithBaseContext)
type auditedAccount struct {
	domain.Account
	rec *Recorder
}

// WrapAccount 將帳戶包上稽核
func WrapAccount(account domain.Account, rec *Recorder) domain.Account {
	return &auditedAccount{Account: account, rec: rec}
}

// Decorator 回傳給 domain.Registry 使用的包裝函數
func Decorator(rec *Recorder) func(domain.Account) domain.Account {
	return func(account domain.Account) domain.Account {
		return WrapAccount(account, rec)
	}
}

func (a *auditedAccount) Deposit(amount decimal.Decimal) error {
	return a.rec.Do(a.rec.base, OpDeposit, a.args(amount), func() error {
		return a.Account.Deposit(amount)
	})
}

func (a *auditedAccount) Withdraw(amount decimal.Decimal) error {
	return a.rec.Do(a.rec.base, OpWithdraw, a.args(amount), func() error {
		return a.Account.Withdraw(amount)
	})
}

func (a *auditedAccount) args(amount decimal.Decimal) Args {
	return Args{
		"account": a.Number(),
		"branch":  a.Branch(),
		"amount":  amount.String(),
	}
}

// Unwrap 取回被包裝的帳戶
func (a *auditedAccount) Unwrap() domain.Account { return a.Account }
