package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TransactionKind 交易類型
// 為了節省記憶體，使用 uint8
type TransactionKind uint8

const (
	// 存款
	KindDeposit TransactionKind = 1
	// 提款
	KindWithdrawal TransactionKind = 2
)

func (k TransactionKind) String() string {
	switch k {
	case KindDeposit:
		return "Deposit"
	case KindWithdrawal:
		return "Withdrawal"
	default:
		return fmt.Sprintf("TransactionKind(%d)", uint8(k))
	}
}

// Transaction 是一筆尚未套用的帳務操作。
// 交易本身不知道會作用在哪個帳戶，直到 Apply 被呼叫。
type Transaction interface {
	Kind() TransactionKind
	Amount() decimal.Decimal
	// Apply 對帳戶執行交易，只有成功時才寫入 History
	Apply(account Account) error
}

// Withdrawal 提款交易
type Withdrawal struct {
	amount decimal.Decimal
}

// NewWithdrawal 建立提款交易
func NewWithdrawal(amount decimal.Decimal) Withdrawal {
	return Withdrawal{amount: amount}
}

func (w Withdrawal) Kind() TransactionKind   { return KindWithdrawal }
func (w Withdrawal) Amount() decimal.Decimal { return w.amount }

// Apply 呼叫帳戶的 Withdraw，失敗時不留下任何紀錄
func (w Withdrawal) Apply(account Account) error {
	if err := account.Withdraw(w.amount); err != nil {
		return err
	}
	register(account, w)
	return nil
}

// Deposit 存款交易
type Deposit struct {
	amount decimal.Decimal
}

// NewDeposit 建立存款交易
func NewDeposit(amount decimal.Decimal) Deposit {
	return Deposit{amount: amount}
}

func (d Deposit) Kind() TransactionKind   { return KindDeposit }
func (d Deposit) Amount() decimal.Decimal { return d.amount }

// Apply 呼叫帳戶的 Deposit，失敗時不留下任何紀錄
func (d Deposit) Apply(account Account) error {
	if err := account.Deposit(d.amount); err != nil {
		return err
	}
	register(account, d)
	return nil
}

// register 將成功的交易寫入帳戶的 History
func register(account Account, tran Transaction) {
	h := account.History()
	h.Append(h.newEntry(tran.Kind(), tran.Amount()))
}

var (
	_ Transaction = Withdrawal{}
	_ Transaction = Deposit{}
)
