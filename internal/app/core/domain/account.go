package domain

import "github.com/shopspring/decimal"

// DefaultBranch 唯一的分行代碼
const DefaultBranch = "0001"

// DefaultCeiling 支票帳戶預設的單筆提款上限
var DefaultCeiling = decimal.NewFromInt(500)

// Account 帳戶的共同行為
// Deposit / Withdraw 是唯二可以改變餘額的方法
type Account interface {
	Number() int64
	Branch() string
	Owner() *Client
	Balance() decimal.Decimal
	Deposit(amount decimal.Decimal) error
	Withdraw(amount decimal.Decimal) error
	History() *History
}

// BasicAccount 一般帳戶
type BasicAccount struct {
	number  int64
	branch  string
	owner   *Client
	balance decimal.Decimal
	history *History
}

func newBasicAccount(number int64, branch string, owner *Client, clock Clock) *BasicAccount {
	return &BasicAccount{
		number:  number,
		branch:  branch,
		owner:   owner,
		balance: decimal.Zero,
		history: NewHistory(clock),
	}
}

func (a *BasicAccount) Number() int64            { return a.number }
func (a *BasicAccount) Branch() string           { return a.branch }
func (a *BasicAccount) Owner() *Client           { return a.owner }
func (a *BasicAccount) Balance() decimal.Decimal { return a.balance }
func (a *BasicAccount) History() *History        { return a.history }

// Deposit 存款
func (a *BasicAccount) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	a.balance = a.balance.Add(amount)
	return nil
}

// Withdraw 提款，餘額不得為負
func (a *BasicAccount) Withdraw(amount decimal.Decimal) error {
	if amount.GreaterThan(a.balance) {
		return ErrInsufficientFunds
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	a.balance = a.balance.Sub(amount)
	return nil
}

// CheckingAccount 支票帳戶，多了單筆提款上限
type CheckingAccount struct {
	*BasicAccount
	ceiling decimal.Decimal
}

// Ceiling 單筆提款上限
func (c *CheckingAccount) Ceiling() decimal.Decimal { return c.ceiling }

// Withdraw 先檢查上限再套用一般帳戶規則
// 同時超過上限與餘額時，回報 ErrCeilingExceeded
func (c *CheckingAccount) Withdraw(amount decimal.Decimal) error {
	if amount.GreaterThan(c.ceiling) {
		return ErrCeilingExceeded
	}
	return c.BasicAccount.Withdraw(amount)
}

// CeilingOf 取得帳戶的提款上限，會穿透 decorator
// 非支票帳戶回傳 false
func CeilingOf(account Account) (decimal.Decimal, bool) {
	for {
		switch a := account.(type) {
		case *CheckingAccount:
			return a.ceiling, true
		case interface{ Unwrap() Account }:
			account = a.Unwrap()
		default:
			return decimal.Zero, false
		}
	}
}

var (
	_ Account = (*BasicAccount)(nil)
	_ Account = (*CheckingAccount)(nil)
)
