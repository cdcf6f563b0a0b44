package usecase

import (
	"errors"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/domain"
)

// AccountKind 帳戶種類
type AccountKind string

const (
	AccountKindChecking AccountKind = "checking"
	AccountKindBasic    AccountKind = "basic"
)

// ErrInvalidAccountKind 不支援的帳戶種類
var ErrInvalidAccountKind = errors.New("invalid account kind")

// ParseAccountKind 解析帳戶種類，空字串視為 checking
func ParseAccountKind(s string) (AccountKind, error) {
	switch AccountKind(s) {
	case "", AccountKindChecking:
		return AccountKindChecking, nil
	case AccountKindBasic:
		return AccountKindBasic, nil
	default:
		return "", ErrInvalidAccountKind
	}
}

// ClientInput 建立客戶所需資料
type ClientInput struct {
	Name      string
	BirthDate string
	CPF       string
	Address   string
}

// ClientView 客戶的唯讀快照
type ClientView struct {
	Name      string
	BirthDate string
	CPF       string
	Address   string
	Accounts  []int64
}

// AccountView 帳戶的唯讀快照
type AccountView struct {
	Number  int64
	Branch  string
	Holder  string
	CPF     string
	Kind    AccountKind
	Balance decimal.Decimal
	Ceiling decimal.NullDecimal
}

// StatementView 帳戶明細
type StatementView struct {
	Account AccountView
	Entries []domain.Entry
}

func clientView(c *domain.Client) ClientView {
	v := ClientView{
		Name:      c.Name(),
		BirthDate: c.BirthDate(),
		CPF:       c.CPF(),
		Address:   c.Address(),
	}
	for _, a := range c.Accounts() {
		v.Accounts = append(v.Accounts, a.Number())
	}
	return v
}

func accountView(a domain.Account) AccountView {
	v := AccountView{
		Number:  a.Number(),
		Branch:  a.Branch(),
		Kind:    AccountKindBasic,
		Balance: a.Balance(),
	}
	if owner := a.Owner(); owner != nil {
		v.Holder = owner.Name()
		v.CPF = owner.CPF()
	}
	if ceiling, ok := domain.CeilingOf(a); ok {
		v.Kind = AccountKindChecking
		v.Ceiling = decimal.NewNullDecimal(ceiling)
	}
	return v
}

func statementView(a domain.Account) StatementView {
	return StatementView{
		Account: accountView(a),
		Entries: slices.Collect(a.History().Report()),
	}
}
