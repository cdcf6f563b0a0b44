package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Registry 管理帳號流水號與全域帳戶清單
//
// 結構:
//
//	mu: 保護流水號與清單，兩者必須一起更新
//	lastNumber: 最後發出的帳號
//	accounts: 依建立順序排列的帳戶
//	decorate: 建立後套用的包裝 (例如稽核)
type Registry struct {
	mu         sync.Mutex
	lastNumber int64
	accounts   []Account
	branch     string
	ceiling    decimal.Decimal
	clock      Clock
	decorate   func(Account) Account
}

// RegistryOption 定義了 Registry 的配置選項函數
type RegistryOption func(*Registry)

// WithClock 設定帳戶與客戶使用的時鐘
func WithClock(clock Clock) RegistryOption {
	return func(r *Registry) {
		r.clock = clock
	}
}

// WithBranch 設定分行代碼
func WithBranch(branch string) RegistryOption {
	return func(r *Registry) {
		r.branch = branch
	}
}

// WithDefaultCeiling 設定支票帳戶未指定上限時的預設值
func WithDefaultCeiling(ceiling decimal.Decimal) RegistryOption {
	return func(r *Registry) {
		r.ceiling = ceiling
	}
}

// WithDecorator 設定帳戶建立後的包裝函數
func WithDecorator(decorate func(Account) Account) RegistryOption {
	return func(r *Registry) {
		r.decorate = decorate
	}
}

// NewRegistry 建立帳戶註冊表
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		branch:  DefaultBranch,
		ceiling: DefaultCeiling,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// accountOptions 開戶參數
type accountOptions struct {
	basic   bool
	ceiling *decimal.Decimal
}

// AccountOption 開戶選項
type AccountOption func(*accountOptions)

// Basic 開立一般帳戶 (無提款上限)
func Basic() AccountOption {
	return func(o *accountOptions) {
		o.basic = true
	}
}

// WithCeiling 指定支票帳戶的提款上限
func WithCeiling(ceiling decimal.Decimal) AccountOption {
	return func(o *accountOptions) {
		o.ceiling = &ceiling
	}
}

// NewClient 建立使用 Registry 時鐘的客戶
func (r *Registry) NewClient(name, birthDate, cpf, address string) *Client {
	c := NewClient(name, birthDate, cpf, address)
	c.clock = r.clock
	return c
}

// Open 開立新帳戶，預設為支票帳戶
// 分配帳號與加入清單在同一個臨界區內完成
//
// 參數:
//
//	owner: 帳戶持有人 (僅保存參照)
//	opts: 開戶選項
//
// 回傳:
//
//	Account: 新帳戶 (已套用 decorator)
func (r *Registry) Open(owner *Client, opts ...AccountOption) Account {
	o := accountOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastNumber++
	base := newBasicAccount(r.lastNumber, r.branch, owner, r.clock)

	var account Account = base
	if !o.basic {
		ceiling := r.ceiling
		if o.ceiling != nil {
			ceiling = *o.ceiling
		}
		account = &CheckingAccount{BasicAccount: base, ceiling: ceiling}
	}
	if r.decorate != nil {
		account = r.decorate(account)
	}
	r.accounts = append(r.accounts, account)
	return account
}

// Accounts 依建立順序回傳所有帳戶
func (r *Registry) Accounts() []Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Account, len(r.accounts))
	copy(out, r.accounts)
	return out
}

// Find 依帳號查詢帳戶
func (r *Registry) Find(number int64) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Number() == number {
			return a, nil
		}
	}
	return nil, ErrAccountNotFound
}
