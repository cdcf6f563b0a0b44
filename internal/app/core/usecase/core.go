package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/audit"
	"github.com/JoeShih716/go-branch-ledger/internal/app/core/domain"
)

// CoreUseCase 是核心業務邏輯層，代表單一的記憶體帳務 session
//
// 結構:
//
//	mu: 序列化所有變更，讓 gRPC 並發呼叫不會破壞帳務規則
//	registry: 帳號流水號與全域帳戶清單
//	clients: 依建立順序排列的客戶
//	recorder: 稽核包裝
type CoreUseCase struct {
	mu       sync.RWMutex
	registry *domain.Registry
	clients  []*domain.Client
	recorder *audit.Recorder
	logger   *zap.Logger
}

// Option 定義了 CoreUseCase 的配置選項函數
type Option func(*CoreUseCase)

// WithLogger 設定 logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *CoreUseCase) {
		c.logger = logger
	}
}

// NewCoreUseCase 建立 session
//
// 參數:
//
//	registry: 帳戶註冊表 (通常已設定 audit.Decorator)
//	recorder: 用於 add_account 與 authorize 的稽核包裝
func NewCoreUseCase(registry *domain.Registry, recorder *audit.Recorder, opts ...Option) *CoreUseCase {
	c := &CoreUseCase{
		registry: registry,
		recorder: recorder,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateClient 建立客戶
func (c *CoreUseCase) CreateClient(ctx context.Context, in ClientInput) (ClientView, error) {
	in.CPF = strings.TrimSpace(in.CPF)
	in.Name = strings.TrimSpace(in.Name)
	if in.CPF == "" || in.Name == "" {
		return ClientView{}, domain.ErrInvalidClient
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := findClient(in.CPF, c.clients); err == nil {
		return ClientView{}, domain.ErrClientAlreadyExists
	}
	client := c.registry.NewClient(in.Name, strings.TrimSpace(in.BirthDate), in.CPF, strings.TrimSpace(in.Address))
	c.clients = append(c.clients, client)
	c.logger.Info("client created", zap.String("cpf", in.CPF))
	return clientView(client), nil
}

// FindClient 依 CPF 查詢客戶
func (c *CoreUseCase) FindClient(ctx context.Context, cpf string) (ClientView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	client, err := findClient(cpf, c.clients)
	if err != nil {
		return ClientView{}, err
	}
	return clientView(client), nil
}

// OpenAccount 開立帳戶並加入客戶的帳戶清單
//
// 參數:
//
//	cpf: 客戶 CPF
//	kind: 帳戶種類
//	ceiling: 支票帳戶的提款上限 (未設定時使用預設值)
func (c *CoreUseCase) OpenAccount(ctx context.Context, cpf string, kind AccountKind, ceiling decimal.NullDecimal) (AccountView, error) {
	var opts []domain.AccountOption
	switch kind {
	case AccountKindChecking:
		if ceiling.Valid {
			if !ceiling.Decimal.IsPositive() {
				return AccountView{}, domain.ErrInvalidAmount
			}
			opts = append(opts, domain.WithCeiling(ceiling.Decimal))
		}
	case AccountKindBasic:
		opts = append(opts, domain.Basic())
	default:
		return AccountView{}, ErrInvalidAccountKind
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	client, err := findClient(cpf, c.clients)
	if err != nil {
		return AccountView{}, err
	}
	account := c.registry.Open(client, opts...)
	args := audit.Args{"cpf": cpf, "account": account.Number(), "kind": string(kind)}
	view, err := audit.Call(ctx, c.recorder, audit.OpAddAccount, args, func() (AccountView, error) {
		client.AddAccount(account)
		return accountView(account), nil
	})
	if err != nil {
		c.logger.Error("add account failed", zap.Int64("account", account.Number()), zap.Error(err))
		return AccountView{}, err
	}
	c.logger.Info("account opened", zap.String("cpf", cpf), zap.Int64("account", account.Number()))
	return view, nil
}

// Deposit 存款
func (c *CoreUseCase) Deposit(ctx context.Context, cpf string, number int64, amount decimal.Decimal) (AccountView, error) {
	return c.postTransaction(ctx, cpf, number, domain.NewDeposit(amount))
}

// Withdraw 提款
func (c *CoreUseCase) Withdraw(ctx context.Context, cpf string, number int64, amount decimal.Decimal) (AccountView, error) {
	return c.postTransaction(ctx, cpf, number, domain.NewWithdrawal(amount))
}

// postTransaction 找到客戶與帳戶後，經由 Client.Authorize 執行交易
func (c *CoreUseCase) postTransaction(ctx context.Context, cpf string, number int64, tran domain.Transaction) (AccountView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	client, err := findClient(cpf, c.clients)
	if err != nil {
		return AccountView{}, err
	}
	account, err := pickAccount(client, number)
	if err != nil {
		return AccountView{}, err
	}

	args := audit.Args{
		"cpf":     cpf,
		"account": account.Number(),
		"kind":    tran.Kind().String(),
		"amount":  tran.Amount().String(),
	}
	err = c.recorder.Do(ctx, audit.OpAuthorize, args, func() error {
		return client.Authorize(account, tran)
	})
	if err != nil {
		if isBusinessError(err) {
			c.logger.Info("transaction rejected",
				zap.Int64("account", account.Number()),
				zap.Stringer("kind", tran.Kind()),
				zap.Error(err))
		} else {
			c.logger.Error("transaction failed", zap.Int64("account", account.Number()), zap.Error(err))
		}
		return AccountView{}, err
	}
	return accountView(account), nil
}

// Statement 取得帳戶明細
func (c *CoreUseCase) Statement(ctx context.Context, cpf string, number int64) (StatementView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	client, err := findClient(cpf, c.clients)
	if err != nil {
		return StatementView{}, err
	}
	account, err := pickAccount(client, number)
	if err != nil {
		return StatementView{}, err
	}
	return statementView(account), nil
}

// ListAccounts 依建立順序列出所有帳戶
func (c *CoreUseCase) ListAccounts(ctx context.Context) ([]AccountView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	accounts := c.registry.Accounts()
	out := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountView(a))
	}
	return out, nil
}

// isBusinessError 判斷是否為可預期的業務規則錯誤
func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidAmount,
		domain.ErrInsufficientFunds,
		domain.ErrCeilingExceeded,
		domain.ErrDailyLimitExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var _ Ledger = (*CoreUseCase)(nil)
