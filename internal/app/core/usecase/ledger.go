package usecase

import (
	"context"

	"github.com/shopspring/decimal"
)

// Ledger 是銀行帳務 session 對外提供的操作
// gRPC adapter 只依賴這個介面
type Ledger interface {
	// CreateClient 建立客戶 (CPF 不可重複)
	CreateClient(ctx context.Context, in ClientInput) (ClientView, error)
	// FindClient 依 CPF 查詢客戶
	FindClient(ctx context.Context, cpf string) (ClientView, error)
	// OpenAccount 為客戶開立帳戶
	OpenAccount(ctx context.Context, cpf string, kind AccountKind, ceiling decimal.NullDecimal) (AccountView, error)
	// Deposit 存款，number 為 0 時使用客戶的第一個帳戶
	Deposit(ctx context.Context, cpf string, number int64, amount decimal.Decimal) (AccountView, error)
	// Withdraw 提款，number 為 0 時使用客戶的第一個帳戶
	Withdraw(ctx context.Context, cpf string, number int64, amount decimal.Decimal) (AccountView, error)
	// Statement 取得帳戶明細
	Statement(ctx context.Context, cpf string, number int64) (StatementView, error)
	// ListAccounts 依建立順序列出所有帳戶
	ListAccounts(ctx context.Context) ([]AccountView, error)
}
