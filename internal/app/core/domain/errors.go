package domain

import "errors"

var (
	// ErrInvalidAmount 金額必須為正數
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds 餘額不足
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrCeilingExceeded 單筆提款超過支票帳戶上限
	ErrCeilingExceeded = errors.New("withdrawal exceeds account ceiling")

	// ErrDailyLimitExceeded 當日同類交易次數已達上限
	ErrDailyLimitExceeded = errors.New("daily transaction limit exceeded")

	// ErrClientNotFound 找不到客戶
	ErrClientNotFound = errors.New("client not found")

	// ErrClientAlreadyExists 客戶已存在 (CPF 重複)
	ErrClientAlreadyExists = errors.New("client already exists")

	// ErrInvalidClient 客戶資料不完整
	ErrInvalidClient = errors.New("client requires cpf and name")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")
)
