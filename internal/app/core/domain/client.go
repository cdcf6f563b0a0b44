package domain

import "time"

// DailyTransactionLimit 每個帳戶每日同類交易 (存款或提款) 的次數上限
const DailyTransactionLimit = 3

// Client 銀行客戶 (自然人)
type Client struct {
	name      string
	birthDate string
	cpf       string
	address   string
	accounts  []Account
	clock     Clock
}

// NewClient 建立客戶
//
// 參數:
//
//	name: 姓名
//	birthDate: 出生日期 (dd/mm/yyyy，原樣保存)
//	cpf: 身分證號，作為查詢鍵
//	address: 地址
func NewClient(name, birthDate, cpf, address string) *Client {
	return &Client{
		name:      name,
		birthDate: birthDate,
		cpf:       cpf,
		address:   address,
		clock:     time.Now,
	}
}

func (c *Client) Name() string      { return c.name }
func (c *Client) BirthDate() string { return c.birthDate }
func (c *Client) CPF() string       { return c.cpf }
func (c *Client) Address() string   { return c.address }

// Accounts 依建立順序回傳帳戶複本
func (c *Client) Accounts() []Account {
	out := make([]Account, len(c.accounts))
	copy(out, c.accounts)
	return out
}

// AddAccount 新增帳戶，沒有數量上限
func (c *Client) AddAccount(account Account) {
	c.accounts = append(c.accounts, account)
}

// Authorize 檢查當日次數限制後，才對帳戶套用交易
// 超過限制時交易不會被執行，餘額與紀錄都不變
func (c *Client) Authorize(account Account, tran Transaction) error {
	today := c.clock()
	if account.History().CountOfKind(tran.Kind(), today) >= DailyTransactionLimit {
		return ErrDailyLimitExceeded
	}
	return tran.Apply(account)
}
