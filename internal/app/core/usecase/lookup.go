package usecase

import "github.com/JoeShih716/go-branch-ledger/internal/app/core/domain"

// findClient 以 CPF 線性搜尋客戶
func findClient(cpf string, clients []*domain.Client) (*domain.Client, error) {
	for _, c := range clients {
		if c.CPF() == cpf {
			return c, nil
		}
	}
	return nil, domain.ErrClientNotFound
}

// pickAccount 取得客戶的帳戶，number 為 0 時回傳第一個帳戶
func pickAccount(client *domain.Client, number int64) (domain.Account, error) {
	accounts := client.Accounts()
	if len(accounts) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	if number == 0 {
		return accounts[0], nil
	}
	for _, a := range accounts {
		if a.Number() == number {
			return a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}
