// Package statement 將帳戶明細輸出為 markdown，金額以 BRL 格式顯示
package statement

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/usecase"
)

// Currency 帳務使用的幣別
const Currency = money.BRL

// EmptyMessage 沒有任何交易時顯示的文字
const EmptyMessage = "No transactions."

const timeLayout = "02/01/2006 15:04"

// Format 將金額轉為 go-money 的顯示格式 (e.g., "R$1.234,56")
func Format(amount decimal.Decimal) string {
	cur := money.GetCurrency(Currency)
	cents := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(cents, Currency).Display()
}

// Markdown 產生帳戶明細
//
// 參數:
//
//	v: 帳戶明細快照
//
// 回傳:
//
//	string: markdown 文件 (標題、帳戶資訊、交易表格)
func Markdown(v usecase.StatementView) string {
	var b strings.Builder
	a := v.Account

	fmt.Fprintf(&b, "# Statement %s-%d\n\n", a.Branch, a.Number)
	fmt.Fprintf(&b, "- **Holder:** %s (CPF %s)\n", a.Holder, a.CPF)
	fmt.Fprintf(&b, "- **Kind:** %s\n", a.Kind)
	if a.Ceiling.Valid {
		fmt.Fprintf(&b, "- **Withdrawal ceiling:** %s\n", Format(a.Ceiling.Decimal))
	}
	fmt.Fprintf(&b, "- **Balance:** %s\n\n", Format(a.Balance))

	if len(v.Entries) == 0 {
		b.WriteString(EmptyMessage + "\n")
		return b.String()
	}

	b.WriteString("| # | Date | Kind | Amount |\n")
	b.WriteString("|---|------|------|-------:|\n")
	for i, e := range v.Entries {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1, e.Timestamp.Format(timeLayout), e.Kind, Format(e.Amount))
	}
	return b.String()
}
