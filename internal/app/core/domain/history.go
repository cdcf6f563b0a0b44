package domain

import (
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Clock 回傳目前時間，測試時可替換
type Clock func() time.Time

// Entry 是一筆已成功套用的交易紀錄，建立後不可修改
type Entry struct {
	ID        uuid.UUID       `json:"id"`
	Kind      TransactionKind `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// History 單一帳戶的交易紀錄，只能追加
type History struct {
	entries []Entry
	clock   Clock
}

// NewHistory 建立空的 History
//
// 參數:
//
//	clock: 產生紀錄時間戳的時鐘 (nil 時使用 time.Now)
func NewHistory(clock Clock) *History {
	if clock == nil {
		clock = time.Now
	}
	return &History{clock: clock}
}

func (h *History) newEntry(kind TransactionKind, amount decimal.Decimal) Entry {
	return Entry{
		ID:        uuid.New(),
		Kind:      kind,
		Amount:    amount,
		Timestamp: h.clock(),
	}
}

// Append 追加一筆紀錄，不做任何檢查 (只有 Account 會呼叫)
func (h *History) Append(entry Entry) {
	h.entries = append(h.entries, entry)
}

// Len 紀錄筆數
func (h *History) Len() int {
	return len(h.entries)
}

// Entries 回傳所有紀錄的複本
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// EntriesOnDate 回傳與 day 同一日曆日的紀錄 (以 day 的時區判斷)
func (h *History) EntriesOnDate(day time.Time) []Entry {
	var out []Entry
	for _, e := range h.entries {
		if sameDate(e.Timestamp, day) {
			out = append(out, e)
		}
	}
	return out
}

// CountOfKind 計算 day 當天某類型交易的筆數，用於每日次數限制
func (h *History) CountOfKind(kind TransactionKind, day time.Time) int {
	n := 0
	for _, e := range h.EntriesOnDate(day) {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Report 回傳可重複走訪的紀錄序列，走訪時才讀取
func (h *History) Report() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range h.entries {
			if !yield(e) {
				return
			}
		}
	}
}

func sameDate(ts, day time.Time) bool {
	y1, m1, d1 := ts.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
