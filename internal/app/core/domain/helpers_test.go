package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// fixedClock 回傳可手動推進的時鐘
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestClock() *fixedClock {
	return &fixedClock{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
}
