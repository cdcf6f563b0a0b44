// Package audit 提供所有變更操作共用的稽核包裝。
// 包裝只觀察，不改變被包裝操作的流程與回傳值。
package audit

import (
	"context"
	"fmt"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// 操作名稱
const (
	OpDeposit    = "deposit"
	OpWithdraw   = "withdraw"
	OpAddAccount = "add_account"
	OpAuthorize  = "authorize"
)

// 操作結果
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
	OutcomePanic  = "panic"
)

// Args 被包裝操作的參數
type Args map[string]any

// Entry 一筆稽核紀錄
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	Operation string    `json:"operation"`
	Args      Args      `json:"args"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
}

// Sink 稽核紀錄的外部寫入端
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}

// SinkFunc 讓一般函數可以當作 Sink
type SinkFunc func(ctx context.Context, entry Entry) error

func (f SinkFunc) Record(ctx context.Context, entry Entry) error { return f(ctx, entry) }

// Recorder 執行操作並寫入一筆稽核紀錄
type Recorder struct {
	sink   Sink
	clock  func() time.Time
	logger *zap.Logger
	// base 帳戶包裝 (沒有 ctx 參數) 寫入 Sink 時使用的 context
	base context.Context

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// RecorderOption 定義了 Recorder 的配置選項函數
type RecorderOption func(*Recorder)

// WithLogger 設定寫入失敗時使用的 logger
func WithLogger(logger *zap.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithBaseContext 設定帳戶包裝寫入 Sink 時使用的 context
// domain.Account 的 Deposit / Withdraw 不帶 ctx，改用這裡設定的值 (預設 context.Background)
func WithBaseContext(ctx context.Context) RecorderOption {
	return func(r *Recorder) {
		r.base = ctx
	}
}

// WithClock 設定稽核時間戳與 ID 的時鐘
func WithClock(clock func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.clock = clock
	}
}

// NewRecorder 建立 Recorder
//
// 參數:
//
//	sink: 稽核寫入端 (nil 時紀錄會被丟棄)
//	opts: 配置選項
func NewRecorder(sink Sink, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		sink:    sink,
		clock:   time.Now,
		logger:  zap.NewNop(),
		base:    context.Background(),
		entropy: ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do 執行 fn 一次，接著寫入一筆紀錄，最後原樣回傳 fn 的錯誤
// fn panic 時仍會寫入紀錄，然後繼續 panic
func (r *Recorder) Do(ctx context.Context, op string, args Args, fn func() error) (err error) {
	done := false
	defer func() {
		if done {
			return
		}
		rec := recover()
		r.record(ctx, op, args, OutcomePanic, fmt.Sprint(rec))
		panic(rec)
	}()

	err = fn()
	done = true

	if err != nil {
		r.record(ctx, op, args, OutcomeFailed, err.Error())
	} else {
		r.record(ctx, op, args, OutcomeOK, "")
	}
	return err
}

// Call 是 Do 的泛型版本，用於有回傳值的操作
func Call[T any](ctx context.Context, r *Recorder, op string, args Args, fn func() (T, error)) (T, error) {
	var out T
	err := r.Do(ctx, op, args, func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

func (r *Recorder) record(ctx context.Context, op string, args Args, outcome, errMsg string) {
	if r.sink == nil {
		return
	}
	now := r.clock()
	entry := Entry{
		ID:        r.newID(now),
		Timestamp: now,
		Operation: op,
		Args:      copyArgs(args),
		Outcome:   outcome,
		Error:     errMsg,
	}
	if err := r.sink.Record(ctx, entry); err != nil {
		// 寫入失敗不影響帳務結果
		r.logger.Warn("audit sink failed", zap.String("operation", op), zap.Error(err))
	}
}

// newID 產生與紀錄時間戳一致的 ULID
func (r *Recorder) newID(at time.Time) string {
	r.entropyMu.Lock()
	defer r.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), r.entropy).String()
}

func copyArgs(args Args) Args {
	out := make(Args, len(args))
	for k, v := range args {
		out[k] = v
	}
	return out
}
