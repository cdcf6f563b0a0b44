package memory

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/audit"
)

var (
	// ErrQueueFull 緩衝區已滿，紀錄被丟棄
	ErrQueueFull = errors.New("audit queue full")
	// ErrQueueClosed 已關閉後仍寫入
	ErrQueueClosed = errors.New("audit queue closed")
)

// Queue 是單一消費者的稽核輸送帶
// Record 只把紀錄放入 channel，由 run loop 依序交給下游 Sink，
// 讓 MySQL / Kafka 這類較慢的 I/O 不會卡在交易的臨界區內
//
// 結構:
//
//	next: 下游 Sink
//	entries: 輸送帶
//	done: run loop 結束後關閉
type Queue struct {
	next    audit.Sink
	entries chan audit.Entry
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool

	cancel context.CancelFunc
	done   chan struct{}
}

// QueueOption 定義了 Queue 的配置選項函數
type QueueOption func(*Queue)

// WithQueueLogger 設定下游失敗時使用的 logger
func WithQueueLogger(logger *zap.Logger) QueueOption {
	return func(q *Queue) {
		q.logger = logger
	}
}

// NewQueue 建立輸送帶，需呼叫 Start 才會開始消費
//
// 參數:
//
//	next: 下游 Sink
//	size: 緩衝區大小
func NewQueue(next audit.Sink, size int, opts ...QueueOption) *Queue {
	q := &Queue{
		next:    next,
		entries: make(chan audit.Entry, size),
		logger:  zap.NewNop(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start 啟動消費 loop (非同步)
func (q *Queue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	go q.run(ctx)
}

// Record 放入輸送帶，不等待下游
func (q *Queue) Record(_ context.Context, entry audit.Entry) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.entries <- entry:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close 停止接收並把剩下的紀錄處理完
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	if q.cancel == nil {
		// 從未啟動，直接在呼叫端消化
		q.drain(context.Background())
		return nil
	}
	q.cancel()
	<-q.done
	return nil
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.done)
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的紀錄處理完
			q.drain(context.WithoutCancel(ctx))
			return
		case entry := <-q.entries:
			q.forward(ctx, entry)
		}
	}
}

func (q *Queue) drain(ctx context.Context) {
	for {
		select {
		case entry := <-q.entries:
			q.forward(ctx, entry)
		default:
			return
		}
	}
}

func (q *Queue) forward(ctx context.Context, entry audit.Entry) {
	if err := q.next.Record(ctx, entry); err != nil {
		q.logger.Warn("audit queue forward failed",
			zap.String("id", entry.ID),
			zap.String("operation", entry.Operation),
			zap.Error(err))
	}
}
