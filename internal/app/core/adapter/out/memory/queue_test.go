package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/audit"
)

type collectSink struct {
	mu      sync.Mutex
	ids     []string
	fail    bool
	release chan struct{}
}

func (c *collectSink) Record(_ context.Context, e audit.Entry) error {
	if c.release != nil {
		<-c.release
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("down")
	}
	c.ids = append(c.ids, e.ID)
	return nil
}

func (c *collectSink) got() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ids...)
}

func TestQueueForwardsInOrder(t *testing.T) {
	sink := &collectSink{}
	q := NewQueue(sink, 16)
	q.Start(context.Background())

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Record(context.Background(), audit.Entry{ID: id}))
	}
	require.NoError(t, q.Close())

	assert.Equal(t, []string{"a", "b", "c"}, sink.got())
}

func TestQueueFullAndClosed(t *testing.T) {
	sink := &collectSink{}
	q := NewQueue(sink, 1)

	require.NoError(t, q.Record(context.Background(), audit.Entry{ID: "a"}))
	assert.ErrorIs(t, q.Record(context.Background(), audit.Entry{ID: "b"}), ErrQueueFull)

	// 未啟動時 Close 直接消化剩下的紀錄
	require.NoError(t, q.Close())
	assert.Equal(t, []string{"a"}, sink.got())

	assert.ErrorIs(t, q.Record(context.Background(), audit.Entry{ID: "c"}), ErrQueueClosed)
	assert.NoError(t, q.Close())
}

func TestQueueDoesNotBlockRecorder(t *testing.T) {
	sink := &collectSink{release: make(chan struct{})}
	q := NewQueue(sink, 8)
	q.Start(context.Background())

	rec := audit.NewRecorder(q)
	done := make(chan struct{})
	go func() {
		_ = rec.Do(context.Background(), audit.OpDeposit, audit.Args{"amount": "1"}, func() error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recorder blocked on slow sink")
	}
	close(sink.release)
	require.NoError(t, q.Close())
	assert.Len(t, sink.got(), 1)
}

func TestQueueLogsForwardFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	q := NewQueue(&collectSink{fail: true}, 4, WithQueueLogger(zap.New(core)))
	q.Start(context.Background())

	require.NoError(t, q.Record(context.Background(), audit.Entry{ID: "x", Operation: audit.OpWithdraw}))
	require.NoError(t, q.Close())

	entries := logs.FilterMessage("audit queue forward failed").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "x", entries[0].ContextMap()["id"])
}
