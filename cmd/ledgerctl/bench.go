package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/domain"
	pb "github.com/JoeShih716/go-branch-ledger/proto"
)

// benchCmd 壓力測試：建立多個客戶，每個帳戶存款直到每日上限
type benchCmd struct {
	clients     int
	concurrency int
}

func (*benchCmd) Name() string     { return "bench" }
func (*benchCmd) Synopsis() string { return "run a concurrent deposit load test" }
func (*benchCmd) Usage() string {
	return `ledgerctl bench [-clients n] [-c n]

  Creates n clients with one account each, then sends deposits
  concurrently until every account hits its daily limit.
`
}

func (c *benchCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.clients, "clients", 1000, "number of clients to create")
	f.IntVar(&c.concurrency, "c", 100, "concurrent requests")
}

func (c *benchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.clients <= 0 || c.concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -clients and -c must be positive")
		return subcommands.ExitUsageError
	}
	return execute(ctx, c.run)
}

func (c *benchCmd) run(s *session) error {
	ctx := context.Background()

	// 1. 建立客戶與帳戶，CPF 用 uuid 避免與既有資料衝突
	cpfs := make([]string, c.clients)
	for i := range cpfs {
		cpfs[i] = uuid.NewString()
		if _, err := s.call(ctx, pb.MethodCreateClient, map[string]any{"name": fmt.Sprintf("bench-%d", i), "cpf": cpfs[i]}); err != nil {
			return err
		}
		if _, err := s.call(ctx, pb.MethodOpenAccount, map[string]any{"cpf": cpfs[i]}); err != nil {
			return err
		}
	}

	// 2. 並發存款，多送一筆以觸發每日上限
	perAccount := domain.DailyTransactionLimit + 1
	total := len(cpfs) * perAccount
	var ok, rejected, failed atomic.Int64

	var wg sync.WaitGroup
	wg.Add(total)
	sem := make(chan struct{}, c.concurrency)
	startTime := time.Now()

	for i := 0; i < total; i++ {
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := s.call(ctx, pb.MethodDeposit, map[string]any{"cpf": cpfs[idx%len(cpfs)], "amount": "1"})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, errSoftFailure):
				rejected.Add(1)
			default:
				if failed.Add(1) == 1 {
					printErr(err)
				}
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(startTime)
	fmt.Printf("Completed %d requests in %v\n", total, elapsed)
	fmt.Printf("TPS: %.2f\n", float64(total)/elapsed.Seconds())
	fmt.Printf("accepted=%d rejected=%d failed=%d\n", ok.Load(), rejected.Load(), failed.Load())
	if failed.Load() > 0 {
		return fmt.Errorf("%d requests failed", failed.Load())
	}
	return nil
}
