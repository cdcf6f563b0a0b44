package audit

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Multi 將一筆紀錄轉送給多個 Sink
// 每個 Sink 都會被呼叫，錯誤會合併回傳
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, entry Entry) error {
		var errs []error
		for _, s := range sinks {
			if err := s.Record(ctx, entry); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}

// LogSink 以結構化 log 輸出每筆紀錄
func LogSink(logger *zap.Logger) Sink {
	return SinkFunc(func(_ context.Context, entry Entry) error {
		logger.Info("audit",
			zap.String("id", entry.ID),
			zap.Time("ts", entry.Timestamp),
			zap.String("operation", entry.Operation),
			zap.Any("args", map[string]any(entry.Args)),
			zap.String("outcome", entry.Outcome),
			zap.String("error", entry.Error),
		)
		return nil
	})
}
