package file

import (
	"context"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/audit"
	"github.com/JoeShih716/go-branch-ledger/pkg/wal"
)

// AuditLog 把稽核紀錄逐行追加到檔案
type AuditLog struct {
	wal *wal.WAL
}

// NewAuditLog 建立檔案稽核寫入端
//
// 參數:
//
//	w: 已開啟的 WAL (由呼叫端負責關閉)
func NewAuditLog(w *wal.WAL) *AuditLog {
	return &AuditLog{wal: w}
}

// Record 實作 audit.Sink
func (l *AuditLog) Record(_ context.Context, entry audit.Entry) error {
	return l.wal.Append(entry)
}

var _ audit.Sink = (*AuditLog)(nil)
