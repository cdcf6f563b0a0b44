package mysql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/audit"
	"github.com/JoeShih716/go-branch-ledger/pkg/mysql"
)

// sqlAuditEntry 對應資料庫的 audit_entries 表
type sqlAuditEntry struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	EntryID    string    `gorm:"column:entry_id;type:char(26);uniqueIndex"` // ULID
	Operation  string    `gorm:"type:varchar(32);index"`
	Args       string    `gorm:"type:json"`
	Outcome    string    `gorm:"type:varchar(16)"`
	Error      string    `gorm:"type:varchar(255)"`
	OccurredAt time.Time `gorm:"index"`
}

func (*sqlAuditEntry) TableName() string {
	return "audit_entries"
}

// AuditStore 把稽核紀錄寫入 MySQL
type AuditStore struct {
	client *mysql.Client
}

func NewAuditStore(client *mysql.Client) *AuditStore {
	return &AuditStore{
		client: client,
	}
}

// Migrate 建立或更新 audit_entries 表
func (s *AuditStore) Migrate(ctx context.Context) error {
	return s.client.DB().WithContext(ctx).AutoMigrate(&sqlAuditEntry{})
}

// Record 實作 audit.Sink，每筆紀錄一次 insert
func (s *AuditStore) Record(ctx context.Context, entry audit.Entry) error {
	args, err := json.Marshal(entry.Args)
	if err != nil {
		return fmt.Errorf("marshal audit args: %w", err)
	}
	row := sqlAuditEntry{
		EntryID:    entry.ID,
		Operation:  entry.Operation,
		Args:       string(args),
		Outcome:    entry.Outcome,
		Error:      entry.Error,
		OccurredAt: entry.Timestamp,
	}
	if err := s.client.DB().WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

var _ audit.Sink = (*AuditStore)(nil)
