package mysql

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Client 封裝 GORM DB 實例
type Client struct {
	db *gorm.DB
}

// NewClient 建立並回傳一個新的 MySQL 客戶端實例 (GORM)，連線失敗時會重試
//
// 參數:
//
//	cfg: Config - MySQL 連線配置
//	log: 重試過程使用的 logger
//
// 回傳值:
//
//	*Client: 封裝後的 MySQL 客戶端
//	error: 若連線失敗則回傳錯誤
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	cfg = cfg.withDefaults()

	var db *gorm.DB
	var err error
	for i := 0; i < cfg.MaxRetries; i++ {
		db, err = gorm.Open(mysql.Open(cfg.DSN()), gormConfig(cfg.LogLevel))
		if err == nil {
			err = ping(db)
		}
		if err == nil {
			break
		}
		if i < cfg.MaxRetries-1 {
			log.Warn("mysql connect failed, retrying",
				zap.Int("attempt", i+1),
				zap.Int("max", cfg.MaxRetries),
				zap.Duration("interval", cfg.RetryInterval),
				zap.Error(err))
			time.Sleep(cfg.RetryInterval)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql after %d attempts: %w", cfg.MaxRetries, err)
	}

	// 取得底層 sql.DB 物件以設定連線池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.db: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &Client{db: db}, nil
}

// NewClientFromConn 以既有的 *sql.DB 建立客戶端 (測試時搭配 sqlmock)
func NewClientFromConn(conn *sql.DB, logLevel string) (*Client, error) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), gormConfig(logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm on existing conn: %w", err)
	}
	return &Client{db: db}, nil
}

// DB 回傳底層的 *gorm.DB 實例
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close 關閉資料庫連線
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ping(db *gorm.DB) error {
	rawDB, err := db.DB()
	if err != nil {
		return err
	}
	return rawDB.Ping()
}

func gormConfig(level string) *gorm.Config {
	return &gorm.Config{
		// 稽核寫入都是單筆 insert，不需要預設 transaction
		SkipDefaultTransaction: true,
		Logger:                 newLogger(level),
	}
}

// newLogger 根據配置建立 GORM Logger
func newLogger(level string) logger.Interface {
	var logLevel logger.LogLevel
	switch level {
	case "info":
		logLevel = logger.Info
	case "warn":
		logLevel = logger.Warn
	case "silent":
		logLevel = logger.Silent
	default:
		logLevel = logger.Error // 預設只記錄錯誤
	}
	return logger.Default.LogMode(logLevel)
}
