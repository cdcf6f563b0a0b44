// Package config 載入 cmd/core 的 YAML 設定檔
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-branch-ledger/internal/app/core/adapter/out/kafka"
	"github.com/JoeShih716/go-branch-ledger/pkg/mysql"
)

// DefaultPath 預設設定檔路徑
const DefaultPath = "config/config.yaml"

type Config struct {
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`

	Ledger LedgerConfig `yaml:"ledger"`
	Audit  AuditConfig  `yaml:"audit"`
}

// LedgerConfig 分行設定
type LedgerConfig struct {
	Branch string `yaml:"branch"`
	// 支票帳戶預設提款上限，字串以避免浮點誤差
	DefaultCeiling string `yaml:"default_ceiling"`
}

// Ceiling 解析預設提款上限
func (l LedgerConfig) Ceiling() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(l.DefaultCeiling)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid ledger.default_ceiling %q: %w", l.DefaultCeiling, err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("ledger.default_ceiling must be positive, got %s", d)
	}
	return d, nil
}

// AuditConfig 稽核輸出目的地，log 與 metrics 永遠啟用
type AuditConfig struct {
	// MySQL 與 Kafka 輸出前的緩衝區大小
	QueueSize int `yaml:"queue_size"`

	File  FileSinkConfig  `yaml:"file"`
	MySQL MySQLSinkConfig `yaml:"mysql"`
	Kafka KafkaSinkConfig `yaml:"kafka"`
}

type FileSinkConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type MySQLSinkConfig struct {
	Enabled bool         `yaml:"enabled"`
	MySQL   mysql.Config `yaml:"connection"`
}

type KafkaSinkConfig struct {
	Enabled bool         `yaml:"enabled"`
	Kafka   kafka.Config `yaml:"publisher"`
}

// Load 讀取並解析設定檔，缺少的欄位補上預設值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 內容
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.GRPCAddr == "" {
		c.GRPCAddr = ":50051"
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9090"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Ledger.Branch == "" {
		c.Ledger.Branch = "0001"
	}
	if c.Ledger.DefaultCeiling == "" {
		c.Ledger.DefaultCeiling = "500"
	}
	if c.Audit.QueueSize <= 0 {
		c.Audit.QueueSize = 1024
	}
	if c.Audit.File.Path == "" {
		c.Audit.File.Path = "audit.log"
	}
	if c.Audit.Kafka.Kafka.Topic == "" {
		c.Audit.Kafka.Kafka.Topic = "ledger.audit"
	}
}

func (c *Config) validate() error {
	if _, err := c.Ledger.Ceiling(); err != nil {
		return err
	}
	if c.Audit.Kafka.Enabled && len(c.Audit.Kafka.Kafka.Brokers) == 0 {
		return fmt.Errorf("audit.kafka.publisher.brokers is required when kafka is enabled")
	}
	if c.Audit.MySQL.Enabled && c.Audit.MySQL.MySQL.Host == "" {
		return fmt.Errorf("audit.mysql.connection.host is required when mysql is enabled")
	}
	return nil
}
