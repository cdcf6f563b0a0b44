package wal

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"
)

// 常用的權限常量
const (
	// rw-r--r-- (擁有者讀寫，其他人唯讀)
	FileModeShared fs.FileMode = 0644

	// rw------- (只有擁有者可讀寫)
	FileModePrivate fs.FileMode = 0600
)

// ErrClosed 對已關閉的 WAL 操作
var ErrClosed = errors.New("wal: closed")

// WAL 以 JSON Lines 格式追加寫入的檔案，每行一筆資料
type WAL struct {
	file   *os.File
	mu     sync.Mutex
	noSync bool
	closed bool
}

// Option 定義了 WAL 的配置選項函數
type Option func(*WAL)

// WithoutSync 每次寫入後不呼叫 fsync (測試或可容忍遺失時使用)
func WithoutSync() Option {
	return func(w *WAL) {
		w.noSync = true
	}
}

// Open 開啟或建立一個 WAL 檔案
// O_RDWR 讀寫模式
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
func Open(path string, opts ...Option) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileModeShared)
	if err != nil {
		return nil, err
	}
	w := &WAL{file: file}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Append 寫入一筆資料並刷入硬碟
func (w *WAL) Append(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	// 單次 Write 寫入整行，避免半行資料
	if _, err := w.file.Write(data); err != nil {
		return err
	}
	if w.noSync {
		return nil
	}
	return w.file.Sync()
}

// Sync 強制刷入硬碟
func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	return w.file.Sync()
}

// Close 關閉檔案，重複呼叫不會出錯
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// ReadAll 從頭讀取所有資料
// callback 每次收到一行的原始 JSON，避免一次將所有資料載入記憶體
func (w *WAL) ReadAll(callback func(raw json.RawMessage) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(w.file)
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := callback(raw); err != nil {
			return err
		}
	}
}
