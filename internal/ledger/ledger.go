// Package ledger persists completed refund adjudications as a single
// JSON array on disk. The whole file is rewritten per append
// (read-modify-write), so appends are serialized behind a mutex to
// avoid lost entries under concurrent finalizations.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/orderdesk/refundflow/internal/logging"
	"github.com/orderdesk/refundflow/pkg/domain"
)

// FileLedger is the durable refund ledger.
type FileLedger struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// Option configures the ledger.
type Option func(*FileLedger)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *FileLedger) {
		l.logger = logger
	}
}

// New creates a file-backed ledger at the given path. The file is
// created lazily on first append.
func New(path string, opts ...Option) *FileLedger {
	l := &FileLedger{
		path:   path,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append adds one entry and rewrites the ledger file atomically.
func (l *FileLedger) Append(ctx context.Context, entry domain.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.readLocked()
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure ledger directory: %w", err)
	}

	// Temp file in the same directory so the rename stays on one
	// filesystem, then fsync before swapping it in.
	tmpFile, err := os.CreateTemp(dir, "tmp-ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync ledger: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp ledger file: %w", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}
	return nil
}

// Entries returns all recorded adjudications.
func (l *FileLedger) Entries(ctx context.Context) ([]domain.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readLocked(), nil
}

// readLocked loads the current entries. A missing or corrupt file reads
// as an empty ledger rather than an error.
func (l *FileLedger) readLocked() []domain.LedgerEntry {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("ledger unreadable, treating as empty", "path", l.path, "err", err)
		}
		return []domain.LedgerEntry{}
	}

	var entries []domain.LedgerEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		l.logger.Warn("ledger corrupt, treating as empty", "path", l.path, "err", err)
		return []domain.LedgerEntry{}
	}
	return entries
}
