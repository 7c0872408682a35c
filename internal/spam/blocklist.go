package spam

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Blocklist is the durable set of excluded sellers. Membership checks
// hit an in-memory mirror; writes go through to SQLite so the set
// survives restarts.
type Blocklist struct {
	db      *sql.DB
	mu      sync.RWMutex
	sellers map[string]struct{}
	logger  *zap.Logger
}

// NewBlocklist opens (or creates) the blocklist database and loads the
// current set into memory.
func NewBlocklist(dbPath string, logger *zap.Logger) (*Blocklist, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open blocklist database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS blocked_sellers (
			seller_name TEXT PRIMARY KEY,
			blocked_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create blocked_sellers table: %w", err)
	}

	b := &Blocklist{
		db:      db,
		sellers: make(map[string]struct{}),
		logger:  logger,
	}
	if err := b.load(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Loaded blocked sellers", zap.Int("count", len(b.sellers)))
	return b, nil
}

func (b *Blocklist) load() error {
	rows, err := b.db.Query(`SELECT seller_name FROM blocked_sellers`)
	if err != nil {
		return fmt.Errorf("failed to load blocked sellers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		b.sellers[name] = struct{}{}
	}
	return rows.Err()
}

// Contains reports whether the seller is blocked.
func (b *Blocklist) Contains(sellerName string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.sellers[normalize(sellerName)]
	return ok
}

// Add blocks a seller. Returns false if already blocked.
func (b *Blocklist) Add(ctx context.Context, sellerName string) (bool, error) {
	key := normalize(sellerName)
	if key == "" {
		return false, nil
	}

	b.mu.Lock()
	if _, ok := b.sellers[key]; ok {
		b.mu.Unlock()
		return false, nil
	}
	b.sellers[key] = struct{}{}
	b.mu.Unlock()

	_, err := b.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO blocked_sellers (seller_name, blocked_at)
		VALUES (?, ?)
	`, key, time.Now().Format(time.RFC3339))
	if err != nil {
		return true, fmt.Errorf("failed to persist blocked seller: %w", err)
	}
	return true, nil
}

// Remove unblocks a seller. Returns false if the seller was not blocked.
func (b *Blocklist) Remove(ctx context.Context, sellerName string) (bool, error) {
	key := normalize(sellerName)

	b.mu.Lock()
	if _, ok := b.sellers[key]; !ok {
		b.mu.Unlock()
		return false, nil
	}
	delete(b.sellers, key)
	b.mu.Unlock()

	_, err := b.db.ExecContext(ctx, `DELETE FROM blocked_sellers WHERE seller_name = ?`, key)
	if err != nil {
		return true, fmt.Errorf("failed to remove blocked seller: %w", err)
	}
	b.logger.Info("Removed seller from blocklist", zap.String("seller", key))
	return true, nil
}

// All returns the blocked sellers in sorted order, for export.
func (b *Blocklist) All(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	out := make([]string, 0, len(b.sellers))
	for name := range b.sellers {
		out = append(out, name)
	}
	b.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

// Import bulk-adds sellers, skipping ones already present.
func (b *Blocklist) Import(ctx context.Context, sellerNames []string) (int, int, error) {
	added, skipped := 0, 0
	for _, name := range sellerNames {
		ok, err := b.Add(ctx, name)
		if err != nil {
			return added, skipped, err
		}
		if ok {
			added++
		} else {
			skipped++
		}
	}
	b.logger.Info("Imported blocked sellers", zap.Int("added", added), zap.Int("skipped", skipped))
	return added, skipped, nil
}

// Count returns the number of blocked sellers.
func (b *Blocklist) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sellers)
}

// Close closes the underlying database.
func (b *Blocklist) Close() error {
	return b.db.Close()
}
