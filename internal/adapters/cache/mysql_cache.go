package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

// MySQLCache is a MySQL implementation of the DecisionCache interface
// for deployments sharing one cache across several proxy instances.
type MySQLCache struct {
	db          *sql.DB
	ttls        TTLTable
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMySQLCache creates a new MySQL decision cache
func NewMySQLCache(dsn string, ttls TTLTable, cleanupFreq time.Duration, logger *zap.Logger) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS decision_cache (
			cache_key VARCHAR(255) PRIMARY KEY,
			decision TEXT,
			html MEDIUMTEXT,
			recommendation VARCHAR(16),
			inserted_at TIMESTAMP,
			expires_at TIMESTAMP,
			INDEX idx_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:          db,
		ttls:        ttls,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go cache.startCleanupTask()
	}
	return cache, nil
}

// Get retrieves an unexpired cached decision.
func (c *MySQLCache) Get(ctx context.Context, key string) (*core.CachedDecision, bool) {
	var decisionJSON, html string
	var insertedAt, expiresAt time.Time

	err := c.db.QueryRowContext(ctx, `
		SELECT decision, html, inserted_at, expires_at
		FROM decision_cache
		WHERE cache_key = ? AND expires_at > NOW()
	`, key).Scan(&decisionJSON, &html, &insertedAt, &expiresAt)

	if err != nil {
		if err != sql.ErrNoRows {
			c.logger.Error("Failed to query decision cache", zap.Error(err), zap.String("key", key))
		}
		return nil, false
	}

	var decision core.Decision
	if err := json.Unmarshal([]byte(decisionJSON), &decision); err != nil {
		c.logger.Error("Failed to decode cached decision", zap.Error(err))
		return nil, false
	}

	return &core.CachedDecision{
		Decision:   &decision,
		HTML:       html,
		InsertedAt: insertedAt,
		ExpiresAt:  expiresAt,
	}, true
}

// Put stores a decision with its recommendation-class TTL.
func (c *MySQLCache) Put(ctx context.Context, key string, decision *core.Decision, html string) {
	decisionJSON, err := json.Marshal(decision)
	if err != nil {
		c.logger.Error("Failed to encode decision", zap.Error(err))
		return
	}

	now := time.Now()
	expiresAt := now.Add(c.ttls.TTLFor(decision.Recommendation))

	_, err = c.db.ExecContext(ctx, `
		REPLACE INTO decision_cache (cache_key, decision, html, recommendation, inserted_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, key, string(decisionJSON), html, string(decision.Recommendation), now, expiresAt)

	if err != nil {
		c.logger.Error("Failed to insert cache entry", zap.Error(err), zap.String("key", key))
	}
}

// Invalidate removes a cache entry
func (c *MySQLCache) Invalidate(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM decision_cache WHERE cache_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM decision_cache WHERE expires_at <= NOW()`)
	if err != nil {
		return fmt.Errorf("failed to clean up cache: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows > 0 {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rows))
	}
	return nil
}

// Stats reports entry counts by recommendation class.
func (c *MySQLCache) Stats(ctx context.Context) core.CacheStats {
	stats := core.CacheStats{ByClass: make(map[core.Recommendation]int)}

	rows, err := c.db.QueryContext(ctx, `
		SELECT recommendation, COUNT(*) FROM decision_cache GROUP BY recommendation
	`)
	if err != nil {
		c.logger.Error("Failed to query cache stats", zap.Error(err))
		return stats
	}
	defer rows.Close()

	for rows.Next() {
		var rec string
		var count int
		if err := rows.Scan(&rec, &count); err != nil {
			continue
		}
		stats.ByClass[core.Recommendation(rec)] = count
		stats.Size += count
	}
	return stats
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MySQLCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL connection", zap.Error(err))
	}
}
