// Package spam tracks rapid-fire seller activity and recently evaluated
// listings. Sellers that cross the activity threshold are promoted into
// the durable blocklist; promotion is one-way.
package spam

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/logandweckerle/ubuyfirst-proxy/internal/core"
)

const shardCount = 32

type shard struct {
	mu          sync.Mutex
	appearances map[string][]time.Time
	evaluated   map[string]time.Time
}

// Tracker implements core.SpamFilter with per-shard locking so sellers
// hashing to different shards never contend.
type Tracker struct {
	shards      [shardCount]*shard
	blocklist   core.BlocklistStore
	window      time.Duration
	threshold   int
	dedupWindow time.Duration
	logger      *zap.Logger
}

// NewTracker creates a new activity tracker backed by the given blocklist
func NewTracker(blocklist core.BlocklistStore, window time.Duration, threshold int, dedupWindow time.Duration, logger *zap.Logger) *Tracker {
	t := &Tracker{
		blocklist:   blocklist,
		window:      window,
		threshold:   threshold,
		dedupWindow: dedupWindow,
		logger:      logger,
	}
	for i := range t.shards {
		t.shards[i] = &shard{
			appearances: make(map[string][]time.Time),
			evaluated:   make(map[string]time.Time),
		}
	}
	return t
}

func (t *Tracker) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return t.shards[h.Sum32()%shardCount]
}

// RecordAndCheck records one event and reports spam/duplicate status.
// The appearance is recorded before the blocked check so promotion can
// fire on the triggering event itself.
func (t *Tracker) RecordAndCheck(sellerName, identity string, at time.Time) core.SpamResult {
	seller := normalize(sellerName)
	var res core.SpamResult

	if seller != "" {
		s := t.shardFor(seller)
		s.mu.Lock()
		recent := s.appearances[seller][:0]
		for _, ts := range s.appearances[seller] {
			if at.Sub(ts) < t.window {
				recent = append(recent, ts)
			}
		}
		recent = append(recent, at)
		s.appearances[seller] = recent
		crossed := len(recent) >= t.threshold
		s.mu.Unlock()

		if t.blocklist.Contains(seller) {
			res.Spam = true
		} else if crossed {
			if added, err := t.blocklist.Add(context.Background(), seller); err != nil {
				t.logger.Error("Failed to persist blocked seller", zap.Error(err), zap.String("seller", seller))
			} else if added {
				res.NewlyBlocked = true
				t.logger.Warn("Seller blocked for rapid-fire listings",
					zap.String("seller", seller),
					zap.Int("appearances", len(recent)),
					zap.Duration("window", t.window))
			}
			res.Spam = true
		}
	}

	if identity != "" {
		s := t.shardFor(identity)
		s.mu.Lock()
		if seen, ok := s.evaluated[identity]; ok && at.Sub(seen) < t.dedupWindow {
			res.Duplicate = true
		} else {
			s.evaluated[identity] = at
		}
		// Lazy sweep of this shard's expired identities.
		for k, ts := range s.evaluated {
			if at.Sub(ts) >= t.dedupWindow {
				delete(s.evaluated, k)
			}
		}
		s.mu.Unlock()
	}

	return res
}

func normalize(sellerName string) string {
	b := make([]byte, 0, len(sellerName))
	for i := 0; i < len(sellerName); i++ {
		c := sellerName[i]
		if c == ' ' || c == '\t' {
			continue
		}
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b = append(b, c)
	}
	return string(b)
}
