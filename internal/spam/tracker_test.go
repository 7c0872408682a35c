package spam

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeBlocklist struct {
	mu      sync.Mutex
	blocked map[string]bool
}

func newFakeBlocklist() *fakeBlocklist {
	return &fakeBlocklist{blocked: make(map[string]bool)}
}

func (f *fakeBlocklist) Contains(sellerName string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blocked[sellerName]
}

func (f *fakeBlocklist) Add(ctx context.Context, sellerName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.blocked[sellerName] {
		return false, nil
	}
	f.blocked[sellerName] = true
	return true, nil
}

func (f *fakeBlocklist) Remove(ctx context.Context, sellerName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.blocked[sellerName] {
		return false, nil
	}
	delete(f.blocked, sellerName)
	return true, nil
}

func (f *fakeBlocklist) All(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.blocked))
	for s := range f.blocked {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeBlocklist) Import(ctx context.Context, sellerNames []string) (int, int, error) {
	added, skipped := 0, 0
	for _, s := range sellerNames {
		ok, _ := f.Add(ctx, s)
		if ok {
			added++
		} else {
			skipped++
		}
	}
	return added, skipped, nil
}

func (f *fakeBlocklist) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.blocked)
}

func newTestTracker(bl *fakeBlocklist) *Tracker {
	return NewTracker(bl, 30*time.Second, 2, 10*time.Minute, zap.NewNop())
}

func TestRapidFirePromotesSeller(t *testing.T) {
	bl := newFakeBlocklist()
	tracker := newTestTracker(bl)
	t0 := time.Now()

	res := tracker.RecordAndCheck("FlipperX", "id-1", t0)
	assert.False(t, res.Spam, "first appearance is below threshold")

	res = tracker.RecordAndCheck("FlipperX", "id-2", t0.Add(25*time.Second))
	assert.True(t, res.Spam, "second appearance inside the window crosses the threshold")
	assert.True(t, res.NewlyBlocked)
	assert.True(t, bl.Contains("flipperx"))

	// Once blocked, everything from the seller is spam.
	res = tracker.RecordAndCheck("flipperx", "id-3", t0.Add(26*time.Second))
	assert.True(t, res.Spam)
	assert.False(t, res.NewlyBlocked)
}

func TestSlowSellerNotPromoted(t *testing.T) {
	bl := newFakeBlocklist()
	tracker := newTestTracker(bl)
	t0 := time.Now()

	res := tracker.RecordAndCheck("steady-seller", "id-1", t0)
	assert.False(t, res.Spam)

	// 31s later the first appearance has aged out of the window.
	res = tracker.RecordAndCheck("steady-seller", "id-2", t0.Add(31*time.Second))
	assert.False(t, res.Spam)
	assert.Equal(t, 0, bl.Count())
}

func TestSellerNameNormalization(t *testing.T) {
	bl := newFakeBlocklist()
	tracker := newTestTracker(bl)
	t0 := time.Now()

	tracker.RecordAndCheck("Gold Seller", "id-1", t0)
	res := tracker.RecordAndCheck("goldseller", "id-2", t0.Add(time.Second))
	assert.True(t, res.Spam, "case and spacing variants count as one seller")
}

func TestDuplicateIdentityWindow(t *testing.T) {
	bl := newFakeBlocklist()
	tracker := newTestTracker(bl)
	t0 := time.Now()

	res := tracker.RecordAndCheck("a", "listing-x", t0)
	assert.False(t, res.Duplicate)

	res = tracker.RecordAndCheck("b", "listing-x", t0.Add(5*time.Minute))
	assert.True(t, res.Duplicate)

	// Outside the dedup window the identity is fresh again.
	res = tracker.RecordAndCheck("c", "listing-x", t0.Add(11*time.Minute))
	assert.False(t, res.Duplicate)
}
