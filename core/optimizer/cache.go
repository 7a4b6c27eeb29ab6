package optimizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"graphd/core/ast"
	"graphd/core/plan"
)

// Options are the optimizer settings that affect the shape of the
// produced plan, folded into the cache key alongside the statement
// itself — grounded on planner/cache.go's PlannerOptions fields
// (EnableDynamicReordering/EnablePredicatePushdown/...) hashed into its
// cache key.
type Options struct {
	EnablePushdown      bool
	EnableDecorrelation bool
}

// ComputeKey hashes a statement plus the optimizer options that would be
// applied to it into a stable cache key, grounded on
// computeKeyWithOptions's sha256-over-Fprintf(%v) approach: each clause
// stringifies deterministically via Go's default struct formatting, which
// is exactly what the teacher's "%v;" per-clause loop relies on for Find/
// Where/In/OrderBy.
func ComputeKey(stmt ast.Statement, opts Options) string {
	h := sha256.New()
	fmt.Fprintf(h, "CLAUSES:")
	for _, c := range stmt.Clauses {
		fmt.Fprintf(h, "%T:%v;", c, c)
	}
	fmt.Fprintf(h, "OPTIONS:pushdown=%v,decorrelate=%v;", opts.EnablePushdown, opts.EnableDecorrelation)
	return hex.EncodeToString(h.Sum(nil))
}

// CachedPlan is one cache entry: the arena owning the plan's nodes and
// the ref of its root, stored together since NodeRefs are only valid
// within the arena that minted them.
type CachedPlan struct {
	Arena *plan.Arena
	Root  plan.NodeRef
}

// PlanCache caches optimized plans keyed by ComputeKey, avoiding
// re-validating and re-optimizing a statement seen before. Grounded on
// planner/cache.go's PlanCache, backed by ristretto (the teacher's own
// indirect dependency, promoted to direct here) instead of a hand-rolled
// mutex-guarded map with manual LRU/TTL eviction — ristretto's own
// SetWithTTL/admission policy replaces evictExpired/evictOldest, and its
// Metrics replace the teacher's atomic hit/miss counters.
type PlanCache struct {
	rc  *ristretto.Cache
	ttl time.Duration
}

// NewPlanCache builds a cache sized by maxCost (roughly, max cached plans
// at cost 1 each) with entries expiring after ttl. maxCost<=0 defaults to
// 1000 and ttl<=0 defaults to 5 minutes, matching planner/cache.go's
// defaults.
func NewPlanCache(maxCost int64, ttl time.Duration) (*PlanCache, error) {
	if maxCost <= 0 {
		maxCost = 1000
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("optimizer: new plan cache: %w", err)
	}
	return &PlanCache{rc: rc, ttl: ttl}, nil
}

// Get returns the cached plan for key, if present and not evicted.
func (c *PlanCache) Get(key string) (*CachedPlan, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.rc.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*CachedPlan), true
}

// Set stores a plan under key, to expire after the cache's configured
// TTL. The call is asynchronous in ristretto's admission pipeline; Wait
// makes tests observe it synchronously.
func (c *PlanCache) Set(key string, cp *CachedPlan) {
	if c == nil || cp == nil {
		return
	}
	c.rc.SetWithTTL(key, cp, 1, c.ttl)
}

// Wait blocks until all pending Set calls have been applied, for tests
// that immediately Get after Set.
func (c *PlanCache) Wait() {
	if c != nil {
		c.rc.Wait()
	}
}

// Stats returns the hit and miss counts (no size count), backed
// by ristretto.Metrics instead of hand-kept atomic counters.
func (c *PlanCache) Stats() (hits, misses uint64) {
	if c == nil || c.rc.Metrics == nil {
		return 0, 0
	}
	return c.rc.Metrics.Hits(), c.rc.Metrics.Misses()
}

// Clear evicts every cached plan.
func (c *PlanCache) Clear() {
	if c != nil {
		c.rc.Clear()
	}
}
