// Package storageclient is the partitioned storage façade the executor's
// GetNeighbors/GetVertices/GetEdges/IndexScan/mutation operators call
// through, per spec.md §4.6/§6. Grounded on the teacher's
// datalog/storage/store.go (Store/Iterator/StoreTx interface shape) and
// datalog/storage/matcher.go's per-partition fan-out pattern, generalized
// from a single-node KV interface to a partitioned RPC-shaped one: every
// operation takes a set of target partitions, fans requests out in
// parallel, and returns one PartResponse per partition rather than one
// combined result, so a caller can apply spec.md §4.6's partial-success
// policy itself.
package storageclient

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/go-multierror"

	"graphd/core"
	"graphd/core/catalog"
	"graphd/core/expr"
)

// PartResponse is one partition's answer to a fanned-out request, per
// spec.md §6's PartResponse shape. LeaderHint is set when the partition's
// leader changed since the catalog was last consulted, letting the
// caller refresh routing before retrying.
type PartResponse struct {
	Part       int32
	Status     core.Status
	Dataset    *core.DataSet
	LeaderHint *catalog.PartLeader
}

// NeighborsRequest describes a GetNeighbors fan-out.
type NeighborsRequest struct {
	VertexIDs   []core.VertexID
	EdgeTypes   []int32
	Outbound    bool
	Inbound     bool
	VertexProps []string
	EdgeProps   []string
	Filter      expr.Expression
	Limit       int64
}

// VerticesRequest describes a GetVertices fan-out.
type VerticesRequest struct {
	VertexIDs []core.VertexID
	TagProps  map[string][]string
}

// EdgeKey identifies one edge by its composite key.
type EdgeKey struct {
	Src  core.VertexID
	Dst  core.VertexID
	Type int32
	Rank int64
}

// EdgesRequest describes a GetEdges fan-out.
type EdgesRequest struct {
	EdgeKeys  []EdgeKey
	EdgeProps []string
}

// MutationItem is one vertex/edge/tag write, the façade's own copy of
// plan.MutationItem so this package has no dependency on core/plan (the
// operator library translates between the two at the call site).
type MutationItem struct {
	VertexID core.VertexID
	Src, Dst core.VertexID
	Rank     int64
	Props    map[string]core.Value
}

// IndexRange describes one scan range over an index, the façade's own
// copy of plan.IndexRange for the same reason as MutationItem.
type IndexRange struct {
	Column    string
	Low, High core.Value
	LowIncl   bool
	HighIncl  bool
}

// LeaderChangedError is returned by a Backend when the partition it was
// asked to serve has a new leader, carrying the replacement so the Client
// can refresh routing before its next retry.
type LeaderChangedError struct {
	Part      int32
	NewLeader catalog.PartLeader
}

func (e *LeaderChangedError) Error() string {
	return core.NewStatus(core.LEADER_CHANGED, "partition %d leader changed to %s:%d", e.Part, e.NewLeader.Host, e.NewLeader.Port).Error()
}

// Backend is the per-partition RPC boundary a Client fans requests out
// to. core/storageclient/refstore ships a reference, in-process
// implementation backed by badger; a production build would implement
// this over a real RPC transport.
type Backend interface {
	GetNeighbors(ctx context.Context, space, part int32, req NeighborsRequest) (*core.DataSet, error)
	GetVertices(ctx context.Context, space, part int32, req VerticesRequest) (*core.DataSet, error)
	GetEdges(ctx context.Context, space, part int32, req EdgesRequest) (*core.DataSet, error)
	AddVertices(ctx context.Context, space, part int32, tag string, items []MutationItem, overwrite bool) error
	AddEdges(ctx context.Context, space, part int32, edgeType string, items []MutationItem, overwrite bool) error
	DeleteVertices(ctx context.Context, space, part int32, ids []core.VertexID) error
	DeleteTags(ctx context.Context, space, part int32, ids []core.VertexID, tag string) error
	DeleteEdges(ctx context.Context, space, part int32, keys []EdgeKey) error
	LookupIndex(ctx context.Context, space, part int32, schemaID, indexID int32, ranges []IndexRange, returnCols []string) (*core.DataSet, error)
}

// RetryPolicy bounds the per-part retry loop (spec.md §4.6: "retries...
// up to a configurable cap").
type RetryPolicy struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy mirrors the teacher's own conservative defaults for
// retry-bounded network calls.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxTries: 4, InitialInterval: 20 * time.Millisecond, MaxInterval: 500 * time.Millisecond}
}

// Client is the partitioned storage façade: it computes partition
// routing, fans requests out across partitions concurrently, retries
// per-part failures, and aggregates the results.
type Client struct {
	Backend Backend
	Catalog catalog.Catalog
	Retry   RetryPolicy

	mu      sync.Mutex
	leaders map[int32]map[int32]catalog.PartLeader // space -> part -> leader
}

// NewClient builds a façade over backend, consulting cat for partition
// counts and leader routing. A zero RetryPolicy is replaced with
// DefaultRetryPolicy.
func NewClient(backend Backend, cat catalog.Catalog, retry RetryPolicy) *Client {
	if retry.MaxTries == 0 {
		retry = DefaultRetryPolicy()
	}
	return &Client{Backend: backend, Catalog: cat, Retry: retry, leaders: make(map[int32]map[int32]catalog.PartLeader)}
}

// PartitionOf computes a vertex id's partition via a stable hash modulo
// partsCount, per spec.md §4.6. Grounded on the xxhash-based partition
// routing the rest of the example pack reaches for wherever a stable
// shard key is needed.
func PartitionOf(id core.VertexID, partsCount int32) int32 {
	if partsCount <= 0 {
		return 0
	}
	return int32(xxhash.Sum64(id.Bytes())%uint64(partsCount)) + 1
}

// partitionVertexIDs groups ids by the partition they route to.
func partitionVertexIDs(ids []core.VertexID, partsCount int32) map[int32][]core.VertexID {
	out := make(map[int32][]core.VertexID)
	for _, id := range ids {
		p := PartitionOf(id, partsCount)
		out[p] = append(out[p], id)
	}
	return out
}

func (c *Client) noteLeader(space int32, l catalog.PartLeader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.leaders[space]
	if !ok {
		m = make(map[int32]catalog.PartLeader)
		c.leaders[space] = m
	}
	m[l.PartID] = l
}

// withRetry runs op against part, retrying on retryable core.Status
// failures and on LeaderChangedError (which it records before retrying)
// up to c.Retry.MaxTries, per spec.md §4.6.
func withRetry(ctx context.Context, c *Client, space, part int32, op func() error) core.Status {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.Retry.InitialInterval
	bo.MaxInterval = c.Retry.MaxInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if err == nil {
			return struct{}{}, nil
		}
		if lc, ok := err.(*LeaderChangedError); ok {
			c.noteLeader(space, lc.NewLeader)
			return struct{}{}, err
		}
		st := core.StatusFromError(err)
		if !st.Code.Retryable() {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(c.Retry.MaxTries))

	if err == nil {
		return core.OK()
	}
	if lc, ok := err.(*LeaderChangedError); ok {
		return core.NewStatus(core.LEADER_CHANGED, "partition %d: leader changed, exhausted retries", lc.Part)
	}
	return core.StatusFromError(err)
}

// fanOut runs fn concurrently over parts, collecting one PartResponse per
// partition in input order. Partition failures never cancel siblings:
// spec.md §4.6 requires that "any response enables downstream" even when
// others fail, so this never short-circuits the group the way an
// errgroup.WithContext would on first error.
func fanOut(parts []int32, fn func(part int32) PartResponse) []PartResponse {
	out := make([]PartResponse, len(parts))
	var wg sync.WaitGroup
	for i, p := range parts {
		i, p := i, p
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i] = fn(p)
		}()
	}
	wg.Wait()
	return out
}

// AggregateStatus reduces a set of PartResponses to spec.md §4.6's
// partial-success policy: SUCCEEDED only if every part succeeded,
// PARTIAL_SUCCESS if at least one did, and the aggregated multierror
// otherwise.
func AggregateStatus(parts []PartResponse) (core.Status, error) {
	okCount := 0
	var merr *multierror.Error
	for _, p := range parts {
		if p.Status.IsOK() {
			okCount++
		} else {
			merr = multierror.Append(merr, p.Status)
		}
	}
	switch {
	case okCount == len(parts):
		return core.OK(), nil
	case okCount > 0:
		return core.NewStatus(core.PARTIAL_SUCCESS, "%d/%d partitions succeeded", okCount, len(parts)), merr.ErrorOrNil()
	default:
		return core.NewStatus(core.EXECUTION_ERROR, "all %d partitions failed", len(parts)), merr.ErrorOrNil()
	}
}

func partsOf(byPart map[int32][]core.VertexID) []int32 {
	parts := make([]int32, 0, len(byPart))
	for p := range byPart {
		parts = append(parts, p)
	}
	return parts
}
