package store

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
)

// IndexKind selects the index backing a collection.
type IndexKind string

const (
	IndexHNSW IndexKind = "hnsw"
	IndexFlat IndexKind = "flat"
)

// defaultTopK is used when a search request leaves top_k unset.
const defaultTopK = 10

// CollectionConfig is fixed at creation time and persisted with snapshots.
type CollectionConfig struct {
	Name      string
	Dimension int
	Metric    DistanceMetric
	Index     IndexKind
	HNSW      HNSWParams
}

func (c CollectionConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("collection name is required")
	}
	if c.Dimension <= 0 {
		return fmt.Errorf("collection dimension must be positive, got %d", c.Dimension)
	}
	return nil
}

// vectorIndex is the contract both index kinds satisfy. Add is only called
// with an id not currently present; upserts remove first.
type vectorIndex interface {
	Add(id string, vector []float32)
	Remove(id string)
	Search(query []float32, k int) []neighbor
	Len() int
	MemoryUsage() uint64
}

// Collection owns the records of one named vector space plus the index that
// searches them. All mutations go through the WAL before touching memory.
type Collection struct {
	mu      sync.RWMutex
	cfg     CollectionConfig
	records map[string]*VectorRecord
	index   vectorIndex
	wal     *WAL // nil for purely in-memory collections
}

// NewCollection builds an empty collection. A nil wal disables durability,
// used by replay paths and benchmarks.
func NewCollection(cfg CollectionConfig, wal *WAL) (*Collection, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Metric == "" {
		cfg.Metric = MetricCosine
	}
	if cfg.Index == "" {
		cfg.Index = IndexHNSW
	}

	var idx vectorIndex
	switch cfg.Index {
	case IndexFlat:
		idx = newFlatIndex(cfg.Dimension, cfg.Metric)
	case IndexHNSW:
		idx = newHNSWIndex(cfg.Metric, cfg.HNSW)
	default:
		return nil, fmt.Errorf("unknown index kind %q", cfg.Index)
	}

	return &Collection{
		cfg:     cfg,
		records: make(map[string]*VectorRecord),
		index:   idx,
		wal:     wal,
	}, nil
}

// Config returns the immutable creation config.
func (c *Collection) Config() CollectionConfig {
	return c.cfg
}

// Upsert inserts a record, replacing any existing record with the same ID.
// An empty ID gets a generated one, which is returned.
func (c *Collection) Upsert(rec VectorRecord) (string, error) {
	if len(rec.Values) != c.cfg.Dimension {
		return "", fmt.Errorf("%w: collection %q expects %d, got %d",
			ErrDimensionMismatch, c.cfg.Name, c.cfg.Dimension, len(rec.Values))
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.wal != nil {
		if err := c.wal.AppendUpsert(rec); err != nil {
			return "", fmt.Errorf("wal append: %w", err)
		}
	}
	c.applyUpsert(rec)
	return rec.ID, nil
}

// applyUpsert mutates in-memory state only; callers hold the lock and have
// already logged the mutation.
func (c *Collection) applyUpsert(rec VectorRecord) {
	if _, exists := c.records[rec.ID]; exists {
		c.index.Remove(rec.ID)
	}
	stored := rec
	c.records[rec.ID] = &stored
	c.index.Add(rec.ID, stored.Values)
}

// Delete removes a record by ID.
func (c *Collection) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.records[id]; !exists {
		return ErrVectorNotFound
	}
	if c.wal != nil {
		if err := c.wal.AppendDelete(id); err != nil {
			return fmt.Errorf("wal append: %w", err)
		}
	}
	c.applyDelete(id)
	return nil
}

func (c *Collection) applyDelete(id string) {
	if _, exists := c.records[id]; !exists {
		return
	}
	delete(c.records, id)
	c.index.Remove(id)
}

// Get returns a copy of the record with the given ID.
func (c *Collection) Get(id string) (VectorRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.records[id]
	if !ok {
		return VectorRecord{}, ErrVectorNotFound
	}
	return *rec, nil
}

// Search returns up to k records closest to query. A non-empty filter keeps
// only records whose metadata matches every key exactly; the index is
// over-fetched threefold to leave room for filtered-out candidates.
func (c *Collection) Search(query []float32, k int, filter map[string]string) ([]SearchResult, error) {
	if len(query) != c.cfg.Dimension {
		return nil, fmt.Errorf("%w: collection %q expects %d, got %d",
			ErrDimensionMismatch, c.cfg.Name, c.cfg.Dimension, len(query))
	}
	if k <= 0 {
		k = defaultTopK
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	fetch := k
	if len(filter) > 0 {
		fetch = k * 3
	}

	matches := c.index.Search(query, fetch)
	results := make([]SearchResult, 0, k)
	for _, m := range matches {
		if len(results) >= k {
			break
		}
		rec, ok := c.records[m.id]
		if !ok {
			continue
		}
		if !matchesFilter(rec.Metadata, filter) {
			continue
		}
		results = append(results, SearchResult{
			ID:     m.id,
			Score:  c.cfg.Metric.Score(m.dist),
			Record: rec,
		})
	}
	return results, nil
}

func matchesFilter(meta, filter map[string]string) bool {
	for k, want := range filter {
		if meta[k] != want {
			return false
		}
	}
	return true
}

// BatchSearch fans queries out across workers and returns per-query results
// in input order.
func (c *Collection) BatchSearch(queries [][]float32, k int) ([][]SearchResult, error) {
	results := make([][]SearchResult, len(queries))
	if len(queries) == 0 {
		return results, nil
	}

	workers := runtime.NumCPU()
	if workers > len(queries) {
		workers = len(queries)
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	chunk := (len(queries) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(queries) {
			break
		}
		end := start + chunk
		if end > len(queries) {
			end = len(queries)
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				res, err := c.Search(queries[i], k, nil)
				if err != nil {
					errs[w] = err
					return
				}
				results[i] = res
			}
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// TrainIndex builds the IVF acceleration structure on flat collections.
// HNSW collections are already indexed and this is a no-op.
func (c *Collection) TrainIndex() {
	if f, ok := c.index.(*flatIndex); ok {
		f.TrainIVF()
	}
}

// Count returns the number of live records.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// MemoryUsage estimates bytes held by the index and record map.
func (c *Collection) MemoryUsage() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	usage := c.index.MemoryUsage()
	for id, rec := range c.records {
		usage += uint64(len(id)) + uint64(len(rec.Values))*4
		for k, v := range rec.Metadata {
			usage += uint64(len(k) + len(v))
		}
	}
	return usage
}

// attachWAL replays the log into the collection and takes ownership of it.
// Used at startup after a snapshot load.
func (c *Collection) attachWAL(w *WAL) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := w.Replay(
		func(rec VectorRecord) { c.applyUpsert(rec) },
		func(id string) { c.applyDelete(id) },
	)
	if err != nil {
		return err
	}
	c.wal = w
	return nil
}
