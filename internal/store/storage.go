package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	snapshotExt = ".snap"
	walExt      = ".wal"
)

// CollectionStats is the stats surface exposed per collection.
type CollectionStats struct {
	Name             string
	VectorCount      int
	Dimension        int
	Metric           DistanceMetric
	Index            IndexKind
	MemoryUsageBytes uint64
}

// Storage is the registry of collections under a single data directory.
// Creating a collection writes its empty snapshot immediately so the config
// survives a crash before the first save.
type Storage struct {
	mu          sync.RWMutex
	dir         string
	collections map[string]*Collection
}

// Open loads every collection found in dir, replaying WAL tails on top of
// the last snapshots.
func Open(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Storage{
		dir:         dir,
		collections: make(map[string]*Collection),
	}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) snapshotPath(name string) string {
	return filepath.Join(s.dir, name+snapshotExt)
}

func (s *Storage) walPath(name string) string {
	return filepath.Join(s.dir, name+walExt)
}

func (s *Storage) loadAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), snapshotExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), snapshotExt)

		col, err := loadSnapshot(s.snapshotPath(name))
		if err != nil {
			return fmt.Errorf("load collection %q: %w", name, err)
		}

		wal, err := OpenWAL(s.walPath(name))
		if err != nil {
			return fmt.Errorf("open wal for %q: %w", name, err)
		}
		if err := col.attachWAL(wal); err != nil {
			wal.Close()
			return fmt.Errorf("replay wal for %q: %w", name, err)
		}

		s.collections[name] = col
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if strings.ContainsAny(name, "/\\") || name != filepath.Base(name) {
		return fmt.Errorf("invalid collection name %q", name)
	}
	return nil
}

// CreateCollection registers a new collection and persists its config.
func (s *Storage) CreateCollection(cfg CollectionConfig) error {
	if err := validateName(cfg.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[cfg.Name]; exists {
		return fmt.Errorf("%w: %s", ErrCollectionExists, cfg.Name)
	}

	wal, err := OpenWAL(s.walPath(cfg.Name))
	if err != nil {
		return err
	}

	col, err := NewCollection(cfg, wal)
	if err != nil {
		wal.Close()
		os.Remove(s.walPath(cfg.Name))
		return err
	}

	if err := col.Checkpoint(s.snapshotPath(cfg.Name)); err != nil {
		wal.Close()
		os.Remove(s.walPath(cfg.Name))
		return err
	}

	s.collections[cfg.Name] = col
	return nil
}

// DropCollection removes a collection and its files.
func (s *Storage) DropCollection(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, exists := s.collections[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}

	if col.wal != nil {
		col.wal.Close()
	}
	delete(s.collections, name)

	os.Remove(s.snapshotPath(name))
	os.Remove(s.walPath(name))
	return nil
}

// Collection returns the named collection.
func (s *Storage) Collection(name string) (*Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, exists := s.collections[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return col, nil
}

// Exists reports whether the named collection is registered.
func (s *Storage) Exists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok
}

// List returns all collection names in sorted order.
func (s *Storage) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns the stats of one collection.
func (s *Storage) Stats(name string) (CollectionStats, error) {
	col, err := s.Collection(name)
	if err != nil {
		return CollectionStats{}, err
	}

	cfg := col.Config()
	return CollectionStats{
		Name:             cfg.Name,
		VectorCount:      col.Count(),
		Dimension:        cfg.Dimension,
		Metric:           cfg.Metric,
		Index:            cfg.Index,
		MemoryUsageBytes: col.MemoryUsage(),
	}, nil
}

// Upsert writes records into the named collection and returns the stored IDs.
func (s *Storage) Upsert(collection string, recs []VectorRecord) ([]string, error) {
	col, err := s.Collection(collection)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		id, err := col.Upsert(rec)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DeleteVector removes one record from the named collection.
func (s *Storage) DeleteVector(collection, id string) error {
	col, err := s.Collection(collection)
	if err != nil {
		return err
	}
	return col.Delete(id)
}

// SearchMany fans one query out across several collections concurrently and
// merges the results by score. A non-empty filter applies to every
// collection searched. Collections that are missing or whose dimension does
// not match the query are skipped. The collection name of each hit is
// reported alongside the result.
func (s *Storage) SearchMany(names []string, query []float32, k int, filter map[string]string) []MultiResult {
	if k <= 0 {
		k = defaultTopK
	}

	var wg sync.WaitGroup
	resultCh := make(chan []MultiResult, len(names))

	for _, name := range names {
		col, err := s.Collection(name)
		if err != nil {
			continue
		}
		wg.Add(1)
		go func(name string, col *Collection) {
			defer wg.Done()
			res, err := col.Search(query, k, filter)
			if err != nil {
				return
			}
			out := make([]MultiResult, len(res))
			for i, r := range res {
				out[i] = MultiResult{Collection: name, SearchResult: r}
			}
			resultCh <- out
		}(name, col)
	}

	wg.Wait()
	close(resultCh)

	merged := make([]MultiResult, 0, k*len(names))
	for part := range resultCh {
		merged = append(merged, part...)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > k {
		merged = merged[:k]
	}
	return merged
}

// MultiResult is a search hit annotated with its source collection.
type MultiResult struct {
	Collection string
	SearchResult
}

// SaveAll checkpoints every collection: snapshot plus WAL truncate as one
// atomic step per collection.
func (s *Storage) SaveAll() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for name, col := range s.collections {
		if err := col.Checkpoint(s.snapshotPath(name)); err != nil {
			return fmt.Errorf("save collection %q: %w", name, err)
		}
	}
	return nil
}

// Close flushes WALs. Snapshots are the caller's call via SaveAll.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, col := range s.collections {
		if col.wal != nil {
			col.wal.Close()
		}
	}
	return nil
}
