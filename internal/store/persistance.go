package store

import (
	"encoding/gob"
	"fmt"
	"os"
)

// collectionSnapshot is the gob-encoded on-disk form of a collection. The
// index is rebuilt from records on load rather than serialized.
type collectionSnapshot struct {
	Config  CollectionConfig
	Records []VectorRecord
}

// writeSnapshot encodes atomically: write to a temp file, then rename over
// the previous snapshot. Callers synchronize access to snap's contents.
func writeSnapshot(snap collectionSnapshot, path string) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	if err := gob.NewEncoder(file).Encode(snap); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Checkpoint snapshots the collection to path and truncates the WAL the
// snapshot now covers. Both happen under the write lock: an upsert cannot
// slip into the WAL between the record copy and the truncate, so nothing
// acknowledged is ever erased from durable state.
func (c *Collection) Checkpoint(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := collectionSnapshot{
		Config:  c.cfg,
		Records: make([]VectorRecord, 0, len(c.records)),
	}
	for _, rec := range c.records {
		snap.Records = append(snap.Records, *rec)
	}

	if err := writeSnapshot(snap, path); err != nil {
		return err
	}
	if c.wal != nil {
		return c.wal.Truncate()
	}
	return nil
}

// loadSnapshot rebuilds a collection from disk. The returned collection has
// no WAL attached yet; Storage wires one up and replays its tail.
func loadSnapshot(path string) (*Collection, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap collectionSnapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	c, err := NewCollection(snap.Config, nil)
	if err != nil {
		return nil, err
	}
	for _, rec := range snap.Records {
		c.applyUpsert(rec)
	}
	return c, nil
}
