package store

import "errors"

// Sentinel errors surfaced to the HTTP layer for status mapping.
var (
	ErrCollectionExists   = errors.New("store: collection already exists")
	ErrCollectionNotFound = errors.New("store: collection not found")
	ErrVectorNotFound     = errors.New("store: vector not found")
	ErrDimensionMismatch  = errors.New("store: vector dimension mismatch")
)

// VectorRecord is a stored vector with its external ID and metadata.
type VectorRecord struct {
	ID       string
	Values   []float32
	Metadata map[string]string
}

// SearchResult pairs a record with its score for one query. Score is
// metric-dependent but always ordered so that larger means more similar.
type SearchResult struct {
	ID     string
	Score  float32
	Record *VectorRecord
}

// neighbor is an index-internal match: a record ID with its raw distance.
type neighbor struct {
	id   string
	dist float32
}
