package cluster

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/raft"

	"vectord/internal/store"
)

// Command is what we replicate across the network. Exactly one of the
// op-specific fields is meaningful per op.
type Command struct {
	Op         string                  `json:"op"`
	Collection string                  `json:"collection,omitempty"`
	Config     *store.CollectionConfig `json:"config,omitempty"`
	Vectors    []store.VectorRecord    `json:"vectors,omitempty"`
	ID         string                  `json:"id,omitempty"`
}

const (
	opCreateCollection = "create_collection"
	opDropCollection   = "drop_collection"
	opUpsertVectors    = "upsert"
	opDeleteVector     = "delete"
)

// upsertResult carries the applied IDs back through raft.Apply's response.
type upsertResult struct {
	IDs []string
}

type FSM struct {
	storage *store.Storage
}

func NewFSM(s *store.Storage) *FSM {
	return &FSM{storage: s}
}

func (f *FSM) Apply(log *raft.Log) interface{} {
	var cmd Command
	if err := json.Unmarshal(log.Data, &cmd); err != nil {
		return fmt.Errorf("failed to unmarshal command: %w", err)
	}

	switch cmd.Op {
	case opCreateCollection:
		if cmd.Config == nil {
			return fmt.Errorf("create_collection command missing config")
		}
		return f.storage.CreateCollection(*cmd.Config)
	case opDropCollection:
		return f.storage.DropCollection(cmd.Collection)
	case opUpsertVectors:
		ids, err := f.storage.Upsert(cmd.Collection, cmd.Vectors)
		if err != nil {
			return err
		}
		return upsertResult{IDs: ids}
	case opDeleteVector:
		return f.storage.DeleteVector(cmd.Collection, cmd.ID)
	default:
		return fmt.Errorf("unknown command: %s", cmd.Op)
	}
}

// Snapshot is a no-op; every node persists state through its own WAL and
// collection snapshots, so the raft log alone is enough to catch up.
func (f *FSM) Snapshot() (raft.FSMSnapshot, error) {
	return &NoOpSnapshot{}, nil
}

func (f *FSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()
	return nil
}

type NoOpSnapshot struct{}

func (s *NoOpSnapshot) Persist(sink raft.SnapshotSink) error { return sink.Close() }

func (s *NoOpSnapshot) Release() {}
