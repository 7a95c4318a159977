package cluster

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb/v2"

	"vectord/internal/metrics"
	"vectord/internal/store"
)

const RaftTimeout = 10 * time.Second

// Node replicates mutations through raft before applying them to local
// storage. It satisfies the HTTP layer's Writer interface; reads stay on
// the local storage and never touch raft.
type Node struct {
	Raft *raft.Raft
	FSM  *FSM
}

// NewNode starts a raft instance over the given storage. Bootstrap should
// be true for the first node of a fresh cluster.
func NewNode(nodeID, raftDir, bindAddr string, s *store.Storage, bootstrap bool) (*Node, error) {
	fsm := NewFSM(s)

	if err := os.MkdirAll(raftDir, 0755); err != nil {
		return nil, err
	}

	config := raft.DefaultConfig()
	config.LocalID = raft.ServerID(nodeID)

	tcpAddr, err := net.ResolveTCPAddr("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	transport, err := raft.NewTCPTransport(bindAddr, tcpAddr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return nil, err
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(raftDir, "logs.dat"))
	if err != nil {
		return nil, err
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(raftDir, "stable.dat"))
	if err != nil {
		return nil, err
	}
	snapshotStore, err := raft.NewFileSnapshotStore(raftDir, 1, os.Stderr)
	if err != nil {
		return nil, err
	}

	r, err := raft.NewRaft(config, fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return nil, err
	}

	if bootstrap {
		r.BootstrapCluster(raft.Configuration{
			Servers: []raft.Server{
				{ID: config.LocalID, Address: transport.LocalAddr()},
			},
		})
	}

	return &Node{Raft: r, FSM: fsm}, nil
}

// Join adds a voter to the cluster. Must be called on the leader.
func (n *Node) Join(nodeID, addr string) error {
	if n.Raft.State() != raft.Leader {
		return fmt.Errorf("not the leader")
	}
	future := n.Raft.AddVoter(raft.ServerID(nodeID), raft.ServerAddress(addr), 0, RaftTimeout)
	return future.Error()
}

func (n *Node) IsLeader() bool {
	return n.Raft.State() == raft.Leader
}

// apply proposes a command and unwraps the FSM's response.
func (n *Node) apply(cmd Command) (interface{}, error) {
	if n.Raft.State() != raft.Leader {
		return nil, fmt.Errorf("not the leader")
	}
	metrics.RaftState.Set(float64(n.Raft.State()))

	b, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}

	future := n.Raft.Apply(b, RaftTimeout)
	if err := future.Error(); err != nil {
		return nil, err
	}

	resp := future.Response()
	if fsmErr, ok := resp.(error); ok {
		return nil, fsmErr
	}
	return resp, nil
}

func (n *Node) CreateCollection(cfg store.CollectionConfig) error {
	_, err := n.apply(Command{Op: opCreateCollection, Config: &cfg})
	return err
}

func (n *Node) DropCollection(name string) error {
	_, err := n.apply(Command{Op: opDropCollection, Collection: name})
	return err
}

func (n *Node) Upsert(collection string, recs []store.VectorRecord) ([]string, error) {
	resp, err := n.apply(Command{Op: opUpsertVectors, Collection: collection, Vectors: recs})
	if err != nil {
		return nil, err
	}
	if res, ok := resp.(upsertResult); ok {
		return res.IDs, nil
	}
	return nil, nil
}

func (n *Node) DeleteVector(collection, id string) error {
	_, err := n.apply(Command{Op: opDeleteVector, Collection: collection, ID: id})
	return err
}

// Shutdown stops raft and waits for it to drain.
func (n *Node) Shutdown() error {
	return n.Raft.Shutdown().Error()
}
