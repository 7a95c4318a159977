package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is populated from VECTOR_* environment variables.
type Config struct {
	HTTPPort int    `envconfig:"HTTP_PORT" default:"50052"`
	DataDir  string `envconfig:"DATA_DIR" default:"./data"`

	// How often collections are snapshotted to disk. Zero disables the
	// background saver; shutdown still saves.
	SnapshotInterval time.Duration `envconfig:"SNAPSHOT_INTERVAL" default:"5m"`

	RaftEnabled   bool   `envconfig:"RAFT_ENABLED" default:"false"`
	RaftPort      int    `envconfig:"RAFT_PORT" default:"19000"`
	RaftDir       string `envconfig:"RAFT_DIR" default:"./data/raft"`
	NodeID        string `envconfig:"NODE_ID" default:"node-1"`
	RaftBootstrap bool   `envconfig:"RAFT_BOOTSTRAP" default:"true"`
}

// Load reads the config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("vector", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
