package config

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// IndexerConfig is one entry of the indexers list.
type IndexerConfig struct {
	// Name keys the head and snapshots of the indexer, so renaming it restarts from genesis.
	Name string `yaml:"name" json:"name" toml:"name"`

	// Type selects the registered factory and defaults to Name.
	Type string `yaml:"type" json:"type" toml:"type"`

	// BornAt overrides the first indexed block. 0 lets the indexer decide.
	BornAt uint32 `yaml:"born_at" json:"born_at" toml:"born_at"`

	// FlushThreshold is the number of inserted rows after which fast-forward commits a batch.
	FlushThreshold int `yaml:"flush_threshold" json:"flush_threshold" toml:"flush_threshold"`

	Contracts []string `yaml:"contracts,omitempty" json:"contracts,omitempty" toml:"contracts,omitempty"`

	// StrictOrder fails a block whose logs cannot be matched to its clause traces.
	StrictOrder bool `yaml:"strict_order" json:"strict_order" toml:"strict_order"`

	// SkipEmptyBlocks lets fast-forward jump over blocks without matching logs.
	SkipEmptyBlocks bool `yaml:"skip_empty_blocks" json:"skip_empty_blocks" toml:"skip_empty_blocks"`

	// GenesisAccounts are read from the node when the indexer starts from scratch.
	GenesisAccounts []string `yaml:"genesis_accounts,omitempty" json:"genesis_accounts,omitempty" toml:"genesis_accounts,omitempty"`
}

func (i *IndexerConfig) ApplyDefaults() {
	if i.Type == "" {
		i.Type = i.Name
	}
	if i.FlushThreshold == 0 {
		i.FlushThreshold = DefaultFlushThreshold
	}
}

func (i *IndexerConfig) Validate() error {
	if i.Name == "" {
		return errors.New("indexer name is required")
	}

	var errs []error
	if i.FlushThreshold < 0 {
		errs = append(errs, fmt.Errorf("indexer %s: flush_threshold must not be negative", i.Name))
	}
	for _, list := range [][]string{i.Contracts, i.GenesisAccounts} {
		for _, addr := range list {
			if !common.IsHexAddress(addr) {
				errs = append(errs, fmt.Errorf("indexer %s: %q is not an address", i.Name, addr))
			}
		}
	}

	return errors.Join(errs...)
}
