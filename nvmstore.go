// Package nvmstore wires the persistent state store together: a partition
// table over a raw memory device, and a coordinator flushing the radio
// stack's context groups to their partitions.
package nvmstore

import (
	"github.com/pkg/errors"

	"github.com/tinyfirm/nvmstore/flash"
	"github.com/tinyfirm/nvmstore/nvm"
	"github.com/tinyfirm/nvmstore/partition"
)

// DefaultMaxPartitions is the descriptor capacity used when formatting a
// fresh device. The set of groups is fixed at build time, so one spare slot
// beyond the known groups is plenty.
const DefaultMaxPartitions = 8

// Open opens the state store on dev, formatting the device on first boot,
// and resolves the coordinator for the given stack.
func Open(dev flash.Dev, stack nvm.Stack, opts ...nvm.Option) (*nvm.Coordinator, error) {
	block, err := flash.New(dev, 0, dev.Size())
	if err != nil {
		return nil, err
	}

	store, err := partition.Open(block)
	if errors.Is(err, partition.ErrNoTable) {
		store, err = partition.Format(block, DefaultMaxPartitions)
	}
	if err != nil {
		return nil, err
	}

	return nvm.New(store, stack, opts...)
}
