package nvm

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/tinyfirm/nvmstore/crc"
	"github.com/tinyfirm/nvmstore/partition"
)

// Stack is the capability interface of the component owning the protocol
// stack. Flush brackets its writes with Pause/Resume so that no protocol
// state transition happens mid-write.
type Stack interface {
	// Pause stops protocol processing. A non-nil error means the stack
	// cannot be stopped right now and the flush cycle must be skipped.
	Pause() error

	// Resume restarts protocol processing.
	Resume()
}

// ErrFlushInProgress is returned when Flush is re-entered.
var ErrFlushInProgress = errors.New("flush already in progress")

// Option configures the coordinator.
type Option func(c *Coordinator)

// WithLogger sets the logger used for recoverable persistence failures.
func WithLogger(log Logger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// WithRetryFailedWrites keeps the dirty flag of a group whose write failed,
// so the next flush retries it. The default drops the flag: the group stays
// stale in flash until it is marked dirty again.
func WithRetryFailedWrites() Option {
	return func(c *Coordinator) {
		c.retryFailedWrites = true
	}
}

// Coordinator keeps the in-memory authoritative copy of the persisted
// context, accumulates a dirty-group bitmask and flushes only dirty groups
// to their partitions.
//
// Flush and RestoreAll belong to the single control loop. NotifyDirty is the
// only entry safe to call from interrupt-style notification contexts.
type Coordinator struct {
	state State
	dirty atomic.Uint32

	parts    map[GroupFlags]partition.Handle
	stack    Stack
	log      Logger
	flushing bool

	retryFailedWrites bool
}

// New resolves one partition per group against the store (find-or-create)
// and returns the coordinator. Any resolution failure makes the store
// unusable and is returned as an error.
func New(store *partition.Store, stack Stack, opts ...Option) (*Coordinator, error) {
	c := &Coordinator{
		parts: make(map[GroupFlags]partition.Handle, len(groups)),
		stack: stack,
		log:   noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, g := range groups {
		label := g.Label()
		size := uint32(len(c.state.GroupBytes(g)))

		handle, found := store.Find(label)
		if !found {
			var err error
			handle, err = store.Create(label, size)
			if err != nil {
				return nil, errors.Wrapf(err, "resolving partition %q", label)
			}
			// A fresh partition holds erased flash; seed it with sealed
			// defaults so restores see well-formed content.
			b := c.state.GroupBytes(g)
			crc.Update(b)
			if err := handle.Write(0, b); err != nil {
				return nil, errors.Wrapf(err, "seeding partition %q", label)
			}
		}
		c.parts[g] = handle
	}

	return c, nil
}

// State returns the in-memory mirror. The protocol stack mutates it directly
// and reports mutations through Seal or NotifyDirty.
func (c *Coordinator) State() *State {
	return &c.state
}

// Dirty returns the current dirty bitmask.
func (c *Coordinator) Dirty() GroupFlags {
	return GroupFlags(c.dirty.Load())
}

// NotifyDirty ORs flags into the dirty bitmask. Pure bookkeeping: no
// blocking, no I/O.
func (c *Coordinator) NotifyDirty(flags GroupFlags) {
	for {
		old := c.dirty.Load()
		if old&uint32(flags) == uint32(flags) {
			return
		}
		if c.dirty.CompareAndSwap(old, old|uint32(flags)) {
			return
		}
	}
}

func (c *Coordinator) clearDirty(flags GroupFlags) {
	for {
		old := c.dirty.Load()
		if c.dirty.CompareAndSwap(old, old&^uint32(flags)) {
			return
		}
	}
}

// Seal recomputes the checksum trailer of each named group and marks the
// groups whose trailer actually changed as dirty. The returned set lets the
// owner skip scheduling a flush when nothing changed.
func (c *Coordinator) Seal(flags GroupFlags) GroupFlags {
	var changed GroupFlags
	for _, g := range groups {
		if flags&g == 0 {
			continue
		}
		if crc.Update(c.state.GroupBytes(g)) {
			changed |= g
		}
	}
	if changed != 0 {
		c.NotifyDirty(changed)
	}
	return changed
}

// Flush writes every dirty group to its partition, bracketed by stack
// pause/resume. Group bytes are written verbatim, trailer included; trailers
// are maintained by whoever mutates the state (Seal, ResetToRegion), which
// is what keeps a scoped trailer intact across a flush.
//
// A failed group write is logged and does not abort the remaining groups.
// Unless WithRetryFailedWrites is set, its dirty flag is still cleared.
func (c *Coordinator) Flush() error {
	if c.flushing {
		return errors.WithStack(ErrFlushInProgress)
	}

	flags := c.Dirty()
	if flags == 0 {
		return nil
	}

	c.flushing = true
	defer func() {
		c.flushing = false
	}()

	if err := c.stack.Pause(); err != nil {
		// Dirty flags are retained; the caller retries later.
		return errors.Wrap(err, "stack pause rejected, flush deferred")
	}
	defer c.stack.Resume()

	var retained GroupFlags
	for _, g := range groups {
		if flags&g == 0 {
			continue
		}
		if err := c.parts[g].Write(0, c.state.GroupBytes(g)); err != nil {
			c.log.Error("group write failed", "group", g.Label(), "error", err)
			if c.retryFailedWrites {
				retained |= g
			}
		}
	}

	// Only the snapshot bits are cleared: groups marked dirty during the
	// write sequence stay dirty for the next flush.
	c.clearDirty(flags &^ retained)

	return nil
}

// RestoreAll copies each group's partition content into the mirror when the
// mapped region is at least the group's size, and leaves the group at its
// zero default otherwise.
//
// No checksum is validated here: any content of sufficient length is
// trusted. Only the region-recovery path distinguishes trust levels.
func (c *Coordinator) RestoreAll() error {
	for _, g := range groups {
		b := c.state.GroupBytes(g)
		m, err := c.parts[g].Map()
		if err != nil {
			c.log.Debug("group not mapped, keeping defaults", "group", g.Label(), "error", err)
			continue
		}
		if int64(len(m)) < int64(len(b)) {
			c.log.Debug("group too short, keeping defaults", "group", g.Label())
			continue
		}
		copy(b, m[:len(b)])
	}
	return nil
}
