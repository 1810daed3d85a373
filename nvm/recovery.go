package nvm

import (
	"unsafe"

	"github.com/outofforest/photon"

	"github.com/tinyfirm/nvmstore/crc"
)

// regionFieldSize is the byte width of the Region field at the start of the
// mac2 group, the scope of the region-only checksum.
const regionFieldSize = int(unsafe.Sizeof(Region(0)))

// Trust describes how much of the mac2 group the recovery path accepted.
type Trust int

// Trust levels, weakest first.
const (
	// TrustNone: neither check matched, the fallback region is in effect.
	TrustNone Trust = iota

	// TrustRegion: only the region field is trustworthy; the rest of the
	// group must be treated as defaults.
	TrustRegion

	// TrustGroup: the whole group checksum matched.
	TrustGroup
)

func (t Trust) String() string {
	switch t {
	case TrustRegion:
		return "region only"
	case TrustGroup:
		return "whole group"
	default:
		return "none"
	}
}

// RecoverRegion reads the active region from the mac2 partition at boot,
// before RestoreAll takes over. Two strategies are tried in order: the
// whole-group checksum, then a checksum scoped to the region field alone
// compared against the group's trailer. If neither matches (or the partition
// is absent or short), fallback is returned.
func (c *Coordinator) RecoverRegion(fallback Region) (Region, Trust) {
	b := c.state.GroupBytes(GroupMac2)

	m, err := c.parts[GroupMac2].Map()
	if err != nil || int64(len(m)) < int64(len(b)) {
		return fallback, TrustNone
	}
	m = m[:len(b)]

	region := photon.NewFromBytes[Mac2State](m).V.Region

	if crc.Matches(m) {
		return region, TrustGroup
	}
	if crc.Sum(m[:regionFieldSize]) == crc.Stored(m) {
		return region, TrustRegion
	}
	return fallback, TrustNone
}

// ResetToRegion prepares a "remember only the chosen region" restart: the
// whole mirror is zeroed, the new region is set, and the mac2 trailer is
// computed over the region field alone, deliberately not over the whole
// group. After the next flush the whole-group check fails while the scoped
// check succeeds, so the following boot recovers the region and defaults
// everything else.
func (c *Coordinator) ResetToRegion(r Region) {
	c.state = State{}
	c.state.Mac2.Region = r

	b := c.state.GroupBytes(GroupMac2)
	crc.Put(b, crc.Sum(b[:regionFieldSize]))

	c.NotifyDirty(GroupAll)
}
