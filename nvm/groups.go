// Package nvm persists the radio stack's runtime context. The context is
// split into fixed-size groups, each mapped 1:1 to a partition whose final
// 4 bytes are a checksum trailer over the preceding bytes. The structs below
// are laid out without padding and always end with the Crc32 trailer field.
package nvm

import (
	"github.com/outofforest/photon"
)

// GroupFlags is a bitmask of state groups.
type GroupFlags uint16

// Group flags, one per persisted group.
const (
	GroupCrypto GroupFlags = 1 << iota
	GroupMac1
	GroupMac2
	GroupSecureElement
	GroupRegion1
	GroupRegion2
	GroupClassB

	// GroupAll covers every group.
	GroupAll = GroupCrypto | GroupMac1 | GroupMac2 | GroupSecureElement |
		GroupRegion1 | GroupRegion2 | GroupClassB
)

// groups lists all flags in canonical (persist) order.
var groups = []GroupFlags{
	GroupCrypto,
	GroupMac1,
	GroupMac2,
	GroupSecureElement,
	GroupRegion1,
	GroupRegion2,
	GroupClassB,
}

var groupLabels = map[GroupFlags]string{
	GroupCrypto:        "crypto",
	GroupMac1:          "mac1",
	GroupMac2:          "mac2",
	GroupSecureElement: "se",
	GroupRegion1:       "region1",
	GroupRegion2:       "region2",
	GroupClassB:        "classb",
}

// Groups returns all group flags in canonical order.
func Groups() []GroupFlags {
	gs := make([]GroupFlags, len(groups))
	copy(gs, groups)
	return gs
}

// Label returns the partition label of a single group flag.
func (f GroupFlags) Label() string {
	if label, ok := groupLabels[f]; ok {
		return label
	}
	return "unknown"
}

// CryptoState holds frame counters and join nonces.
type CryptoState struct {
	DevNonce          uint32
	JoinNonce         uint32
	FCntUp            uint32
	NFCntDown         uint32
	AFCntDown         uint32
	FCntDownPrev      uint32
	MulticastFCntDown [4]uint32

	Crc32 uint32
}

// Mac1State holds the volatile MAC counters.
type Mac1State struct {
	AdrAckCounter    uint32
	ChannelsTxPower  uint32
	ChannelsDatarate uint32
	ChannelsNbTrans  uint32
	LastTxChannel    uint32
	SrvAckRequested  uint32

	Crc32 uint32
}

// Mac2State holds addressing and RX parameters. Region must stay the first
// field: the scoped recovery checksum covers exactly its bytes.
type Mac2State struct {
	Region        Region
	DevAddr       uint32
	NetID         uint32
	PublicNetwork uint32
	AdrEnabled    uint32
	ReceiveDelay1 uint32
	ReceiveDelay2 uint32
	Rx1DrOffset   uint32
	Rx2Frequency  uint32
	Rx2Datarate   uint32
	MaxDutyCycle  uint32

	Crc32 uint32
}

// SecureElementState holds device identity and root keys.
type SecureElementState struct {
	DevEui  [8]byte
	JoinEui [8]byte
	Pin     [4]byte
	AppKey  [16]byte
	NwkKey  [16]byte

	Crc32 uint32
}

// Region1State holds the volatile part of the regional channel plan.
type Region1State struct {
	ChannelsMaskRemaining         [6]uint16
	JoinChannelGroupsCurrentIndex uint32
	JoinCurrentDataRateIndex      uint32

	Crc32 uint32
}

// Channel describes one radio channel of the regional plan.
type Channel struct {
	Frequency    uint32
	Rx1Frequency uint32
	DrRange      uint32
	Band         uint32
}

// Region2State holds the configured regional channel plan.
type Region2State struct {
	Channels            [16]Channel
	ChannelsMask        [6]uint16
	ChannelsDefaultMask [6]uint16

	Crc32 uint32
}

// ClassBState holds beacon and ping-slot context.
type ClassBState struct {
	BeaconFrequency     uint32
	PingSlotFrequency   uint32
	PingSlotDatarate    uint32
	PingSlotPeriodicity uint32

	Crc32 uint32
}

// State is the in-memory authoritative copy of the persisted context.
type State struct {
	Crypto        CryptoState
	Mac1          Mac1State
	Mac2          Mac2State
	SecureElement SecureElementState
	Region1       Region1State
	Region2       Region2State
	ClassB        ClassBState
}

// GroupBytes returns the raw byte view of a single group, trailer included.
// The view aliases the state, so trailer updates through it are visible to
// the caller and to Flush.
func (s *State) GroupBytes(f GroupFlags) []byte {
	switch f {
	case GroupCrypto:
		return photon.NewFromValue(&s.Crypto).B
	case GroupMac1:
		return photon.NewFromValue(&s.Mac1).B
	case GroupMac2:
		return photon.NewFromValue(&s.Mac2).B
	case GroupSecureElement:
		return photon.NewFromValue(&s.SecureElement).B
	case GroupRegion1:
		return photon.NewFromValue(&s.Region1).B
	case GroupRegion2:
		return photon.NewFromValue(&s.Region2).B
	case GroupClassB:
		return photon.NewFromValue(&s.ClassB).B
	default:
		return nil
	}
}
