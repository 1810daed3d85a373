// Package crc implements the trailing-checksum discipline used by the store.
// Every guarded byte range ends with a 4-byte little-endian CRC-32 (IEEE)
// trailer computed over the preceding bytes.
package crc

import (
	"encoding/binary"
	"hash/crc32"
)

// TrailerSize is the size of the checksum trailer in bytes.
const TrailerSize = 4

// Sum computes the checksum of p.
func Sum(p []byte) uint32 {
	return crc32.ChecksumIEEE(p)
}

// Stored returns the trailer value of p.
func Stored(p []byte) uint32 {
	return binary.LittleEndian.Uint32(p[len(p)-TrailerSize:])
}

// Put writes v into the trailer of p.
func Put(p []byte, v uint32) {
	binary.LittleEndian.PutUint32(p[len(p)-TrailerSize:], v)
}

// Matches reports whether the trailer of p matches the checksum of the bytes
// preceding it. Buffers shorter than the trailer never match.
func Matches(p []byte) bool {
	if len(p) < TrailerSize {
		return false
	}
	return Sum(p[:len(p)-TrailerSize]) == Stored(p)
}

// Update recomputes the trailer of p in place and reports whether it changed.
// Callers use the result to skip a physical flash write when the content is
// unchanged.
func Update(p []byte) bool {
	if len(p) < TrailerSize {
		return false
	}
	sum := Sum(p[:len(p)-TrailerSize])
	if sum == Stored(p) {
		return false
	}
	Put(p, sum)
	return true
}
