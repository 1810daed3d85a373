package flash

// Dev is the interface required from the backing non-volatile memory device.
// All addresses are absolute device addresses.
type Dev interface {
	// WriteAt writes p at the given address. Writes are synchronous and must
	// be idempotent under retry with identical arguments.
	WriteAt(addr int64, p []byte) error

	// Map returns a read-only view of length bytes at the given address.
	// The view is borrowed; it stays valid only until the range is written
	// or erased.
	Map(addr, length int64) ([]byte, error)

	// Erase resets the range to the erased state (0xFF).
	Erase(addr, length int64) error

	// Size returns the byte size of the device.
	Size() int64
}
