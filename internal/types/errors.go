package types

import "errors"

// Error taxonomy shared by the codec, resolver and image builder. Callers wrap
// these with context and test for them with errors.Is.
var (
	// ErrFormat reports malformed or truncated binary input, or an unparseable GUID.
	ErrFormat = errors.New("format error")

	// ErrUnknownType reports a partition type name outside PartitionTypes.
	ErrUnknownType = errors.New("unknown partition type")

	// ErrSize reports an invalid geometry, an invalid partition range, or a
	// payload larger than its partition.
	ErrSize = errors.New("size error")

	// ErrMissingBinary reports a required partition binary that does not exist.
	ErrMissingBinary = errors.New("missing partition binary")

	// ErrChecksum reports a CRC32 mismatch found by strict reads.
	ErrChecksum = errors.New("checksum mismatch")
)
