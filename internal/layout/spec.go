package layout

import (
	"fmt"
	"strconv"
)

// SizeKind identifies how a partition size was requested.
type SizeKind int

const (
	// SizeBlocks is a literal block count.
	SizeBlocks SizeKind = iota
	// SizeMegabytes is a size in MiB less a per-partition overhead in bytes.
	SizeMegabytes
	// SizeRemaining uses all remaining usable space less a reserve of blocks.
	SizeRemaining
)

func (k SizeKind) String() string {
	switch k {
	case SizeBlocks:
		return "blocks"
	case SizeMegabytes:
		return "megabytes"
	case SizeRemaining:
		return "remaining"
	default:
		return fmt.Sprintf("SizeKind(%d)", int(k))
	}
}

// SizeSpec is a requested partition size.
//
// For SizeBlocks, Value is the block count. For SizeMegabytes, Value is the size in
// MiB and Hint the overhead in bytes subtracted before dividing by the block size.
// For SizeRemaining, Value is the number of blocks reserved at the end of the
// usable range.
type SizeSpec struct {
	Kind  SizeKind
	Value uint64
	Hint  uint64
}

// Blocks returns a literal block count size.
func Blocks(n uint64) SizeSpec {
	return SizeSpec{Kind: SizeBlocks, Value: n}
}

// Megabytes returns a size in MiB less hint bytes.
func Megabytes(mb, hint uint64) SizeSpec {
	return SizeSpec{Kind: SizeMegabytes, Value: mb, Hint: hint}
}

// Remaining returns a size covering the remaining usable space less reserve blocks.
func Remaining(reserve uint64) SizeSpec {
	return SizeSpec{Kind: SizeRemaining, Value: reserve}
}

// IsLiteral reports whether the size is known without the image geometry.
func (s SizeSpec) IsLiteral() bool {
	return s.Kind != SizeRemaining
}

// String renders the size token used in partition table descriptions.
func (s SizeSpec) String() string {
	switch s.Kind {
	case SizeRemaining:
		return fmt.Sprintf("$calc($lba_end-%d)", s.Value)
	case SizeMegabytes:
		return fmt.Sprintf("%dMiB-%d", s.Value, s.Hint)
	default:
		return strconv.FormatUint(s.Value, 10)
	}
}

// PartitionSpec is one partition as requested by a description, before placement.
type PartitionSpec struct {
	Label    string
	Start    *uint64 // Explicit first block, or nil to start at the cursor
	Size     SizeSpec
	TypeName string
	GUID     string
	Try      uint64
	Priority uint64
	Index    int
	Device   string
}

// Placement is a partition spec resolved to a block range.
type Placement struct {
	Spec     PartitionSpec
	FirstLBA uint64
	Blocks   uint64
}

// LastLBA returns the inclusive last block of the placement.
func (p Placement) LastLBA() uint64 {
	return p.FirstLBA + p.Blocks - 1
}
