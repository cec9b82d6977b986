package layout

import (
	"fmt"

	"github.com/deploymenttheory/go-gptimage/internal/types"
)

const gib = 1024 * 1024 * 1024

// Geometry describes the size of an image and its logical block size, both in bytes.
type Geometry struct {
	BlockSize uint64
	ImageSize uint64
}

// NewGeometry validates and returns a geometry.
func NewGeometry(blockSize, imageSize uint64) (Geometry, error) {
	g := Geometry{BlockSize: blockSize, ImageSize: imageSize}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// GeometryFromGiB returns the geometry of an image of the given length in GiB.
func GeometryFromGiB(blockSize, imageGiB uint64) (Geometry, error) {
	return NewGeometry(blockSize, imageGiB*gib)
}

// Validate checks that the image is a positive whole number of blocks.
func (g Geometry) Validate() error {
	if g.BlockSize == 0 {
		return fmt.Errorf("%w: block size must be positive", types.ErrSize)
	}
	if g.ImageSize == 0 {
		return fmt.Errorf("%w: image size must be positive", types.ErrSize)
	}
	if g.ImageSize%g.BlockSize != 0 {
		return fmt.Errorf("%w: image size %d is not a multiple of block size %d",
			types.ErrSize, g.ImageSize, g.BlockSize)
	}
	return nil
}

// Blocks returns the number of logical blocks in the image.
func (g Geometry) Blocks() uint64 {
	if g.BlockSize == 0 {
		return 0
	}
	return g.ImageSize / g.BlockSize
}

// Offset returns the byte offset of a block.
func (g Geometry) Offset(lba uint64) int64 {
	return int64(lba * g.BlockSize)
}

// TableLayout describes the partition entry array.
type TableLayout struct {
	EntrySize   uint32
	TableLength uint32
}

// DefaultTableLayout returns the 128 x 128-byte entry array.
func DefaultTableLayout() TableLayout {
	return TableLayout{EntrySize: types.GPTEntrySize, TableLength: types.GPTTableLength}
}

// Bytes returns the size of the entry array in bytes.
func (t TableLayout) Bytes() uint64 {
	return uint64(t.EntrySize) * uint64(t.TableLength)
}

// Blocks returns the number of blocks occupied by one copy of the entry array.
func (t TableLayout) Blocks(blockSize uint64) uint64 {
	if blockSize == 0 {
		return 0
	}
	return (t.Bytes() + blockSize - 1) / blockSize
}

// Bounds holds the block addresses derived from a geometry and a table layout.
type Bounds struct {
	Blocks          uint64
	TableBlocks     uint64
	FirstUsableLBA  uint64
	LastUsableLBA   uint64
	BackupTableLBA  uint64
	BackupHeaderLBA uint64
}

// ComputeBounds derives the usable range of an image:
//
//	FirstUsableLBA  = 2 + TableBlocks
//	LastUsableLBA   = Blocks - 2 - TableBlocks
//	BackupTableLBA  = LastUsableLBA + 1
//	BackupHeaderLBA = Blocks - 1
func ComputeBounds(g Geometry, t TableLayout) (Bounds, error) {
	if err := g.Validate(); err != nil {
		return Bounds{}, err
	}
	if t.EntrySize == 0 || t.TableLength == 0 {
		return Bounds{}, fmt.Errorf("%w: empty partition table layout", types.ErrSize)
	}
	if uint64(t.EntrySize) < types.GPTEntrySize {
		return Bounds{}, fmt.Errorf("%w: entry size %d is smaller than %d bytes",
			types.ErrSize, t.EntrySize, types.GPTEntrySize)
	}

	blocks := g.Blocks()
	tableBlocks := t.Blocks(g.BlockSize)
	first := types.GPTPrimaryTableLBA + tableBlocks

	// Protective record, both headers, both tables and at least one usable block
	if blocks < 2*first {
		return Bounds{}, fmt.Errorf("%w: image of %d blocks cannot hold two %d-block partition tables",
			types.ErrSize, blocks, tableBlocks)
	}

	last := blocks - 2 - tableBlocks
	return Bounds{
		Blocks:          blocks,
		TableBlocks:     tableBlocks,
		FirstUsableLBA:  first,
		LastUsableLBA:   last,
		BackupTableLBA:  last + 1,
		BackupHeaderLBA: blocks - 1,
	}, nil
}
