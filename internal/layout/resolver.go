package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/deploymenttheory/go-gptimage/internal/types"
)

const mib = 1024 * 1024

// Resolver computes partition placements for one image.
type Resolver struct {
	Geometry Geometry
	Table    TableLayout

	// StartCursor overrides the initial cursor, which is otherwise the first usable block.
	StartCursor *uint64
}

// NewResolver returns a resolver for the given geometry and the default table layout.
func NewResolver(g Geometry) *Resolver {
	return &Resolver{Geometry: g, Table: DefaultTableLayout()}
}

// Resolve places specs with the default cursor.
func Resolve(g Geometry, t TableLayout, specs []PartitionSpec) ([]Placement, error) {
	r := &Resolver{Geometry: g, Table: t}
	return r.Resolve(specs)
}

// Resolve assigns a first block and a block count to every spec, in index order.
//
// A spec with an explicit start moves the cursor there, otherwise it starts at the
// cursor. The cursor advances past literal sizes only. A remaining-space size is
// legal on the last spec only. Every range must lie within the usable blocks and
// ranges must not overlap.
func (r *Resolver) Resolve(specs []PartitionSpec) ([]Placement, error) {
	bounds, err := ComputeBounds(r.Geometry, r.Table)
	if err != nil {
		return nil, err
	}

	cursor := bounds.FirstUsableLBA
	if r.StartCursor != nil {
		cursor = *r.StartCursor
	}

	ordered := sortByIndex(specs)
	placements := make([]Placement, 0, len(ordered))

	for i, spec := range ordered {
		if spec.Start != nil {
			cursor = *spec.Start
		}

		var blocks uint64
		switch spec.Size.Kind {
		case SizeRemaining:
			if i != len(ordered)-1 {
				return nil, fmt.Errorf("%w: partition %q: remaining-space size is only allowed on the last partition",
					types.ErrSize, spec.Label)
			}
			if spec.Size.Value > bounds.LastUsableLBA || cursor > bounds.LastUsableLBA-spec.Size.Value {
				return nil, fmt.Errorf("%w: partition %q: no space left after block %d with %d reserved blocks",
					types.ErrSize, spec.Label, cursor, spec.Size.Value)
			}
			blocks = bounds.LastUsableLBA - cursor - spec.Size.Value
		default:
			blocks, err = literalBlocks(spec, r.Geometry.BlockSize)
			if err != nil {
				return nil, err
			}
		}

		p := Placement{Spec: spec, FirstLBA: cursor, Blocks: blocks}
		if err := checkRange(p, bounds); err != nil {
			return nil, err
		}
		placements = append(placements, p)

		if spec.Size.IsLiteral() {
			cursor += blocks
		}
	}

	if err := checkOverlap(placements); err != nil {
		return nil, err
	}

	return placements, nil
}

// Place runs the cursor pass without an image geometry: every spec gets an explicit
// start, megabyte sizes are converted to blocks and remaining-space sizes are kept
// symbolic. Used when generating partition table descriptions.
func Place(specs []PartitionSpec, startCursor, blockSize uint64) ([]PartitionSpec, error) {
	if blockSize == 0 {
		return nil, fmt.Errorf("%w: block size must be positive", types.ErrSize)
	}

	cursor := startCursor
	ordered := sortByIndex(specs)
	placed := make([]PartitionSpec, 0, len(ordered))

	for i, spec := range ordered {
		if spec.Start != nil {
			cursor = *spec.Start
		}

		start := cursor
		spec.Start = &start

		if spec.Size.Kind == SizeRemaining {
			if i != len(ordered)-1 {
				return nil, fmt.Errorf("%w: partition %q: remaining-space size is only allowed on the last partition",
					types.ErrSize, spec.Label)
			}
			placed = append(placed, spec)
			continue
		}

		blocks, err := literalBlocks(spec, blockSize)
		if err != nil {
			return nil, err
		}
		if blocks > math.MaxUint64-cursor {
			return nil, fmt.Errorf("%w: partition %q: %d blocks from block %d overflow the block address space",
				types.ErrSize, spec.Label, blocks, cursor)
		}
		spec.Size = Blocks(blocks)
		placed = append(placed, spec)
		cursor += blocks
	}

	return placed, nil
}

// ComposeGUID prefixes a partition GUID, dropping the prefix when the result would
// be longer than a canonical GUID string.
func ComposeGUID(prefix, guid string) string {
	composed := prefix + guid
	if len(composed) > types.GPTMaxGUIDStringLen {
		return guid
	}
	return composed
}

func literalBlocks(spec PartitionSpec, blockSize uint64) (uint64, error) {
	var blocks uint64
	switch spec.Size.Kind {
	case SizeBlocks:
		blocks = spec.Size.Value
	case SizeMegabytes:
		if spec.Size.Value > math.MaxUint64/mib {
			return 0, fmt.Errorf("%w: partition %q: %d MiB is too large", types.ErrSize, spec.Label, spec.Size.Value)
		}
		total := spec.Size.Value * mib
		if spec.Size.Hint > total {
			return 0, fmt.Errorf("%w: partition %q: overhead of %d bytes exceeds %d MiB",
				types.ErrSize, spec.Label, spec.Size.Hint, spec.Size.Value)
		}
		blocks = (total - spec.Size.Hint) / blockSize
	default:
		return 0, fmt.Errorf("%w: partition %q: unsupported size kind %s", types.ErrSize, spec.Label, spec.Size.Kind)
	}

	if blocks == 0 {
		return 0, fmt.Errorf("%w: partition %q has zero size", types.ErrSize, spec.Label)
	}
	return blocks, nil
}

func checkRange(p Placement, b Bounds) error {
	if p.Blocks == 0 {
		return fmt.Errorf("%w: partition %q has zero size", types.ErrSize, p.Spec.Label)
	}
	if p.FirstLBA < b.FirstUsableLBA || p.FirstLBA > b.LastUsableLBA || p.Blocks > b.LastUsableLBA-p.FirstLBA+1 {
		return fmt.Errorf("%w: partition %q at blocks %d+%d is outside the usable range [%d, %d]",
			types.ErrSize, p.Spec.Label, p.FirstLBA, p.Blocks, b.FirstUsableLBA, b.LastUsableLBA)
	}
	return nil
}

func checkOverlap(placements []Placement) error {
	byStart := make([]Placement, len(placements))
	copy(byStart, placements)
	sort.SliceStable(byStart, func(i, j int) bool { return byStart[i].FirstLBA < byStart[j].FirstLBA })

	for i := 1; i < len(byStart); i++ {
		prev, cur := byStart[i-1], byStart[i]
		if cur.FirstLBA <= prev.LastLBA() {
			return fmt.Errorf("%w: partition %q (blocks %d-%d) overlaps %q (blocks %d-%d)",
				types.ErrSize, cur.Spec.Label, cur.FirstLBA, cur.LastLBA(),
				prev.Spec.Label, prev.FirstLBA, prev.LastLBA())
		}
	}
	return nil
}

func sortByIndex(specs []PartitionSpec) []PartitionSpec {
	ordered := make([]PartitionSpec, len(specs))
	copy(ordered, specs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })
	return ordered
}
