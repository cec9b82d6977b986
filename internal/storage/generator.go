package storage

import (
	"fmt"
	"io"
	"sort"

	"github.com/deploymenttheory/go-gptimage/internal/layout"
	"github.com/deploymenttheory/go-gptimage/internal/parsers/description"
)

const formatGPT = "gpt"

// Table is a generated partition table description.
type Table struct {
	Header []string
	Specs  []layout.PartitionSpec
	Footer []string
}

// Generate builds the partition table description of a storage document. Start
// blocks are assigned from the configured LBA start offset; the last partition
// may take the remaining space.
func Generate(doc *Document) (*Table, error) {
	table := &Table{
		Header: []string{"partition_table=" + doc.Globals.FormatTable},
	}

	if doc.Globals.FormatTable != formatGPT {
		return table, nil
	}

	if doc.Storage.SectorSize == 0 {
		return nil, fmt.Errorf("storage sector size must be positive")
	}

	base := doc.Storage.BaseName
	table.Header = append(table.Header,
		"create -z "+base,
		"create "+base,
		"boot -p "+base,
		"reload "+base,
	)
	table.Footer = []string{"reload " + base}

	specs, err := partitionSpecs(doc)
	if err != nil {
		return nil, err
	}

	table.Specs, err = layout.Place(specs, doc.Globals.GPT.LBAStartOffset, doc.Storage.SectorSize)
	if err != nil {
		return nil, err
	}

	return table, nil
}

// Write renders the table.
func (t *Table) Write(w io.Writer) error {
	if err := description.Write(w, t.Header, t.Specs); err != nil {
		return err
	}
	for _, line := range t.Footer {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write description footer: %w", err)
		}
	}
	return nil
}

func partitionSpecs(doc *Document) ([]layout.PartitionSpec, error) {
	names := make([]string, 0, len(doc.Partitions))
	for name := range doc.Partitions {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := doc.Partitions[names[i]], doc.Partitions[names[j]]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return names[i] < names[j]
	})

	specs := make([]layout.PartitionSpec, 0, len(names))
	for _, name := range names {
		p := doc.Partitions[name]

		label := name
		if p.Label != nil {
			label = *p.Label
		}

		if p.Size == nil {
			return nil, fmt.Errorf("partition %q has no size", name)
		}

		var size layout.SizeSpec
		switch {
		case *p.Size <= 0:
			size = layout.Remaining(uint64(abs(p.Length)))
		case p.Length < 0:
			return nil, fmt.Errorf("partition %q: negative length %d with a fixed size", name, p.Length)
		default:
			size = layout.Megabytes(uint64(*p.Size), uint64(p.Length))
		}

		specs = append(specs, layout.PartitionSpec{
			Label:    label,
			Start:    p.LBAStart,
			Size:     size,
			TypeName: p.Type,
			GUID:     layout.ComposeGUID(doc.Globals.GPT.UUIDPrefix, p.UUID),
			Try:      p.Try,
			Priority: p.Priority,
			Index:    p.ID,
			Device:   doc.Storage.BaseName,
		})
	}

	return specs, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
