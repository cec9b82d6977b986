package image

import (
	"github.com/deploymenttheory/go-gptimage/internal/layout"
	"github.com/deploymenttheory/go-gptimage/internal/parsers/gpt"
)

// GPTImage is the partitioning of one image: its protective record, headers and
// partition entry array.
type GPTImage struct {
	Geometry   layout.Geometry
	Table      layout.TableLayout
	Protective gpt.ProtectiveRecord
	Header     gpt.Header
	Backup     *gpt.Header // Set by builds and strict reads
	Entries    []gpt.PartitionEntry
	RawTable   []byte
}

// Partition is a used entry with its slot number.
type Partition struct {
	Slot  int
	Entry gpt.PartitionEntry
}

// Partitions returns the used entries in table order.
func (img *GPTImage) Partitions() []Partition {
	var parts []Partition
	for i, e := range img.Entries {
		if e.IsUnused() {
			continue
		}
		parts = append(parts, Partition{Slot: i, Entry: e})
	}
	return parts
}

// Partition returns the used entry with the given label.
func (img *GPTImage) Partition(label string) (gpt.PartitionEntry, bool) {
	for _, p := range img.Partitions() {
		if p.Entry.Label() == label {
			return p.Entry, true
		}
	}
	return gpt.PartitionEntry{}, false
}
