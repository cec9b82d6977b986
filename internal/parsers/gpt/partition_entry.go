package gpt

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-gptimage/internal/types"
)

// PartitionEntry represents a GPT partition entry.
// Based on UEFI Specification 2.10, Section 5.3.3
type PartitionEntry struct {
	TypeGUID   GUID                         // Offset 0
	UniqueGUID GUID                         // Offset 16
	FirstLBA   uint64                       // Offset 32
	LastLBA    uint64                       // Offset 40: inclusive
	Attributes uint64                       // Offset 48
	Name       [types.GPTEntryNameSize]byte // Offset 56: UTF-16LE
}

// EncodePartitionEntry serializes an entry into its 128-byte on-disk form.
func EncodePartitionEntry(e PartitionEntry) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, types.GPTEntrySize))
	_ = binary.Write(buf, binary.LittleEndian, &e)
	return buf.Bytes()
}

// DecodePartitionEntry parses a partition entry. Bytes past the first 128 are ignored.
func DecodePartitionEntry(data []byte) (PartitionEntry, error) {
	var e PartitionEntry

	if len(data) < types.GPTEntrySize {
		return e, fmt.Errorf("%w: data too small for partition entry: %d bytes, need %d",
			types.ErrFormat, len(data), types.GPTEntrySize)
	}

	if err := binary.Read(bytes.NewReader(data[:types.GPTEntrySize]), binary.LittleEndian, &e); err != nil {
		return e, fmt.Errorf("%w: failed to read partition entry: %v", types.ErrFormat, err)
	}

	return e, nil
}

// IsUnused reports whether the slot holds no partition.
func (e PartitionEntry) IsUnused() bool {
	return e.TypeGUID.IsZero()
}

// Label returns the decoded partition name, or an empty string if it cannot be decoded.
func (e PartitionEntry) Label() string {
	name, err := DecodeName(e.Name)
	if err != nil {
		return ""
	}
	return name
}

// Blocks returns the number of blocks covered by the entry.
func (e PartitionEntry) Blocks() uint64 {
	if e.LastLBA < e.FirstLBA {
		return 0
	}
	return e.LastLBA - e.FirstLBA + 1
}
