package gpt

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-gptimage/internal/types"
)

// Header represents a GPT header.
// Based on UEFI Specification 2.10, Section 5.3.2
type Header struct {
	Signature                [8]byte // Offset 0: "EFI PART"
	Revision                 uint32  // Offset 8
	HeaderSize               uint32  // Offset 12
	HeaderCRC32              uint32  // Offset 16
	Reserved                 uint32  // Offset 20
	CurrentLBA               uint64  // Offset 24: location of this copy
	BackupLBA                uint64  // Offset 32: location of the other copy
	FirstUsableLBA           uint64  // Offset 40
	LastUsableLBA            uint64  // Offset 48
	DiskGUID                 GUID    // Offset 56
	PartitionEntryLBA        uint64  // Offset 72
	NumberOfPartitionEntries uint32  // Offset 80
	SizeOfPartitionEntry     uint32  // Offset 84
	PartitionEntryArrayCRC32 uint32  // Offset 88
}

// EncodeHeader serializes the header into its 92-byte on-disk form.
func EncodeHeader(h Header) []byte {
	b := make([]byte, types.GPTHeaderSize)

	copy(b[0:8], h.Signature[:])
	binary.LittleEndian.PutUint32(b[8:12], h.Revision)
	binary.LittleEndian.PutUint32(b[12:16], h.HeaderSize)
	binary.LittleEndian.PutUint32(b[16:20], h.HeaderCRC32)
	binary.LittleEndian.PutUint32(b[20:24], h.Reserved)
	binary.LittleEndian.PutUint64(b[24:32], h.CurrentLBA)
	binary.LittleEndian.PutUint64(b[32:40], h.BackupLBA)
	binary.LittleEndian.PutUint64(b[40:48], h.FirstUsableLBA)
	binary.LittleEndian.PutUint64(b[48:56], h.LastUsableLBA)
	copy(b[56:72], h.DiskGUID[:])
	binary.LittleEndian.PutUint64(b[72:80], h.PartitionEntryLBA)
	binary.LittleEndian.PutUint32(b[80:84], h.NumberOfPartitionEntries)
	binary.LittleEndian.PutUint32(b[84:88], h.SizeOfPartitionEntry)
	binary.LittleEndian.PutUint32(b[88:92], h.PartitionEntryArrayCRC32)

	return b
}

// DecodeHeader parses a GPT header and checks its signature.
func DecodeHeader(data []byte) (Header, error) {
	var h Header

	if len(data) < types.GPTHeaderSize {
		return h, fmt.Errorf("%w: data too small for GPT header: %d bytes, need %d",
			types.ErrFormat, len(data), types.GPTHeaderSize)
	}

	copy(h.Signature[:], data[0:8])
	if string(h.Signature[:]) != types.GPTSignature {
		return h, fmt.Errorf("%w: invalid GPT signature: %q", types.ErrFormat, h.Signature[:])
	}

	h.Revision = binary.LittleEndian.Uint32(data[8:12])
	h.HeaderSize = binary.LittleEndian.Uint32(data[12:16])
	h.HeaderCRC32 = binary.LittleEndian.Uint32(data[16:20])
	h.Reserved = binary.LittleEndian.Uint32(data[20:24])
	h.CurrentLBA = binary.LittleEndian.Uint64(data[24:32])
	h.BackupLBA = binary.LittleEndian.Uint64(data[32:40])
	h.FirstUsableLBA = binary.LittleEndian.Uint64(data[40:48])
	h.LastUsableLBA = binary.LittleEndian.Uint64(data[48:56])
	copy(h.DiskGUID[:], data[56:72])
	h.PartitionEntryLBA = binary.LittleEndian.Uint64(data[72:80])
	h.NumberOfPartitionEntries = binary.LittleEndian.Uint32(data[80:84])
	h.SizeOfPartitionEntry = binary.LittleEndian.Uint32(data[84:88])
	h.PartitionEntryArrayCRC32 = binary.LittleEndian.Uint32(data[88:92])

	return h, nil
}

// Mirror returns the backup copy of a primary header: current and backup LBAs are
// swapped and the entry array points at the backup table. The first and last usable
// LBAs are shared with the primary. The header CRC is cleared since it covers the
// swapped fields.
func (h Header) Mirror(backupTableLBA uint64) Header {
	m := h
	m.CurrentLBA, m.BackupLBA = h.BackupLBA, h.CurrentLBA
	m.PartitionEntryLBA = backupTableLBA
	m.HeaderCRC32 = 0
	return m
}

// TableSize returns the size in bytes of the partition entry array described by the header.
func (h Header) TableSize() uint64 {
	return uint64(h.NumberOfPartitionEntries) * uint64(h.SizeOfPartitionEntry)
}
