package gpt

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-gptimage/internal/types"
)

// ProtectiveRecord is the legacy boot record written at block 0 so that tools
// unaware of GPT see the disk as fully allocated.
//
// Raw layout (little-endian, 512 bytes):
//
//	offset  size  field
//	0       4     boot
//	4       4     OS type
//	8       4     starting LBA
//	12      4     size in LBA
//	16      430   reserved
//	446     16    protective partition entry
//	462     48    reserved
//	510     2     signature 0x55 0xAA
type ProtectiveRecord struct {
	Boot        uint32
	OSType      uint32
	StartingLBA uint32
	SizeLBA     uint32
	BootCode    [types.ProtectiveBootCodeSize]byte
	Partition   [types.ProtectivePartitionEntrySize]byte
	Reserved    [types.ProtectiveReservedSize]byte
	Signature   [2]byte
}

// NewProtectiveRecord returns the record written to every image built here.
func NewProtectiveRecord() ProtectiveRecord {
	return ProtectiveRecord{
		Partition: types.ProtectivePartitionEntry,
		Signature: [2]byte{types.ProtectiveSignatureByte0, types.ProtectiveSignatureByte1},
	}
}

// EncodeProtectiveRecord serializes the record into its 512-byte on-disk form.
func EncodeProtectiveRecord(r ProtectiveRecord) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, types.ProtectiveRecordSize))
	// Writes of fixed-size structs into a bytes.Buffer cannot fail
	_ = binary.Write(buf, binary.LittleEndian, &r)
	return buf.Bytes()
}

// DecodeProtectiveRecord parses a protective record and checks its signature.
func DecodeProtectiveRecord(data []byte) (ProtectiveRecord, error) {
	var r ProtectiveRecord

	if len(data) < types.ProtectiveRecordSize {
		return r, fmt.Errorf("%w: data too small for protective record: %d bytes, need %d",
			types.ErrFormat, len(data), types.ProtectiveRecordSize)
	}

	if err := binary.Read(bytes.NewReader(data[:types.ProtectiveRecordSize]), binary.LittleEndian, &r); err != nil {
		return r, fmt.Errorf("%w: failed to read protective record: %v", types.ErrFormat, err)
	}

	if r.Signature[0] != types.ProtectiveSignatureByte0 || r.Signature[1] != types.ProtectiveSignatureByte1 {
		return r, fmt.Errorf("%w: invalid protective record signature: 0x%02X 0x%02X",
			types.ErrFormat, r.Signature[0], r.Signature[1])
	}

	return r, nil
}

// CHSStart returns the CHS start address packed in the low 24 bits of the boot field.
func (r ProtectiveRecord) CHSStart() uint32 {
	return r.Boot & 0x00FFFFFF
}

// CHSEnd returns the CHS end address packed in the low 24 bits of the OS type field.
func (r ProtectiveRecord) CHSEnd() uint32 {
	return r.OSType & 0x00FFFFFF
}
