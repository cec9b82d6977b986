package image

import (
	"bytes"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/deploymenttheory/go-gptimage/internal/interfaces"
	"github.com/deploymenttheory/go-gptimage/internal/parsers/gpt"
	"github.com/deploymenttheory/go-gptimage/internal/types"
)

// Verify checks the checksums of both headers and the partition table, that the
// backup header mirrors the primary and that the backup table is an exact copy.
// Every mismatch is reported and wraps ErrChecksum. It returns the backup header.
func Verify(dev interfaces.BlockDeviceReader, img *GPTImage) (*gpt.Header, error) {
	bs := dev.BlockSize()
	h := img.Header

	if h.HeaderSize < types.GPTHeaderSize || uint64(h.HeaderSize) > bs {
		return nil, fmt.Errorf("%w: header size %d outside [%d, %d]", types.ErrChecksum, h.HeaderSize, types.GPTHeaderSize, bs)
	}

	var result *multierror.Error

	if h.CurrentLBA != types.GPTHeaderLBA {
		result = multierror.Append(result, fmt.Errorf("%w: primary header claims LBA %d, read from LBA %d",
			types.ErrChecksum, h.CurrentLBA, types.GPTHeaderLBA))
	}

	rawHeader, err := readAt(dev, int64(types.GPTHeaderLBA*bs), int(h.HeaderSize))
	if err != nil {
		return nil, err
	}
	if sum := gpt.HeaderChecksum(rawHeader, h.HeaderSize); sum != h.HeaderCRC32 {
		result = multierror.Append(result, fmt.Errorf("%w: primary header CRC 0x%08x, computed 0x%08x",
			types.ErrChecksum, h.HeaderCRC32, sum))
	}

	if sum := gpt.TableChecksum(img.RawTable); sum != h.PartitionEntryArrayCRC32 {
		result = multierror.Append(result, fmt.Errorf("%w: partition table CRC 0x%08x, computed 0x%08x",
			types.ErrChecksum, h.PartitionEntryArrayCRC32, sum))
	}

	if h.BackupLBA >= uint64(dev.Size())/bs {
		result = multierror.Append(result, fmt.Errorf("%w: backup header LBA %d is past the end of the image",
			types.ErrChecksum, h.BackupLBA))
		return nil, result
	}

	rawBackup, err := readAt(dev, int64(h.BackupLBA*bs), int(h.HeaderSize))
	if err != nil {
		return nil, err
	}
	backup, err := gpt.DecodeHeader(rawBackup)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("%w: backup header: %v", types.ErrChecksum, err))
		return nil, result
	}

	if sum := gpt.HeaderChecksum(rawBackup, backup.HeaderSize); sum != backup.HeaderCRC32 {
		result = multierror.Append(result, fmt.Errorf("%w: backup header CRC 0x%08x, computed 0x%08x",
			types.ErrChecksum, backup.HeaderCRC32, sum))
	}

	expected := h.Mirror(backup.PartitionEntryLBA)
	expected.HeaderCRC32 = backup.HeaderCRC32
	if expected != backup {
		result = multierror.Append(result, fmt.Errorf("%w: backup header does not mirror the primary header", types.ErrChecksum))
	}

	rawBackupTable, err := readAt(dev, int64(backup.PartitionEntryLBA*bs), len(img.RawTable))
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("%w: backup partition table: %v", types.ErrChecksum, err))
	} else if !bytes.Equal(rawBackupTable, img.RawTable) {
		result = multierror.Append(result, fmt.Errorf("%w: backup partition table differs from the primary", types.ErrChecksum))
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	return &backup, nil
}
