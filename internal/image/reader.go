package image

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-gptimage/internal/device"
	"github.com/deploymenttheory/go-gptimage/internal/interfaces"
	"github.com/deploymenttheory/go-gptimage/internal/layout"
	"github.com/deploymenttheory/go-gptimage/internal/parsers/gpt"
	"github.com/deploymenttheory/go-gptimage/internal/types"
)

// Read opens the image at path and decodes its partitioning.
func Read(path string, blockSize uint64, setters ...Option) (*GPTImage, error) {
	dev, err := device.OpenImage(path, blockSize)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	return ReadDevice(dev, setters...)
}

// ReadDevice decodes the protective record at block 0, the header at block 1 and
// the partition entry array the header points to. Checksums are only verified
// with WithStrict.
func ReadDevice(dev interfaces.BlockDeviceReader, setters ...Option) (*GPTImage, error) {
	opts := NewDefaultOptions(setters...)
	bs := dev.BlockSize()

	rawRecord, err := readAt(dev, 0, types.ProtectiveRecordSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read protective record: %w", err)
	}
	protective, err := gpt.DecodeProtectiveRecord(rawRecord)
	if err != nil {
		return nil, err
	}

	rawHeader, err := readAt(dev, int64(types.GPTHeaderLBA*bs), types.GPTHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read GPT header: %w", err)
	}
	header, err := gpt.DecodeHeader(rawHeader)
	if err != nil {
		return nil, err
	}

	table := layout.TableLayout{
		EntrySize:   header.SizeOfPartitionEntry,
		TableLength: header.NumberOfPartitionEntries,
	}
	if err := checkTableLayout(table, dev.Size()); err != nil {
		return nil, err
	}

	opts.Logger.Debug("reading partition table",
		zap.Uint64("lba", header.PartitionEntryLBA),
		zap.Uint32("entries", table.TableLength),
		zap.Uint32("entry_size", table.EntrySize))

	rawTable, err := readAt(dev, int64(header.PartitionEntryLBA*bs), int(table.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to read partition table: %w", err)
	}

	entries, err := decodeTable(rawTable, table)
	if err != nil {
		return nil, err
	}

	img := &GPTImage{
		Geometry:   layout.Geometry{BlockSize: bs, ImageSize: uint64(dev.Size())},
		Table:      table,
		Protective: protective,
		Header:     header,
		Entries:    entries,
		RawTable:   rawTable,
	}

	if opts.Strict {
		backup, err := Verify(dev, img)
		if err != nil {
			return nil, err
		}
		img.Backup = backup
	}

	return img, nil
}

func checkTableLayout(table layout.TableLayout, imageSize int64) error {
	if table.EntrySize < types.GPTEntrySize {
		return fmt.Errorf("%w: partition entry size %d is smaller than %d bytes",
			types.ErrFormat, table.EntrySize, types.GPTEntrySize)
	}
	if table.Bytes() > uint64(imageSize) {
		return fmt.Errorf("%w: partition table of %d bytes is larger than the image",
			types.ErrFormat, table.Bytes())
	}
	return nil
}

func decodeTable(raw []byte, table layout.TableLayout) ([]gpt.PartitionEntry, error) {
	entries := make([]gpt.PartitionEntry, 0, table.TableLength)
	size := int(table.EntrySize)

	for i := 0; i < int(table.TableLength); i++ {
		e, err := gpt.DecodePartitionEntry(raw[i*size : (i+1)*size])
		if err != nil {
			return nil, fmt.Errorf("partition entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func readAt(r io.ReaderAt, off int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := r.ReadAt(buf, off); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: image truncated at offset %d", types.ErrFormat, off)
		}
		return nil, err
	}
	return buf, nil
}
