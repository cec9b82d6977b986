package image

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/deploymenttheory/go-gptimage/internal/device"
	"github.com/deploymenttheory/go-gptimage/internal/interfaces"
	"github.com/deploymenttheory/go-gptimage/internal/layout"
	"github.com/deploymenttheory/go-gptimage/internal/parsers/gpt"
	"github.com/deploymenttheory/go-gptimage/internal/payload"
	"github.com/deploymenttheory/go-gptimage/internal/types"
)

// Builder writes GPT images.
type Builder struct {
	geometry layout.Geometry
	opts     *Options
}

// NewBuilder returns a builder for images of the given geometry.
func NewBuilder(geometry layout.Geometry, setters ...Option) *Builder {
	return &Builder{
		geometry: geometry,
		opts:     NewDefaultOptions(setters...),
	}
}

// plan is everything decided before the image file is touched.
type plan struct {
	bounds     layout.Bounds
	placements []layout.Placement
	entries    []gpt.PartitionEntry
	payloads   []payload.Payload
}

// Build writes a complete image to path.
//
// The layout, partition types, GUIDs and payloads are all checked before the file
// is created. Once writing starts, a failure leaves a partial image behind with
// zero checksums.
func (b *Builder) Build(ctx context.Context, path string, specs []layout.PartitionSpec, binaries payload.Binaries) (*GPTImage, error) {
	p, err := b.plan(specs, binaries)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := b.opts.Logger.With(zap.String("image", path))
	log.Info("writing image",
		zap.String("size", humanize.IBytes(b.geometry.ImageSize)),
		zap.Uint64("block_size", b.geometry.BlockSize),
		zap.Int("partitions", len(p.placements)))

	dev, err := device.CreateImage(path, int64(b.geometry.ImageSize), b.geometry.BlockSize)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	img, err := b.write(ctx, dev, p, log)
	if err != nil {
		return nil, err
	}

	if err := dev.Sync(); err != nil {
		return nil, fmt.Errorf("failed to sync image: %w", err)
	}

	log.Info("image written")

	return img, nil
}

func (b *Builder) plan(specs []layout.PartitionSpec, binaries payload.Binaries) (*plan, error) {
	bounds, err := layout.ComputeBounds(b.geometry, b.opts.Table)
	if err != nil {
		return nil, err
	}

	if len(specs) > int(b.opts.Table.TableLength) {
		return nil, fmt.Errorf("%w: %d partitions do not fit a table of %d entries",
			types.ErrSize, len(specs), b.opts.Table.TableLength)
	}

	placements, err := layout.Resolve(b.geometry, b.opts.Table, specs)
	if err != nil {
		return nil, err
	}

	entries := make([]gpt.PartitionEntry, 0, len(placements))
	for _, pl := range placements {
		entry, err := newEntry(pl)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	payloads, err := payload.Plan(placements, binaries, b.opts.WorkingDir)
	if err != nil {
		return nil, err
	}

	return &plan{
		bounds:     bounds,
		placements: placements,
		entries:    entries,
		payloads:   payloads,
	}, nil
}

func newEntry(pl layout.Placement) (gpt.PartitionEntry, error) {
	spec := pl.Spec

	typeID, ok := types.LookupPartitionType(spec.TypeName)
	if !ok {
		return gpt.PartitionEntry{}, fmt.Errorf("%w: %q (partition %q)", types.ErrUnknownType, spec.TypeName, spec.Label)
	}

	typeGUID, err := gpt.ParseGUID(typeID)
	if err != nil {
		return gpt.PartitionEntry{}, err
	}

	unique, err := gpt.ParseGUID(spec.GUID)
	if err != nil {
		return gpt.PartitionEntry{}, fmt.Errorf("partition %q: %w", spec.Label, err)
	}

	name, err := gpt.EncodeName(spec.Label)
	if err != nil {
		return gpt.PartitionEntry{}, fmt.Errorf("%w: %v", types.ErrFormat, err)
	}

	return gpt.PartitionEntry{
		TypeGUID:   typeGUID,
		UniqueGUID: unique,
		FirstLBA:   pl.FirstLBA,
		LastLBA:    pl.LastLBA(),
		Attributes: spec.Try,
		Name:       name,
	}, nil
}

func (b *Builder) write(ctx context.Context, dev interfaces.BlockDevice, p *plan, log *zap.Logger) (*GPTImage, error) {
	bounds := p.bounds

	log.Debug("zero-filling metadata areas")
	if err := dev.ZeroBlocks(0, bounds.FirstUsableLBA); err != nil {
		return nil, err
	}
	if err := dev.ZeroBlocks(bounds.BackupTableLBA, bounds.Blocks-bounds.BackupTableLBA); err != nil {
		return nil, err
	}

	log.Debug("writing protective record")
	protective := gpt.NewProtectiveRecord()
	if err := dev.WriteBlocks(0, gpt.EncodeProtectiveRecord(protective)); err != nil {
		return nil, err
	}

	log.Debug("writing GPT headers")
	diskGUID := gpt.NewRandomGUID()
	if b.opts.DiskGUID != nil {
		diskGUID = *b.opts.DiskGUID
	}

	header := newHeader(bounds, b.opts.Table, diskGUID)
	backup := header.Mirror(bounds.BackupTableLBA)
	if err := dev.WriteBlocks(header.CurrentLBA, gpt.EncodeHeader(header)); err != nil {
		return nil, err
	}
	if err := dev.WriteBlocks(backup.CurrentLBA, gpt.EncodeHeader(backup)); err != nil {
		return nil, err
	}

	log.Debug("writing partition table", zap.Int("entries", len(p.entries)))
	rawTable := encodeTable(p.entries, b.opts.Table)
	if err := dev.WriteBlocks(header.PartitionEntryLBA, rawTable); err != nil {
		return nil, err
	}
	if err := dev.WriteBlocks(backup.PartitionEntryLBA, rawTable); err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "gptimage-")
	if err != nil {
		return nil, fmt.Errorf("failed to create payload directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	for i, pl := range p.placements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.writePayload(ctx, dev, pl, p.payloads[i], tmpDir, log); err != nil {
			return nil, err
		}
	}

	log.Debug("patching checksums")
	tableCRC := gpt.TableChecksum(rawTable)
	header.PartitionEntryArrayCRC32 = tableCRC
	backup.PartitionEntryArrayCRC32 = tableCRC
	header.HeaderCRC32 = gpt.HeaderChecksum(gpt.EncodeHeader(header), header.HeaderSize)
	backup.HeaderCRC32 = gpt.HeaderChecksum(gpt.EncodeHeader(backup), backup.HeaderSize)

	for _, h := range []gpt.Header{header, backup} {
		if err := patchUint32(dev, h.CurrentLBA, types.GPTHeaderTableCRCOffset, h.PartitionEntryArrayCRC32); err != nil {
			return nil, err
		}
	}
	for _, h := range []gpt.Header{header, backup} {
		if err := patchUint32(dev, h.CurrentLBA, types.GPTHeaderCRCOffset, h.HeaderCRC32); err != nil {
			return nil, err
		}
	}

	entries := make([]gpt.PartitionEntry, b.opts.Table.TableLength)
	copy(entries, p.entries)

	return &GPTImage{
		Geometry:   b.geometry,
		Table:      b.opts.Table,
		Protective: protective,
		Header:     header,
		Backup:     &backup,
		Entries:    entries,
		RawTable:   rawTable,
	}, nil
}

func (b *Builder) writePayload(ctx context.Context, dev interfaces.BlockDevice, pl layout.Placement, pay payload.Payload, tmpDir string, log *zap.Logger) (err error) {
	bs := b.geometry.BlockSize
	log = log.With(zap.String("partition", pl.Spec.Label), zap.Stringer("payload", pay.Kind))

	src, err := payload.Materialize(ctx, b.opts.Producer, pay, pl.Blocks*bs, tmpDir)
	if err != nil {
		return err
	}
	if src == nil {
		log.Debug("leaving partition empty")
		return nil
	}
	defer func() {
		err = errors.Join(err, src.Remove())
	}()

	size, err := src.Size()
	if err != nil {
		return err
	}

	needed := (uint64(size) + bs - 1) / bs
	if needed > pl.Blocks {
		return fmt.Errorf("%w: payload %s for partition %q needs %d blocks, partition has %d",
			types.ErrSize, src.Path, pl.Spec.Label, needed, pl.Blocks)
	}

	n, err := src.CopyTo(dev, int64(pl.FirstLBA*bs))
	if err != nil {
		return err
	}

	log.Debug("wrote payload", zap.String("source", src.Path), zap.String("size", humanize.IBytes(uint64(n))))

	return nil
}

func newHeader(bounds layout.Bounds, table layout.TableLayout, diskGUID gpt.GUID) gpt.Header {
	var sig [8]byte
	copy(sig[:], types.GPTSignature)

	return gpt.Header{
		Signature:                sig,
		Revision:                 types.GPTRevision,
		HeaderSize:               types.GPTHeaderSize,
		CurrentLBA:               types.GPTHeaderLBA,
		BackupLBA:                bounds.BackupHeaderLBA,
		FirstUsableLBA:           bounds.FirstUsableLBA,
		LastUsableLBA:            bounds.LastUsableLBA,
		DiskGUID:                 diskGUID,
		PartitionEntryLBA:        types.GPTPrimaryTableLBA,
		NumberOfPartitionEntries: table.TableLength,
		SizeOfPartitionEntry:     table.EntrySize,
	}
}

// encodeTable lays entries out sequentially; remaining slots stay zero.
func encodeTable(entries []gpt.PartitionEntry, table layout.TableLayout) []byte {
	raw := make([]byte, table.Bytes())
	for i, e := range entries {
		copy(raw[i*int(table.EntrySize):], gpt.EncodePartitionEntry(e))
	}
	return raw
}

func patchUint32(dev interfaces.BlockDevice, lba uint64, offset int, value uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], value)

	if _, err := dev.WriteAt(buf[:], int64(lba*dev.BlockSize())+int64(offset)); err != nil {
		return fmt.Errorf("failed to patch checksum at LBA %d offset %d: %w", lba, offset, err)
	}
	return nil
}
