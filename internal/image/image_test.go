package image

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/deploymenttheory/go-gptimage/internal/layout"
	"github.com/deploymenttheory/go-gptimage/internal/parsers/description"
	"github.com/deploymenttheory/go-gptimage/internal/parsers/gpt"
	"github.com/deploymenttheory/go-gptimage/internal/payload"
	"github.com/deploymenttheory/go-gptimage/internal/types"
)

// 1 MiB image with 512-byte blocks: usable blocks 34..2014, backup table at 2015,
// backup header at 2047.
const testImageSize = 1024 * 1024

const testTable = `add -b 34 -s 64 -t efi -u 80868086-8086-8086-8086-000000000100 -l ESP -T 0 -P 0 1 mmcblk0
add -b 98 -s 16 -t data -u 80868086-8086-8086-8086-000000000101 -l misc -T 3 -P 0 2 mmcblk0
add -b 114 -s 32 -t data -u 80868086-8086-8086-8086-000000000102 -l cache -T 0 -P 0 3 mmcblk0
add -b 146 -s $calc($lba_end-16) -t data -u 80868086-8086-8086-8086-000000000103 -l data -T 0 -P 0 4 mmcblk0
`

type fakeProducer struct{}

func (fakeProducer) MakeEmptyFilesystem(_ context.Context, outputPath string, byteSize uint64, _ string) error {
	return os.WriteFile(outputPath, bytes.Repeat([]byte{0xE4}, int(byteSize)), 0o644)
}

func (fakeProducer) ConvertSparseToRaw(_ context.Context, inputPath string) (string, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return "", err
	}
	return inputPath + ".decomp", os.WriteFile(inputPath+".decomp", data, 0o644)
}

type testBuild struct {
	dir      string
	path     string
	specs    []layout.PartitionSpec
	binaries payload.Binaries
	builder  *Builder
	diskGUID gpt.GUID
}

func createTestBuild(t *testing.T, table string) *testBuild {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "esp.img"), bytes.Repeat([]byte("ESP!"), 1000), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system.img"), []byte("system payload"), 0o644))

	desc, err := description.Parse(strings.NewReader(table))
	require.NoError(t, err)

	diskGUID, err := gpt.ParseGUID("5d6bd4e8-1f2b-4c4e-9b1a-0d7c6e5f4a3b")
	require.NoError(t, err)

	geometry, err := layout.NewGeometry(512, testImageSize)
	require.NoError(t, err)

	return &testBuild{
		dir:   dir,
		path:  filepath.Join(dir, "gpt.img"),
		specs: desc.Specs,
		binaries: payload.Binaries{
			"esp":   "esp.img",
			"misc":  "none",
			"cache": "dummy.img",
			"data":  "system.img",
		},
		builder: NewBuilder(geometry,
			WithLogger(zaptest.NewLogger(t)),
			WithProducer(fakeProducer{}),
			WithWorkingDir(dir),
			WithDiskGUID(diskGUID)),
		diskGUID: diskGUID,
	}
}

func readRaw(t *testing.T, path string, off, n int) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data[off : off+n]
}

func TestBuildRoundTrip(t *testing.T) {
	tb := createTestBuild(t, testTable)

	built, err := tb.builder.Build(context.Background(), tb.path, tb.specs, tb.binaries)
	require.NoError(t, err)

	read, err := Read(tb.path, 512, WithStrict(true))
	require.NoError(t, err)

	assert.Equal(t, built.Protective, read.Protective)
	assert.Equal(t, built.Header, read.Header)
	assert.Equal(t, built.Backup, read.Backup)
	assert.Equal(t, built.Entries, read.Entries)
	assert.Equal(t, built.RawTable, read.RawTable)
	assert.Equal(t, uint64(2048), read.Geometry.Blocks())

	h := read.Header
	assert.Equal(t, uint64(1), h.CurrentLBA)
	assert.Equal(t, uint64(2047), h.BackupLBA)
	assert.Equal(t, uint64(34), h.FirstUsableLBA)
	assert.Equal(t, uint64(2014), h.LastUsableLBA)
	assert.Equal(t, uint64(2), h.PartitionEntryLBA)
	assert.Equal(t, tb.diskGUID, h.DiskGUID)

	parts := read.Partitions()
	require.Len(t, parts, 4)

	expected := []struct {
		label string
		first uint64
		last  uint64
		attr  uint64
		typ   string
	}{
		{"ESP", 34, 97, 0, "C12A7328-F81F-11D2-BA4B-00A0C93EC93B"},
		{"misc", 98, 113, 3, "0FC63DAF-8483-4772-8E79-3D69D8477DE4"},
		{"cache", 114, 145, 0, "0FC63DAF-8483-4772-8E79-3D69D8477DE4"},
		{"data", 146, 146 + (2014 - 146 - 16) - 1, 0, "0FC63DAF-8483-4772-8E79-3D69D8477DE4"},
	}

	for i, e := range expected {
		entry := parts[i].Entry
		assert.Equal(t, i, parts[i].Slot)
		assert.Equal(t, e.label, entry.Label())
		assert.Equal(t, e.first, entry.FirstLBA, e.label)
		assert.Equal(t, e.last, entry.LastLBA, e.label)
		assert.Equal(t, e.attr, entry.Attributes, e.label)
		assert.True(t, strings.EqualFold(e.typ, entry.TypeGUID.String()), e.label)
	}

	misc, ok := read.Partition("misc")
	require.True(t, ok)
	assert.Equal(t, "80868086-8086-8086-8086-000000000101", misc.UniqueGUID.String())
}

func TestBuildPayloads(t *testing.T) {
	tb := createTestBuild(t, testTable)

	_, err := tb.builder.Build(context.Background(), tb.path, tb.specs, tb.binaries)
	require.NoError(t, err)

	// provided
	assert.Equal(t, bytes.Repeat([]byte("ESP!"), 1000), readRaw(t, tb.path, 34*512, 4000))
	assert.Equal(t, make([]byte, 64*512-4000), readRaw(t, tb.path, 34*512+4000, 64*512-4000))

	// absent
	assert.Equal(t, make([]byte, 16*512), readRaw(t, tb.path, 98*512, 16*512))

	// synthesized empty filesystem fills the partition exactly
	assert.Equal(t, bytes.Repeat([]byte{0xE4}, 32*512), readRaw(t, tb.path, 114*512, 32*512))

	// unsparsed
	assert.Equal(t, []byte("system payload"), readRaw(t, tb.path, 146*512, 14))

	assert.NoFileExists(t, filepath.Join(tb.dir, "system.img.decomp"))
	assert.FileExists(t, filepath.Join(tb.dir, "system.img"))
}

func TestBuildLayoutIsBitExact(t *testing.T) {
	tb := createTestBuild(t, testTable)

	_, err := tb.builder.Build(context.Background(), tb.path, tb.specs, tb.binaries)
	require.NoError(t, err)

	mbr := readRaw(t, tb.path, 0, 512)
	assert.Equal(t, make([]byte, 446), mbr[:446])
	assert.Equal(t, []byte{0x00, 0x00, 0x02, 0x00, 0xEE, 0x9B, 0xF7, 0xCC, 0x01, 0x00, 0x00, 0x00, 0x27, 0x6B, 0xEE, 0x00}, mbr[446:462])
	assert.Equal(t, make([]byte, 48), mbr[462:510])
	assert.Equal(t, []byte{0x55, 0xAA}, mbr[510:512])

	header := readRaw(t, tb.path, 512, 512)
	assert.Equal(t, []byte("EFI PART"), header[0:8])
	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x00}, header[8:12])
	assert.Equal(t, []byte{92, 0, 0, 0}, header[12:16])
	assert.Equal(t, make([]byte, 512-92), header[92:], "rest of the header block is zero")

	// unused entry slots are zero
	table := readRaw(t, tb.path, 2*512, 128*128)
	assert.Equal(t, make([]byte, 124*128), table[4*128:])
}

func TestBuildMirrorInvariant(t *testing.T) {
	tb := createTestBuild(t, testTable)

	_, err := tb.builder.Build(context.Background(), tb.path, tb.specs, tb.binaries)
	require.NoError(t, err)

	primaryTable := readRaw(t, tb.path, 2*512, 128*128)
	backupTable := readRaw(t, tb.path, 2015*512, 128*128)
	assert.Equal(t, primaryTable, backupTable)

	primary, err := gpt.DecodeHeader(readRaw(t, tb.path, 512, 92))
	require.NoError(t, err)
	backup, err := gpt.DecodeHeader(readRaw(t, tb.path, 2047*512, 92))
	require.NoError(t, err)

	assert.Equal(t, primary.CurrentLBA, backup.BackupLBA)
	assert.Equal(t, primary.BackupLBA, backup.CurrentLBA)
	assert.Equal(t, uint64(2015), backup.PartitionEntryLBA)
	assert.Equal(t, primary.DiskGUID, backup.DiskGUID)
	assert.Equal(t, primary.FirstUsableLBA, backup.FirstUsableLBA)
	assert.Equal(t, primary.LastUsableLBA, backup.LastUsableLBA)
	assert.Equal(t, primary.PartitionEntryArrayCRC32, backup.PartitionEntryArrayCRC32)
}

func TestBuildChecksumInvariant(t *testing.T) {
	tb := createTestBuild(t, testTable)

	_, err := tb.builder.Build(context.Background(), tb.path, tb.specs, tb.binaries)
	require.NoError(t, err)

	table := readRaw(t, tb.path, 2*512, 128*128)
	tableCRC := crc32.ChecksumIEEE(table)

	for _, lba := range []int{1, 2047} {
		raw := append([]byte(nil), readRaw(t, tb.path, lba*512, 92)...)
		assert.Equal(t, tableCRC, binary.LittleEndian.Uint32(raw[88:92]), "table CRC at LBA %d", lba)

		stored := binary.LittleEndian.Uint32(raw[16:20])
		copy(raw[16:20], []byte{0, 0, 0, 0})
		assert.Equal(t, crc32.ChecksumIEEE(raw), stored, "header CRC at LBA %d", lba)
	}
}

func TestBuildOversizedPayload(t *testing.T) {
	tb := createTestBuild(t, testTable)
	// 64-block ESP, payload one byte over
	require.NoError(t, os.WriteFile(filepath.Join(tb.dir, "esp.img"), make([]byte, 64*512+1), 0o644))

	_, err := tb.builder.Build(context.Background(), tb.path, tb.specs, tb.binaries)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrSize)

	for _, lba := range []int{1, 2047} {
		raw := readRaw(t, tb.path, lba*512, 92)
		assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(raw[16:20]), "header CRC at LBA %d", lba)
		assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(raw[88:92]), "table CRC at LBA %d", lba)
	}
}

func TestBuildPayloadExactlyFits(t *testing.T) {
	tb := createTestBuild(t, testTable)
	require.NoError(t, os.WriteFile(filepath.Join(tb.dir, "esp.img"), make([]byte, 64*512), 0o644))

	_, err := tb.builder.Build(context.Background(), tb.path, tb.specs, tb.binaries)
	assert.NoError(t, err)
}

func TestBuildRejectsBeforeWriting(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		binaries payload.Binaries
		err      error
	}{
		{
			name:  "unknown type",
			table: strings.Replace(testTable, "-t efi", "-t bogus", 1),
			err:   types.ErrUnknownType,
		},
		{
			name:  "invalid guid",
			table: strings.Replace(testTable, "80868086-8086-8086-8086-000000000101", "not-a-guid", 1),
			err:   types.ErrFormat,
		},
		{
			name:  "overlapping partitions",
			table: strings.Replace(testTable, "-b 98", "-b 90", 1),
			err:   types.ErrSize,
		},
		{
			name:     "missing binary",
			table:    testTable,
			binaries: payload.Binaries{"esp": "missing.img", "misc": "none", "cache": "dummy.img"},
			err:      types.ErrMissingBinary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := createTestBuild(t, tt.table)
			binaries := tb.binaries
			if tt.binaries != nil {
				binaries = tt.binaries
			}

			_, err := tb.builder.Build(context.Background(), tb.path, tb.specs, binaries)
			assert.ErrorIs(t, err, tt.err)
			assert.NoFileExists(t, tb.path)
		})
	}
}

func TestBuildCancelled(t *testing.T) {
	tb := createTestBuild(t, testTable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tb.builder.Build(ctx, tb.path, tb.specs, tb.binaries)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, tb.path)
}

func TestBuildLargeBlocks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gpt.img")

	geometry, err := layout.NewGeometry(4096, 4*1024*1024)
	require.NoError(t, err)

	specs := []layout.PartitionSpec{
		{Label: "data", Size: layout.Remaining(0), TypeName: "data", GUID: "80868086-8086-8086-8086-000000000103", Index: 1},
	}

	_, err = NewBuilder(geometry).Build(context.Background(), path, specs, payload.Binaries{"data": "none"})
	require.NoError(t, err)

	img, err := Read(path, 4096, WithStrict(true))
	require.NoError(t, err)

	// 1024 blocks, 4-block tables
	assert.Equal(t, uint64(6), img.Header.FirstUsableLBA)
	assert.Equal(t, uint64(1018), img.Header.LastUsableLBA)
	assert.Equal(t, uint64(1023), img.Header.BackupLBA)

	data, ok := img.Partition("data")
	require.True(t, ok)
	assert.Equal(t, uint64(6), data.FirstLBA)
	assert.Equal(t, uint64(1017), data.LastLBA)
}
