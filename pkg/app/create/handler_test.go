package create

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/deploymenttheory/go-gptimage/internal/layout"
	"github.com/deploymenttheory/go-gptimage/internal/payload"
	"github.com/deploymenttheory/go-gptimage/pkg/app"
)

const testTable = `partition_table=gpt
create -z mmcblk0
add -b 34 -s 64 -t efi -u 80868086-8086-8086-8086-000000000100 -l ESP -T 0 -P 0 1 mmcblk0
add -b 98 -s 16 -t data -u 80868086-8086-8086-8086-000000000101 -l misc -T 0 -P 0 2 mmcblk0
add -b 114 -s $calc($lba_end-16) -t data -u 80868086-8086-8086-8086-000000000102 -l cache -T 0 -P 0 3 mmcblk0
add -s 16 -t data broken
`

// createTestWorkspace writes a partition table, an ESP binary and fake host tools
// into a temporary directory.
func createTestWorkspace(t *testing.T, table string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partition.tbl"), []byte(table), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "esp.img"), bytes.Repeat([]byte("ESP!"), 256), 0o644))

	hostOut := t.TempDir()
	bin := filepath.Join(hostOut, "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "make_ext4fs"),
		[]byte("#!/bin/sh\nhead -c \"$2\" /dev/zero | tr '\\000' '\\345' > \"$5\"\n"), 0o755))

	return dir, hostOut
}

func newTestRequest(dir, hostOut string) *Request {
	return &Request{
		ImagePath:  "gpt.img",
		WorkingDir: dir,
		TablePath:  "partition.tbl",
		BlockSize:  512,
		ImageSize:  1024 * 1024,
		Table:      layout.DefaultTableLayout(),
		Binaries: payload.Binaries{
			"esp":   "esp.img",
			"misc":  "none",
			"cache": "dummy.img",
		},
		HostOutDir: hostOut,
	}
}

func newTestContext(t *testing.T) *app.Context {
	ctx := app.NewContext()
	ctx.SetLogger(zaptest.NewLogger(t))
	return ctx
}

func TestHandle(t *testing.T) {
	dir, hostOut := createTestWorkspace(t, testTable)

	// A stale image is replaced
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gpt.img"), make([]byte, 3*1024*1024), 0o644))

	req := newTestRequest(dir, hostOut)
	req.Strict = true
	req.Show = true

	resp, err := Handle(newTestContext(t), req)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "gpt.img"), resp.Image)
	assert.Equal(t, 3, resp.Partitions)
	assert.True(t, resp.Verified)
	assert.Equal(t, DescriptionStats{
		Path:       filepath.Join(dir, "partition.tbl"),
		Lines:      6,
		Directives: 3,
		Skipped:    1,
	}, resp.Description)

	require.NotNil(t, resp.Layout)
	assert.Equal(t, resp.DiskGUID, resp.Layout.Header.DiskGUID)
	require.Len(t, resp.Layout.Partitions, 3)
	assert.Equal(t, "cache", resp.Layout.Partitions[2].Name)
	assert.Equal(t, uint64(114+1884-1), resp.Layout.Partitions[2].LastLBA)

	raw, err := os.ReadFile(resp.Image)
	require.NoError(t, err)
	require.Len(t, raw, 1024*1024)

	assert.Equal(t, bytes.Repeat([]byte("ESP!"), 256), raw[34*512:34*512+1024])
	assert.Equal(t, make([]byte, 16*512), raw[98*512:114*512])
	assert.Equal(t, bytes.Repeat([]byte{0xE5}, 1884*512), raw[114*512:1998*512])
}

func TestHandleErrors(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		modify  func(*Request)
		errCode string
		created bool
	}{
		{
			name:    "missing image path",
			table:   testTable,
			modify:  func(r *Request) { r.ImagePath = "" },
			errCode: app.ErrCodeInvalidInput,
		},
		{
			name:    "working dir does not exist",
			table:   testTable,
			modify:  func(r *Request) { r.WorkingDir = filepath.Join(r.WorkingDir, "absent") },
			errCode: app.ErrCodeInvalidInput,
		},
		{
			name:    "zero image size",
			table:   testTable,
			modify:  func(r *Request) { r.ImageSize = 0 },
			errCode: app.ErrCodeInvalidInput,
		},
		{
			name:    "image size not a multiple of the block size",
			table:   testTable,
			modify:  func(r *Request) { r.ImageSize = 1024*1024 + 1 },
			errCode: app.ErrCodeSize,
		},
		{
			name:    "empty partition entry array",
			table:   testTable,
			modify:  func(r *Request) { r.Table.TableLength = 0 },
			errCode: app.ErrCodeInvalidInput,
		},
		{
			name:    "partition entry array too large for the image",
			table:   testTable,
			modify:  func(r *Request) { r.Table.TableLength = 8192 },
			errCode: app.ErrCodeSize,
		},
		{
			name:    "missing table",
			table:   testTable,
			modify:  func(r *Request) { r.TablePath = "absent.tbl" },
			errCode: app.ErrCodeIO,
		},
		{
			name:    "table without directives",
			table:   "partition_table=gpt\n",
			errCode: app.ErrCodeInvalidInput,
		},
		{
			name:    "unknown partition type",
			table:   "add -b 34 -s 64 -t bogus -u 80868086-8086-8086-8086-000000000100 -l ESP -T 0 -P 0 mmcblk0\n",
			errCode: app.ErrCodeUnknownType,
		},
		{
			name:    "missing binary",
			table:   testTable,
			modify:  func(r *Request) { r.Binaries["esp"] = "absent.img" },
			errCode: app.ErrCodeMissingBinary,
		},
		{
			name:    "partition past the end of the image",
			table:   "add -b 34 -s 4096 -t data -u 80868086-8086-8086-8086-000000000100 -l misc -T 0 -P 0 mmcblk0\n",
			errCode: app.ErrCodeSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, hostOut := createTestWorkspace(t, tt.table)
			req := newTestRequest(dir, hostOut)
			if tt.modify != nil {
				tt.modify(req)
			}

			_, err := Handle(newTestContext(t), req)
			require.Error(t, err)

			var common *app.CommonError
			require.ErrorAs(t, err, &common)
			assert.Equal(t, tt.errCode, common.Code)

			assert.NoFileExists(t, filepath.Join(dir, "gpt.img"))
		})
	}
}

func TestHandleConfiguredTableLayout(t *testing.T) {
	dir, hostOut := createTestWorkspace(t, testTable)
	req := newTestRequest(dir, hostOut)
	req.Table = layout.TableLayout{EntrySize: 128, TableLength: 8}
	req.Strict = true
	req.Show = true

	resp, err := Handle(newTestContext(t), req)
	require.NoError(t, err)

	// 8 x 128 bytes fit in two blocks, leaving usable blocks 4..2043
	header := resp.Layout.Header
	assert.Equal(t, uint32(8), header.EntryCount)
	assert.Equal(t, uint64(4), header.FirstUsableLBA)
	assert.Equal(t, uint64(2043), header.LastUsableLBA)
	require.NotNil(t, resp.Layout.Backup)
	assert.Equal(t, uint64(2044), resp.Layout.Backup.EntryLBA)
	assert.Equal(t, uint64(2043-16-1), resp.Layout.Partitions[2].LastLBA)
}

func TestFormatOutput(t *testing.T) {
	dir, hostOut := createTestWorkspace(t, testTable)
	req := newTestRequest(dir, hostOut)

	resp, err := Handle(newTestContext(t), req)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, FormatOutput(&buf, resp, "table"))
	assert.Contains(t, buf.String(), "Created "+resp.Image+" (1.0 MiB, 512-byte blocks)")
	assert.Contains(t, buf.String(), "Partitions: 3")
	assert.Contains(t, buf.String(), "(1 malformed directives ignored)")
	assert.NotContains(t, buf.String(), "Protective MBR")

	resp.Layout = nil
	buf.Reset()
	require.NoError(t, FormatOutput(&buf, resp, "json"))
	assert.Contains(t, buf.String(), `"disk_guid": "`+resp.DiskGUID+`"`)
	assert.NotContains(t, buf.String(), "layout")

	buf.Reset()
	require.NoError(t, FormatOutput(&buf, resp, "yaml"))
	assert.Contains(t, buf.String(), "partitions: 3")

	assert.Error(t, FormatOutput(&buf, resp, "csv"))
}
