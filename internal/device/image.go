package device

import (
	"fmt"
	"io"
	"os"

	"github.com/deploymenttheory/go-gptimage/internal/interfaces"
)

const zeroChunkSize = 1024 * 1024

// ImageDevice provides block access to a raw disk image file
type ImageDevice struct {
	file      *os.File
	path      string
	size      int64
	blockSize uint64
	writable  bool
}

var (
	_ interfaces.BlockDevice       = (*ImageDevice)(nil)
	_ interfaces.BlockDeviceReader = (*ImageDevice)(nil)
)

// CreateImage creates or truncates the image at path and sizes it to size bytes.
func CreateImage(path string, size int64, blockSize uint64) (*ImageDevice, error) {
	if blockSize == 0 {
		return nil, fmt.Errorf("block size must be positive")
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create image file: %w", err)
	}

	if err := file.Truncate(size); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to size image file to %d bytes: %w", size, err)
	}

	return &ImageDevice{
		file:      file,
		path:      path,
		size:      size,
		blockSize: blockSize,
		writable:  true,
	}, nil
}

// OpenImage opens an existing image read-only.
func OpenImage(path string, blockSize uint64) (*ImageDevice, error) {
	if blockSize == 0 {
		return nil, fmt.Errorf("block size must be positive")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}

	return &ImageDevice{
		file:      file,
		path:      path,
		size:      stat.Size(),
		blockSize: blockSize,
	}, nil
}

// Path returns the image file path
func (d *ImageDevice) Path() string {
	return d.path
}

// ReadAt implements io.ReaderAt
func (d *ImageDevice) ReadAt(p []byte, off int64) (int, error) {
	return d.file.ReadAt(p, off)
}

// WriteAt implements io.WriterAt
func (d *ImageDevice) WriteAt(p []byte, off int64) (int, error) {
	if !d.writable {
		return 0, fmt.Errorf("image %s is opened read-only", d.path)
	}
	return d.file.WriteAt(p, off)
}

// ReadBlocks reads count blocks starting at lba
func (d *ImageDevice) ReadBlocks(lba uint64, count uint64) ([]byte, error) {
	buf := make([]byte, count*d.blockSize)
	off := int64(lba * d.blockSize)

	n, err := d.file.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read %d blocks at LBA %d: %w", count, lba, err)
	}
	if n < len(buf) {
		return nil, fmt.Errorf("short read at LBA %d: got %d bytes, want %d: %w", lba, n, len(buf), io.ErrUnexpectedEOF)
	}

	return buf, nil
}

// WriteBlocks writes data starting at lba
func (d *ImageDevice) WriteBlocks(lba uint64, data []byte) error {
	if _, err := d.WriteAt(data, int64(lba*d.blockSize)); err != nil {
		return fmt.Errorf("failed to write %d bytes at LBA %d: %w", len(data), lba, err)
	}
	return nil
}

// ZeroBlocks overwrites count blocks starting at lba with zeroes
func (d *ImageDevice) ZeroBlocks(lba uint64, count uint64) error {
	zero := make([]byte, zeroChunkSize)
	off := int64(lba * d.blockSize)
	remaining := int64(count * d.blockSize)

	for remaining > 0 {
		n := int64(len(zero))
		if remaining < n {
			n = remaining
		}
		if _, err := d.WriteAt(zero[:n], off); err != nil {
			return fmt.Errorf("failed to zero blocks at LBA %d: %w", lba, err)
		}
		off += n
		remaining -= n
	}

	return nil
}

// Sync commits written data to storage
func (d *ImageDevice) Sync() error {
	if !d.writable {
		return nil
	}
	return d.file.Sync()
}

// Size returns the size of the image in bytes
func (d *ImageDevice) Size() int64 {
	return d.size
}

// BlockSize returns the logical block size
func (d *ImageDevice) BlockSize() uint64 {
	return d.blockSize
}

// TotalBlocks returns the number of whole blocks in the image
func (d *ImageDevice) TotalBlocks() uint64 {
	return uint64(d.size) / d.blockSize
}

// Close closes the image file
func (d *ImageDevice) Close() error {
	if d.file != nil {
		err := d.file.Close()
		d.file = nil
		return err
	}
	return nil
}
