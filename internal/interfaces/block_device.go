// File: internal/interfaces/block_device.go
package interfaces

import "io"

// BlockDeviceReader provides methods for reading from an image by logical block
type BlockDeviceReader interface {
	io.ReaderAt

	// ReadBlocks reads count consecutive blocks starting at lba
	ReadBlocks(lba uint64, count uint64) ([]byte, error)

	// BlockSize returns the size of a single block in bytes
	BlockSize() uint64

	// TotalBlocks returns the total number of blocks in the image
	TotalBlocks() uint64

	// Size returns the total size of the image in bytes
	Size() int64
}

// BlockDeviceWriter provides methods for writing to an image by logical block
type BlockDeviceWriter interface {
	io.WriterAt

	// WriteBlocks writes data starting at lba; data need not be block aligned
	WriteBlocks(lba uint64, data []byte) error

	// ZeroBlocks overwrites count blocks starting at lba with zeroes
	ZeroBlocks(lba uint64, count uint64) error

	// Sync commits written data to storage
	Sync() error
}

// BlockDevice represents an open image usable for both reading and writing
type BlockDevice interface {
	BlockDeviceReader
	BlockDeviceWriter
	io.Closer
}
