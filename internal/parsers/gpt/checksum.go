package gpt

import (
	"hash/crc32"

	"github.com/deploymenttheory/go-gptimage/internal/types"
)

// HeaderChecksum computes the CRC32 of the first headerSize bytes of a raw header
// with its own CRC field treated as zero.
func HeaderChecksum(raw []byte, headerSize uint32) uint32 {
	n := int(headerSize)
	if n > len(raw) {
		n = len(raw)
	}

	b := make([]byte, n)
	copy(b, raw[:n])

	for i := types.GPTHeaderCRCOffset; i < types.GPTHeaderCRCOffset+4 && i < n; i++ {
		b[i] = 0
	}

	return crc32.ChecksumIEEE(b)
}

// TableChecksum computes the CRC32 of a raw partition entry array.
func TableChecksum(raw []byte) uint32 {
	return crc32.ChecksumIEEE(raw)
}
