package gpt

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderChecksumIgnoresCRCField(t *testing.T) {
	raw := EncodeHeader(createValidHeader(t))
	sum := HeaderChecksum(raw, 92)

	binary.LittleEndian.PutUint32(raw[16:20], sum)
	assert.Equal(t, sum, HeaderChecksum(raw, 92), "stored CRC must not change the checksum")

	zeroed := make([]byte, 92)
	copy(zeroed, raw)
	binary.LittleEndian.PutUint32(zeroed[16:20], 0)
	assert.Equal(t, crc32.ChecksumIEEE(zeroed), sum)
}

func TestHeaderChecksumDoesNotModifyInput(t *testing.T) {
	raw := EncodeHeader(createValidHeader(t))
	binary.LittleEndian.PutUint32(raw[16:20], 0x11223344)

	HeaderChecksum(raw, 92)
	assert.Equal(t, uint32(0x11223344), binary.LittleEndian.Uint32(raw[16:20]))
}

func TestHeaderChecksumDetectsChange(t *testing.T) {
	h := createValidHeader(t)
	before := HeaderChecksum(EncodeHeader(h), 92)

	h.LastUsableLBA--
	assert.NotEqual(t, before, HeaderChecksum(EncodeHeader(h), 92))
}

func TestTableChecksum(t *testing.T) {
	table := make([]byte, 128*128)
	assert.Equal(t, crc32.ChecksumIEEE(table), TableChecksum(table))

	table[5] = 1
	assert.NotEqual(t, crc32.ChecksumIEEE(make([]byte, 128*128)), TableChecksum(table))
}
