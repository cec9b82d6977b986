package show

import (
	"fmt"

	"github.com/deploymenttheory/go-gptimage/internal/image"
	"github.com/deploymenttheory/go-gptimage/internal/parsers/gpt"
	"github.com/deploymenttheory/go-gptimage/internal/types"
)

// Request represents a request to dump an image's partitioning
type Request struct {
	ImagePath  string
	WorkingDir string
	BlockSize  uint64
	Strict     bool
}

// Response represents the decoded partitioning of an image
type Response struct {
	Image      string          `json:"image" yaml:"image"`
	ImageSize  uint64          `json:"image_size" yaml:"image_size"`
	BlockSize  uint64          `json:"block_size" yaml:"block_size"`
	Verified   bool            `json:"verified" yaml:"verified"`
	Protective ProtectiveInfo  `json:"protective" yaml:"protective"`
	Header     HeaderInfo      `json:"header" yaml:"header"`
	Backup     *HeaderInfo     `json:"backup,omitempty" yaml:"backup,omitempty"`
	Partitions []PartitionInfo `json:"partitions" yaml:"partitions"`
}

// ProtectiveInfo describes the protective record at block 0
type ProtectiveInfo struct {
	Boot        uint32 `json:"boot" yaml:"boot"`
	OSType      uint32 `json:"os_type" yaml:"os_type"`
	CHSStart    uint32 `json:"chs_start" yaml:"chs_start"`
	CHSEnd      uint32 `json:"chs_end" yaml:"chs_end"`
	StartingLBA uint32 `json:"starting_lba" yaml:"starting_lba"`
	SizeLBA     uint32 `json:"size_lba" yaml:"size_lba"`
}

// HeaderInfo describes a GPT header
type HeaderInfo struct {
	Signature       string `json:"signature" yaml:"signature"`
	Revision        string `json:"revision" yaml:"revision"`
	HeaderSize      uint32 `json:"header_size" yaml:"header_size"`
	HeaderCRC32     uint32 `json:"header_crc32" yaml:"header_crc32"`
	CurrentLBA      uint64 `json:"current_lba" yaml:"current_lba"`
	BackupLBA       uint64 `json:"backup_lba" yaml:"backup_lba"`
	FirstUsableLBA  uint64 `json:"first_usable_lba" yaml:"first_usable_lba"`
	LastUsableLBA   uint64 `json:"last_usable_lba" yaml:"last_usable_lba"`
	DiskGUID        string `json:"disk_guid" yaml:"disk_guid"`
	EntryLBA        uint64 `json:"entry_lba" yaml:"entry_lba"`
	EntryCount      uint32 `json:"entry_count" yaml:"entry_count"`
	EntrySize       uint32 `json:"entry_size" yaml:"entry_size"`
	EntryArrayCRC32 uint32 `json:"entry_array_crc32" yaml:"entry_array_crc32"`
}

// PartitionInfo describes one used partition entry
type PartitionInfo struct {
	Slot       int    `json:"slot" yaml:"slot"`
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	TypeGUID   string `json:"type_guid" yaml:"type_guid"`
	UniqueGUID string `json:"unique_guid" yaml:"unique_guid"`
	FirstLBA   uint64 `json:"first_lba" yaml:"first_lba"`
	LastLBA    uint64 `json:"last_lba" yaml:"last_lba"`
	Attributes uint64 `json:"attributes" yaml:"attributes"`
	Size       uint64 `json:"size" yaml:"size"`
}

// NewResponse converts a decoded image into its printable description.
func NewResponse(path string, img *image.GPTImage) *Response {
	resp := &Response{
		Image:      path,
		ImageSize:  img.Geometry.ImageSize,
		BlockSize:  img.Geometry.BlockSize,
		Verified:   img.Backup != nil,
		Protective: newProtectiveInfo(img.Protective),
		Header:     newHeaderInfo(img.Header),
		Partitions: []PartitionInfo{},
	}

	if img.Backup != nil {
		backup := newHeaderInfo(*img.Backup)
		resp.Backup = &backup
	}

	for _, p := range img.Partitions() {
		typeGUID := p.Entry.TypeGUID.String()
		resp.Partitions = append(resp.Partitions, PartitionInfo{
			Slot:       p.Slot,
			Name:       p.Entry.Label(),
			Type:       types.PartitionTypeName(typeGUID),
			TypeGUID:   typeGUID,
			UniqueGUID: p.Entry.UniqueGUID.String(),
			FirstLBA:   p.Entry.FirstLBA,
			LastLBA:    p.Entry.LastLBA,
			Attributes: p.Entry.Attributes,
			Size:       p.Entry.Blocks() * img.Geometry.BlockSize,
		})
	}

	return resp
}

func newProtectiveInfo(r gpt.ProtectiveRecord) ProtectiveInfo {
	return ProtectiveInfo{
		Boot:        r.Boot,
		OSType:      r.OSType,
		CHSStart:    r.CHSStart(),
		CHSEnd:      r.CHSEnd(),
		StartingLBA: r.StartingLBA,
		SizeLBA:     r.SizeLBA,
	}
}

func newHeaderInfo(h gpt.Header) HeaderInfo {
	return HeaderInfo{
		Signature:       string(h.Signature[:]),
		Revision:        fmt.Sprintf("%d.%d", h.Revision>>16, h.Revision&0xFFFF),
		HeaderSize:      h.HeaderSize,
		HeaderCRC32:     h.HeaderCRC32,
		CurrentLBA:      h.CurrentLBA,
		BackupLBA:       h.BackupLBA,
		FirstUsableLBA:  h.FirstUsableLBA,
		LastUsableLBA:   h.LastUsableLBA,
		DiskGUID:        h.DiskGUID.String(),
		EntryLBA:        h.PartitionEntryLBA,
		EntryCount:      h.NumberOfPartitionEntries,
		EntrySize:       h.SizeOfPartitionEntry,
		EntryArrayCRC32: h.PartitionEntryArrayCRC32,
	}
}
