package create

import (
	"github.com/deploymenttheory/go-gptimage/internal/layout"
	"github.com/deploymenttheory/go-gptimage/internal/payload"
	"github.com/deploymenttheory/go-gptimage/pkg/app/show"
)

// Request represents an image creation request
type Request struct {
	ImagePath  string
	WorkingDir string
	TablePath  string
	BlockSize  uint64
	ImageSize  uint64 // Bytes
	Table      layout.TableLayout
	Binaries   payload.Binaries
	HostOutDir string
	Strict     bool
	Show       bool
}

// Response describes the image that was written
type Response struct {
	Image       string           `json:"image" yaml:"image"`
	ImageSize   uint64           `json:"image_size" yaml:"image_size"`
	BlockSize   uint64           `json:"block_size" yaml:"block_size"`
	DiskGUID    string           `json:"disk_guid" yaml:"disk_guid"`
	Partitions  int              `json:"partitions" yaml:"partitions"`
	Verified    bool             `json:"verified" yaml:"verified"`
	Description DescriptionStats `json:"description" yaml:"description"`
	Layout      *show.Response   `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// DescriptionStats summarizes the partition table description that was parsed
type DescriptionStats struct {
	Path       string `json:"path" yaml:"path"`
	Lines      int    `json:"lines" yaml:"lines"`
	Directives int    `json:"directives" yaml:"directives"`
	Skipped    int    `json:"skipped" yaml:"skipped"`
}
