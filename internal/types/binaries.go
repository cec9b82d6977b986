package types

// Binary filename sentinels understood by the image builder.
const (
	BinaryNone   = "none"       // Partition is left zero-filled
	BinaryDummy  = "dummy.img"  // An empty filesystem is synthesized
	BinarySystem = "system.img" // A sparse image converted to raw before copy

	UnsparsedSuffix = ".decomp"
)

// DefaultAndroidBinaries lists the well-known Android partitions and the binary
// used to fill each one when nothing else is configured.
var DefaultAndroidBinaries = map[string]string{
	"ESP":        "esp.img",
	"reserved":   BinaryNone,
	"boot":       "boot.img",
	"recovery":   "recovery.img",
	"fastboot":   "droidboot.img",
	"reserved_1": BinaryNone,
	"test":       BinaryNone,
	"panic":      BinaryNone,
	"factory":    BinaryDummy,
	"misc":       BinaryNone,
	"config":     BinaryDummy,
	"cache":      BinaryDummy,
	"logs":       BinaryDummy,
	"system":     BinarySystem,
	"data":       BinaryDummy,
}
