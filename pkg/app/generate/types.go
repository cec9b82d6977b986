package generate

// Request represents a request to turn a storage description into a partition
// table description
type Request struct {
	StoragePath  string
	OverridePath string
	OutputPath   string // "-" writes to the context's output
	BaseName     string // Replaces storage.base_name when set
}

// Response describes the generated partition table description
type Response struct {
	Output      string `json:"output" yaml:"output"`
	FormatTable string `json:"format_table" yaml:"format_table"`
	BaseName    string `json:"base_name" yaml:"base_name"`
	Partitions  int    `json:"partitions" yaml:"partitions"`
}
