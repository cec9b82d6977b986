package interfaces

import "context"

// PayloadProducer creates partition payloads the image builder cannot copy as is.
// Implementations call out to external filesystem tooling; the builder only checks
// the size of what they produce.
type PayloadProducer interface {
	// MakeEmptyFilesystem writes an empty filesystem image of exactly byteSize bytes
	// to outputPath, labelled with label.
	MakeEmptyFilesystem(ctx context.Context, outputPath string, byteSize uint64, label string) error

	// ConvertSparseToRaw expands a sparse image and returns the path of the raw copy.
	ConvertSparseToRaw(ctx context.Context, inputPath string) (string, error)
}
