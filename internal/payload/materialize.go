package payload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/deploymenttheory/go-gptimage/internal/interfaces"
)

// CopyBufferSize bounds the memory used when streaming a payload into an image.
const CopyBufferSize = 1024 * 1024

// Source is a payload file ready to be copied.
type Source struct {
	Path      string
	Temporary bool // Remove after copying
}

// Materialize returns the file holding a payload, running the producer for
// synthesized payloads. Temporary outputs of EmptyFilesystem go to tmpDir.
// It returns a nil Source for absent payloads.
func Materialize(ctx context.Context, producer interfaces.PayloadProducer, p Payload, partitionBytes uint64, tmpDir string) (*Source, error) {
	switch p.Kind {
	case Absent:
		return nil, nil
	case Provided:
		return &Source{Path: p.Path}, nil
	case Synthesize:
		if producer == nil {
			return nil, fmt.Errorf("partition %q needs a payload producer", p.Label)
		}
		switch p.Synthesis {
		case EmptyFilesystem:
			out := filepath.Join(tmpDir, p.Label+".img")
			if err := producer.MakeEmptyFilesystem(ctx, out, partitionBytes, p.Label); err != nil {
				return nil, err
			}
			return &Source{Path: out, Temporary: true}, nil
		case Unsparse:
			out, err := producer.ConvertSparseToRaw(ctx, p.Path)
			if err != nil {
				return nil, err
			}
			return &Source{Path: out, Temporary: true}, nil
		}
	}

	return nil, fmt.Errorf("partition %q: unsupported payload %s/%s", p.Label, p.Kind, p.Synthesis)
}

// Remove deletes a temporary source.
func (s *Source) Remove() error {
	if s == nil || !s.Temporary {
		return nil
	}
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temporary payload %s: %w", s.Path, err)
	}
	return nil
}

// Size returns the size of the source file in bytes.
func (s *Source) Size() (int64, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat payload %s: %w", s.Path, err)
	}
	return info.Size(), nil
}

// CopyTo streams the source into w at offset through a bounded buffer.
func (s *Source) CopyTo(w io.WriterAt, offset int64) (int64, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return 0, fmt.Errorf("failed to open payload %s: %w", s.Path, err)
	}
	defer f.Close()

	buf := make([]byte, CopyBufferSize)
	// Hide os.File's WriterTo so the copy goes through buf
	n, err := io.CopyBuffer(io.NewOffsetWriter(w, offset), struct{ io.Reader }{f}, buf)
	if err != nil {
		return n, fmt.Errorf("failed to copy payload %s: %w", s.Path, err)
	}

	return n, nil
}
