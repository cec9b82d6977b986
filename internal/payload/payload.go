package payload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/deploymenttheory/go-gptimage/internal/layout"
	"github.com/deploymenttheory/go-gptimage/internal/types"
)

// Kind is what the builder does with a partition's payload.
type Kind int

const (
	// Absent leaves the partition zero-filled.
	Absent Kind = iota
	// Synthesize produces the payload with external tooling first.
	Synthesize
	// Provided copies an existing file as is.
	Provided
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Synthesize:
		return "synthesize"
	case Provided:
		return "provided"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Synthesis is how a synthesized payload is produced.
type Synthesis int

const (
	// EmptyFilesystem creates an empty filesystem the size of the partition.
	EmptyFilesystem Synthesis = iota
	// Unsparse expands a sparse image.
	Unsparse
)

func (s Synthesis) String() string {
	switch s {
	case EmptyFilesystem:
		return "empty-filesystem"
	case Unsparse:
		return "unsparse"
	default:
		return fmt.Sprintf("Synthesis(%d)", int(s))
	}
}

// Payload is the decided content of one partition.
type Payload struct {
	Label     string
	Kind      Kind
	Synthesis Synthesis
	Path      string // Provided file, or sparse source for Unsparse
}

// Binaries maps partition labels to binary file names.
type Binaries map[string]string

// Lookup returns the binary for label. Labels are matched without case since
// configuration keys are lower-cased.
func (b Binaries) Lookup(label string) (string, bool) {
	if binary, ok := b[label]; ok {
		return binary, true
	}
	for key, binary := range b {
		if strings.EqualFold(key, label) {
			return binary, true
		}
	}
	return "", false
}

// Classify decides a payload from a binary name. Names are resolved against dir
// unless absolute.
func Classify(label, binary, dir string) Payload {
	path := binary
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, binary)
	}

	switch filepath.Base(binary) {
	case types.BinaryNone:
		return Payload{Label: label, Kind: Absent}
	case types.BinaryDummy:
		return Payload{Label: label, Kind: Synthesize, Synthesis: EmptyFilesystem}
	case types.BinarySystem:
		return Payload{Label: label, Kind: Synthesize, Synthesis: Unsparse, Path: path}
	default:
		return Payload{Label: label, Kind: Provided, Path: path}
	}
}

// Plan decides the payload of every placement before any image bytes are written.
// All unmapped labels and missing files are reported together.
func Plan(placements []layout.Placement, binaries Binaries, dir string) ([]Payload, error) {
	var result *multierror.Error
	payloads := make([]Payload, 0, len(placements))

	for _, p := range placements {
		label := p.Spec.Label

		binary, ok := binaries.Lookup(label)
		if !ok {
			result = multierror.Append(result, fmt.Errorf("%w: no binary configured for partition %q", types.ErrMissingBinary, label))
			continue
		}

		payload := Classify(label, binary, dir)
		if payload.Path != "" {
			if _, err := os.Stat(payload.Path); err != nil {
				result = multierror.Append(result, fmt.Errorf("%w: partition %q: %v", types.ErrMissingBinary, label, err))
				continue
			}
		}

		payloads = append(payloads, payload)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	return payloads, nil
}
