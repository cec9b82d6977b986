package gpt

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"github.com/deploymenttheory/go-gptimage/internal/types"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeName encodes a partition label as UTF-16LE into the fixed-width name field.
// Labels longer than 36 code units are truncated.
func EncodeName(label string) ([types.GPTEntryNameSize]byte, error) {
	var name [types.GPTEntryNameSize]byte

	encoded, err := utf16le.NewEncoder().Bytes([]byte(label))
	if err != nil {
		return name, fmt.Errorf("failed to encode partition name %q: %w", label, err)
	}

	copy(name[:], encoded)
	return name, nil
}

// DecodeName decodes a fixed-width UTF-16LE name field up to its first NUL code unit.
func DecodeName(name [types.GPTEntryNameSize]byte) (string, error) {
	end := len(name)
	for i := 0; i+1 < len(name); i += 2 {
		if name[i] == 0 && name[i+1] == 0 {
			end = i
			break
		}
	}

	decoded, err := utf16le.NewDecoder().Bytes(name[:end])
	if err != nil {
		return "", fmt.Errorf("failed to decode partition name: %w", err)
	}

	return string(bytes.TrimRight(decoded, "\x00")), nil
}
