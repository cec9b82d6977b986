package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// Document is a storage description: global GPT settings, the target storage
// device and the partitions to create on it.
type Document struct {
	Globals    Globals              `json:"globals"`
	Storage    Device               `json:"storage"`
	Partitions map[string]Partition `json:"partitions"`
}

// Globals holds settings shared by every partition.
type Globals struct {
	FormatTable string     `json:"format_table"`
	GPT         GPTGlobals `json:"gpt"`
}

// GPTGlobals holds GPT-specific settings.
type GPTGlobals struct {
	UUIDPrefix     string `json:"uuid_prefix"`
	LBAStartOffset uint64 `json:"lba_start_offset"`
}

// Device describes the storage device.
type Device struct {
	BaseName   string `json:"base_name"`
	SectorSize uint64 `json:"sector_size"`
}

// Partition describes one partition. Size is in MiB; a size of zero or less takes
// the remaining space, keeping |Length| blocks free. For positive sizes Length is
// an overhead in bytes.
type Partition struct {
	ID       int     `json:"id"`
	Label    *string `json:"label"`
	Size     *int64  `json:"size"`
	Length   int64   `json:"length"`
	Type     string  `json:"type"`
	UUID     string  `json:"uuid"`
	Try      uint64  `json:"try"`
	Priority uint64  `json:"priority"`
	LBAStart *uint64 `json:"lba_start"`
}

// Load reads a storage description and applies an optional override file on top
// of it. A missing override is ignored; a malformed one is an error.
func Load(path, overridePath string, logger *zap.Logger) (*Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := readJSON(path)
	if err != nil {
		return nil, err
	}

	if overridePath != "" {
		override, err := readJSON(overridePath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Info("override file does not exist, not overriding", zap.String("path", overridePath))
		case err != nil:
			return nil, fmt.Errorf("override file malformed: %w", err)
		default:
			base = Merge(base, override)
		}
	}

	return Decode(base)
}

// Decode converts a generic JSON document into a Document.
func Decode(raw map[string]any) (*Document, error) {
	var doc Document

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode storage description: %w", err)
	}

	return &doc, nil
}

// Merge applies override on top of base: nested objects are merged recursively,
// every other value replaces the base value. base is modified and returned.
func Merge(base, override map[string]any) map[string]any {
	if base == nil {
		base = make(map[string]any)
	}

	for k, v := range override {
		sub, ok := v.(map[string]any)
		if !ok {
			base[k] = v
			continue
		}

		existing, _ := base[k].(map[string]any)
		base[k] = Merge(existing, sub)
	}

	return base
}

func readJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return doc, nil
}
