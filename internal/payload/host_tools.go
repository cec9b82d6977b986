package payload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/siderolabs/go-cmd/pkg/cmd"
	"go.uber.org/zap"

	"github.com/deploymenttheory/go-gptimage/internal/interfaces"
	"github.com/deploymenttheory/go-gptimage/internal/types"
)

const (
	makeExt4fsTool = "make_ext4fs"
	simg2imgTool   = "simg2img"
)

// HostTools produces payloads with the Android host build tools.
type HostTools struct {
	hostOutDir string
	logger     *zap.Logger
}

var _ interfaces.PayloadProducer = (*HostTools)(nil)

// Option configures HostTools.
type Option func(*HostTools)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *HostTools) {
		h.logger = logger
	}
}

// NewHostTools returns a producer running tools from hostOutDir/bin.
func NewHostTools(hostOutDir string, setters ...Option) *HostTools {
	h := &HostTools{
		hostOutDir: hostOutDir,
		logger:     zap.NewNop(),
	}

	for _, setter := range setters {
		setter(h)
	}

	return h
}

// MakeEmptyFilesystem runs make_ext4fs -l <size> -L <label> <path>.
func (h *HostTools) MakeEmptyFilesystem(ctx context.Context, outputPath string, byteSize uint64, label string) error {
	tool, err := h.tool(makeExt4fsTool)
	if err != nil {
		return err
	}

	h.logger.Debug("creating empty filesystem",
		zap.String("path", outputPath), zap.Uint64("bytes", byteSize), zap.String("label", label))

	if _, err := cmd.RunContext(ctx, tool, "-l", strconv.FormatUint(byteSize, 10), "-L", label, outputPath); err != nil {
		return fmt.Errorf("failed to create empty filesystem for %q: %w", label, err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("%s did not create %s: %w", makeExt4fsTool, outputPath, err)
	}

	return nil
}

// ConvertSparseToRaw runs simg2img <path> <path>.decomp and returns the raw image path.
func (h *HostTools) ConvertSparseToRaw(ctx context.Context, inputPath string) (string, error) {
	tool, err := h.tool(simg2imgTool)
	if err != nil {
		return "", err
	}

	outputPath := inputPath + types.UnsparsedSuffix
	h.logger.Debug("expanding sparse image", zap.String("input", inputPath), zap.String("output", outputPath))

	if _, err := cmd.RunContext(ctx, tool, inputPath, outputPath); err != nil {
		return "", fmt.Errorf("failed to expand sparse image %s: %w", inputPath, err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("%s did not create %s: %w", simg2imgTool, outputPath, err)
	}

	return outputPath, nil
}

func (h *HostTools) tool(name string) (string, error) {
	path := filepath.Join(h.hostOutDir, "bin", name)

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("host tool %s not found: %w", name, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("host tool %s is a directory", path)
	}

	return path, nil
}
