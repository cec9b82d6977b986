package image

import (
	"go.uber.org/zap"

	"github.com/deploymenttheory/go-gptimage/internal/interfaces"
	"github.com/deploymenttheory/go-gptimage/internal/layout"
	"github.com/deploymenttheory/go-gptimage/internal/parsers/gpt"
)

// Option to control image building and reading.
type Option func(*Options)

// Options for building and reading images.
type Options struct {
	Logger     *zap.Logger
	Producer   interfaces.PayloadProducer
	WorkingDir string
	Table      layout.TableLayout
	DiskGUID   *gpt.GUID
	Strict     bool
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithProducer sets the producer of synthesized payloads.
func WithProducer(producer interfaces.PayloadProducer) Option {
	return func(o *Options) {
		o.Producer = producer
	}
}

// WithWorkingDir sets the directory relative binary names are resolved against.
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithTableLayout overrides the 128 x 128-byte partition entry array.
func WithTableLayout(table layout.TableLayout) Option {
	return func(o *Options) {
		o.Table = table
	}
}

// WithDiskGUID fixes the disk GUID instead of generating a random one.
func WithDiskGUID(guid gpt.GUID) Option {
	return func(o *Options) {
		o.DiskGUID = &guid
	}
}

// WithStrict makes reads verify checksums and the backup copies.
func WithStrict(strict bool) Option {
	return func(o *Options) {
		o.Strict = strict
	}
}

// NewDefaultOptions builds options with defaults.
func NewDefaultOptions(setters ...Option) *Options {
	opts := &Options{
		Logger: zap.NewNop(),
		Table:  layout.DefaultTableLayout(),
	}

	for _, setter := range setters {
		setter(opts)
	}

	return opts
}
