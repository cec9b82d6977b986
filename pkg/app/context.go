package app

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Context holds application-wide configuration and state
type Context struct {
	context.Context

	// Output preferences
	OutputFormat string
	Verbose      bool
	Quiet        bool
	NoColor      bool

	// Out receives command results; logs go to stderr
	Out io.Writer

	logger *zap.Logger
}

// NewContext creates a new application context
func NewContext() *Context {
	return &Context{
		Context:      context.Background(),
		OutputFormat: "table",
		Out:          os.Stdout,
	}
}

// WithContext returns a copy of the context carrying parent's cancellation
func (c *Context) WithContext(parent context.Context) *Context {
	newCtx := *c
	newCtx.Context = parent
	return &newCtx
}

// SetLogger replaces the logger built from the verbosity settings
func (c *Context) SetLogger(logger *zap.Logger) {
	c.logger = logger
}

// Logger returns the application logger, building it from the verbosity
// settings on first use
func (c *Context) Logger() *zap.Logger {
	if c.logger == nil {
		logger, err := NewLogger(c.Verbose, c.Quiet)
		if err != nil {
			logger = zap.NewNop()
		}
		c.logger = logger
	}
	return c.logger
}

// Log outputs an informational message unless quiet
func (c *Context) Log(message string, fields ...zap.Field) {
	c.Logger().Info(message, fields...)
}

// Debug outputs a message in verbose mode only
func (c *Context) Debug(message string, fields ...zap.Field) {
	c.Logger().Debug(message, fields...)
}

// Error outputs an error message
func (c *Context) Error(message string, fields ...zap.Field) {
	c.Logger().Error(message, fields...)
}

// NewLogger builds a console logger: debug level when verbose, errors only when
// quiet, info otherwise.
func NewLogger(verbose, quiet bool) (*zap.Logger, error) {
	var cfg zap.Config

	switch {
	case verbose:
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.Sampling = nil
	}

	if quiet {
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}
