package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-gptimage/internal/types"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{name: "unknown type", err: fmt.Errorf("%w: bogus", types.ErrUnknownType), code: ErrCodeUnknownType},
		{name: "size", err: fmt.Errorf("partition: %w", types.ErrSize), code: ErrCodeSize},
		{name: "format", err: types.ErrFormat, code: ErrCodeFormat},
		{name: "checksum", err: types.ErrChecksum, code: ErrCodeChecksum},
		{
			name: "aggregated missing binaries",
			err:  multierror.Append(nil, fmt.Errorf("%w: a", types.ErrMissingBinary), fmt.Errorf("%w: b", types.ErrMissingBinary)),
			code: ErrCodeMissingBinary,
		},
		{name: "anything else", err: errors.New("disk full"), code: ErrCodeIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyError("failed", tt.err)

			var common *CommonError
			require.ErrorAs(t, err, &common)
			assert.Equal(t, tt.code, common.Code)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassifyErrorKeepsCommonErrors(t *testing.T) {
	original := NewError(ErrCodeInvalidInput, "bad flag", nil)
	assert.Same(t, original, ClassifyError("ignored", original))
	assert.Nil(t, ClassifyError("nothing", nil))
}

func TestCommonErrorMessage(t *testing.T) {
	assert.Equal(t, "bad flag", NewError(ErrCodeInvalidInput, "bad flag", nil).Error())
	assert.Equal(t, "build failed: boom", NewError(ErrCodeIO, "build failed", errors.New("boom")).Error())
}

func TestNewLogger(t *testing.T) {
	for _, tt := range []struct{ verbose, quiet bool }{{false, false}, {true, false}, {false, true}} {
		logger, err := NewLogger(tt.verbose, tt.quiet)
		require.NoError(t, err)
		assert.Equal(t, tt.verbose, logger.Core().Enabled(-1))
		assert.Equal(t, !tt.quiet, logger.Core().Enabled(0))
	}
}
