package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"

	"github.com/deploymenttheory/go-gptimage/internal/types"
)

func TestFormatError(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	missing := multierror.Append(nil,
		fmt.Errorf("%w: partition \"boot\": boot.img", types.ErrMissingBinary),
		fmt.Errorf("%w: partition \"recovery\": recovery.img", types.ErrMissingBinary))

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("boom"), want: "Error: boom"},
		{
			name: "coded without cause",
			err:  NewError(ErrCodeInvalidInput, "image path is required", nil),
			want: "Error: [INVALID_INPUT] image path is required",
		},
		{
			name: "coded with cause",
			err:  ClassifyError("failed to create image", fmt.Errorf("%w: overlap", types.ErrSize)),
			want: "Error: [SIZE] failed to create image: size error: overlap",
		},
		{
			name: "aggregated failures",
			err:  ClassifyError("failed to create image", missing),
			want: "Error: [MISSING_BINARY] failed to create image: 2 errors occurred:\n" +
				"  missing partition binary: partition \"boot\": boot.img\n" +
				"  missing partition binary: partition \"recovery\": recovery.img",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatError(tt.err))
		})
	}
}

func TestFormatErrorSingleAggregatedFailure(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	single := multierror.Append(nil, fmt.Errorf("%w: partition \"boot\": boot.img", types.ErrMissingBinary))

	assert.Equal(t, "Error: [MISSING_BINARY] failed to create image: missing partition binary: partition \"boot\": boot.img",
		FormatError(ClassifyError("failed to create image", single)))
	assert.Equal(t, "Error: missing partition binary: partition \"boot\": boot.img", FormatError(single))
}
