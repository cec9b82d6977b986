package gpt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-gptimage/internal/types"
)

func TestParseGUID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected GUID
		wantErr  bool
	}{
		{
			name:  "EFI system partition type",
			input: "C12A7328-F81F-11D2-BA4B-00A0C93EC93B",
			expected: GUID{
				0x28, 0x73, 0x2A, 0xC1, 0x1F, 0xF8, 0xD2, 0x11,
				0xBA, 0x4B, 0x00, 0xA0, 0xC9, 0x3E, 0xC9, 0x3B,
			},
		},
		{
			name:  "lower case",
			input: "0fc63daf-8483-4772-8e79-3d69d8477de4",
			expected: GUID{
				0xAF, 0x3D, 0xC6, 0x0F, 0x83, 0x84, 0x72, 0x47,
				0x8E, 0x79, 0x3D, 0x69, 0xD8, 0x47, 0x7D, 0xE4,
			},
		},
		{name: "zero", input: "00000000-0000-0000-0000-000000000000", expected: GUID{}},
		{name: "too long", input: "abc01234567-89ab-cdef-0123-456789abcdef", wantErr: true},
		{name: "garbage", input: "not-a-guid", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseGUID(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, g)
		})
	}
}

func TestGUIDString(t *testing.T) {
	g, err := ParseGUID("C12A7328-F81F-11D2-BA4B-00A0C93EC93B")
	require.NoError(t, err)
	assert.Equal(t, "c12a7328-f81f-11d2-ba4b-00a0c93ec93b", g.String())
	assert.False(t, g.IsZero())
	assert.True(t, GUID{}.IsZero())
}

func TestNewRandomGUID(t *testing.T) {
	a := NewRandomGUID()
	b := NewRandomGUID()
	assert.NotEqual(t, a, b)
	assert.Equal(t, uuid.Version(4), a.UUID().Version())
}
