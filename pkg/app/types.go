package app

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-gptimage/internal/types"
)

// CommonError represents application-level errors
type CommonError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CommonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CommonError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeFormat        = "FORMAT"
	ErrCodeUnknownType   = "UNKNOWN_TYPE"
	ErrCodeSize          = "SIZE"
	ErrCodeMissingBinary = "MISSING_BINARY"
	ErrCodeChecksum      = "CHECKSUM"
	ErrCodeIO            = "IO"
)

// NewError creates a new CommonError
func NewError(code, message string, cause error) *CommonError {
	return &CommonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ClassifyError wraps err in a CommonError whose code follows the domain error it
// carries. Errors that are already CommonErrors are returned unchanged.
func ClassifyError(message string, err error) error {
	if err == nil {
		return nil
	}

	var common *CommonError
	if errors.As(err, &common) {
		return err
	}

	return NewError(codeFor(err), message, err)
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, types.ErrUnknownType):
		return ErrCodeUnknownType
	case errors.Is(err, types.ErrMissingBinary):
		return ErrCodeMissingBinary
	case errors.Is(err, types.ErrChecksum):
		return ErrCodeChecksum
	case errors.Is(err, types.ErrSize):
		return ErrCodeSize
	case errors.Is(err, types.ErrFormat):
		return ErrCodeFormat
	default:
		return ErrCodeIO
	}
}
