package show

import (
	"github.com/deploymenttheory/go-gptimage/internal/types"
	"github.com/deploymenttheory/go-gptimage/pkg/app"
)

// Validate validates a show request
func (r *Request) Validate() error {
	if r.ImagePath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "image path is required", nil)
	}

	if r.BlockSize < types.ProtectiveRecordSize {
		return app.NewError(app.ErrCodeInvalidInput, "block size must be at least 512 bytes", nil)
	}

	return nil
}
