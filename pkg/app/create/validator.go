package create

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-gptimage/internal/types"
	"github.com/deploymenttheory/go-gptimage/pkg/app"
)

// Validate validates a create request
func (r *Request) Validate() error {
	if r.ImagePath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "image path is required", nil)
	}

	if r.TablePath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "partition table description is required", nil)
	}

	if r.WorkingDir != "" {
		info, err := os.Stat(r.WorkingDir)
		if err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid working directory", err)
		}
		if !info.IsDir() {
			return app.NewError(app.ErrCodeInvalidInput,
				fmt.Sprintf("working directory %s is not a directory", r.WorkingDir), nil)
		}
	}

	if r.BlockSize < types.ProtectiveRecordSize {
		return app.NewError(app.ErrCodeInvalidInput, "block size must be at least 512 bytes", nil)
	}

	if r.Table.TableLength == 0 || uint64(r.Table.EntrySize) < types.GPTEntrySize {
		return app.NewError(app.ErrCodeInvalidInput,
			fmt.Sprintf("partition table needs at least one entry of at least %d bytes", types.GPTEntrySize), nil)
	}

	if r.ImageSize == 0 {
		return app.NewError(app.ErrCodeInvalidInput, "image size must be positive", nil)
	}

	return nil
}
