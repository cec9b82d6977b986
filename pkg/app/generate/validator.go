package generate

import "github.com/deploymenttheory/go-gptimage/pkg/app"

// Validate validates a generate request
func (r *Request) Validate() error {
	if r.StoragePath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "storage description path is required", nil)
	}
	if r.OutputPath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "output path is required", nil)
	}
	return nil
}
