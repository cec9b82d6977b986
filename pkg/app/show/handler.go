package show

import (
	"go.uber.org/zap"

	"github.com/deploymenttheory/go-gptimage/internal/image"
	"github.com/deploymenttheory/go-gptimage/pkg/app"
)

// Handle reads an image and describes its partitioning
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	path := app.ResolvePath(req.WorkingDir, req.ImagePath)
	ctx.Debug("reading image", zap.String("path", path), zap.Uint64("block_size", req.BlockSize), zap.Bool("strict", req.Strict))

	img, err := image.Read(path, req.BlockSize,
		image.WithLogger(ctx.Logger()),
		image.WithStrict(req.Strict))
	if err != nil {
		return nil, app.ClassifyError("failed to read image", err)
	}

	resp := NewResponse(path, img)
	ctx.Debug("image read", zap.Int("partitions", len(resp.Partitions)), zap.Bool("verified", resp.Verified))

	return resp, nil
}
