package create

import (
	"errors"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-gptimage/internal/image"
	"github.com/deploymenttheory/go-gptimage/internal/layout"
	"github.com/deploymenttheory/go-gptimage/internal/parsers/description"
	"github.com/deploymenttheory/go-gptimage/internal/payload"
	"github.com/deploymenttheory/go-gptimage/pkg/app"
	"github.com/deploymenttheory/go-gptimage/pkg/app/show"
)

// Handle builds the image described by the request's partition table and reads it
// back to check it
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := ctx.Logger()
	imagePath := app.ResolvePath(req.WorkingDir, req.ImagePath)
	tablePath := app.ResolvePath(req.WorkingDir, req.TablePath)

	desc, err := readDescription(tablePath)
	if err != nil {
		return nil, err
	}
	if desc.Stats.Skipped > 0 {
		logger.Warn("ignored malformed add directives",
			zap.String("table", tablePath), zap.Int("skipped", desc.Stats.Skipped))
	}
	ctx.Debug("parsed partition table description",
		zap.String("table", tablePath),
		zap.Int("lines", desc.Stats.Lines),
		zap.Int("directives", desc.Stats.Directives))

	geometry, err := layout.NewGeometry(req.BlockSize, req.ImageSize)
	if err != nil {
		return nil, app.ClassifyError("invalid image geometry", err)
	}

	if err := os.Remove(imagePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, app.NewError(app.ErrCodeIO, "failed to remove existing image", err)
	}

	producer := payload.NewHostTools(req.HostOutDir, payload.WithLogger(logger))
	builder := image.NewBuilder(geometry,
		image.WithLogger(logger),
		image.WithProducer(producer),
		image.WithTableLayout(req.Table),
		image.WithWorkingDir(req.WorkingDir))

	built, err := builder.Build(ctx, imagePath, desc.Specs, req.Binaries)
	if err != nil {
		return nil, app.ClassifyError("failed to create image", err)
	}

	img, err := image.Read(imagePath, req.BlockSize,
		image.WithLogger(logger),
		image.WithStrict(req.Strict))
	if err != nil {
		return nil, app.ClassifyError("image check failed", err)
	}

	resp := &Response{
		Image:      imagePath,
		ImageSize:  geometry.ImageSize,
		BlockSize:  geometry.BlockSize,
		DiskGUID:   built.Header.DiskGUID.String(),
		Partitions: len(img.Partitions()),
		Verified:   req.Strict,
		Description: DescriptionStats{
			Path:       tablePath,
			Lines:      desc.Stats.Lines,
			Directives: desc.Stats.Directives,
			Skipped:    desc.Stats.Skipped,
		},
	}

	if req.Show {
		resp.Layout = show.NewResponse(imagePath, img)
	}

	ctx.Log("image created", zap.String("image", imagePath), zap.Int("partitions", resp.Partitions))

	return resp, nil
}

func readDescription(path string) (*description.Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, app.NewError(app.ErrCodeIO, "failed to open partition table description", err)
	}
	defer f.Close()

	desc, err := description.Parse(f)
	if err != nil {
		return nil, app.NewError(app.ErrCodeIO, "failed to read partition table description", err)
	}

	if len(desc.Specs) == 0 {
		return nil, app.NewError(app.ErrCodeInvalidInput, "invalid partition table description: no add directives in "+path, nil)
	}

	return desc, nil
}
