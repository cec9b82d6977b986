package generate

import (
	"bytes"
	"os"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-gptimage/internal/storage"
	"github.com/deploymenttheory/go-gptimage/pkg/app"
)

// StdoutPath selects the context's output instead of a file
const StdoutPath = "-"

// Handle loads the storage description, generates its partition table
// description and writes it out
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	doc, err := storage.Load(req.StoragePath, req.OverridePath, ctx.Logger())
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "invalid storage description", err)
	}

	if req.BaseName != "" {
		ctx.Debug("overriding storage base name",
			zap.String("from", doc.Storage.BaseName), zap.String("to", req.BaseName))
		doc.Storage.BaseName = req.BaseName
	}

	table, err := storage.Generate(doc)
	if err != nil {
		return nil, app.ClassifyError("failed to generate partition table description", err)
	}

	var buf bytes.Buffer
	if err := table.Write(&buf); err != nil {
		return nil, app.NewError(app.ErrCodeIO, "failed to render partition table description", err)
	}

	if req.OutputPath == StdoutPath {
		if _, err := ctx.Out.Write(buf.Bytes()); err != nil {
			return nil, app.NewError(app.ErrCodeIO, "failed to write partition table description", err)
		}
	} else if err := os.WriteFile(req.OutputPath, buf.Bytes(), 0o644); err != nil {
		return nil, app.NewError(app.ErrCodeIO, "failed to write partition table description", err)
	}

	ctx.Debug("partition table description written",
		zap.String("output", req.OutputPath), zap.Int("partitions", len(table.Specs)))

	return &Response{
		Output:      req.OutputPath,
		FormatTable: doc.Globals.FormatTable,
		BaseName:    doc.Storage.BaseName,
		Partitions:  len(table.Specs),
	}, nil
}
