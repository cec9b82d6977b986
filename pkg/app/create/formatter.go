package create

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-gptimage/pkg/app/show"
)

// FormatOutput writes the response in the requested format
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(response)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		encoder.SetIndent(2)
		return encoder.Encode(response)
	case "table":
		return formatTable(w, response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func formatTable(w io.Writer, response *Response) error {
	fmt.Fprintf(w, "Created %s (%s, %d-byte blocks)\n", response.Image,
		humanize.IBytes(response.ImageSize), response.BlockSize)
	fmt.Fprintf(w, "Disk UUID: %s\n", response.DiskGUID)
	fmt.Fprintf(w, "Partitions: %d from %s", response.Partitions, response.Description.Path)
	if response.Description.Skipped > 0 {
		fmt.Fprintf(w, " (%d malformed directives ignored)", response.Description.Skipped)
	}
	fmt.Fprintf(w, "\n")

	if response.Layout == nil {
		return nil
	}

	fmt.Fprintf(w, "\n")
	return show.FormatOutput(w, response.Layout, "table")
}
