package generate

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
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
		_, err := fmt.Fprintf(w, "Wrote %d partitions for %s (%s) to %s\n",
			response.Partitions, response.BaseName, response.FormatTable, response.Output)
		return err
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
