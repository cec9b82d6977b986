package description

import (
	"fmt"
	"io"
	"strings"

	"github.com/deploymenttheory/go-gptimage/internal/layout"
)

// Write renders header lines followed by one add directive per spec.
// Every spec must carry an explicit start and a block or remaining-space size.
func Write(w io.Writer, header []string, specs []layout.PartitionSpec) error {
	for _, line := range header {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write description header: %w", err)
		}
	}

	for _, spec := range specs {
		line, err := FormatDirective(spec)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write directive for %q: %w", spec.Label, err)
		}
	}

	return nil
}

// FormatDirective renders a single add directive.
func FormatDirective(spec layout.PartitionSpec) (string, error) {
	if spec.Start == nil {
		return "", fmt.Errorf("partition %q has no start block", spec.Label)
	}
	if spec.Size.Kind == layout.SizeMegabytes {
		return "", fmt.Errorf("partition %q: megabyte sizes must be placed before writing", spec.Label)
	}

	index := ""
	if spec.Index >= 0 {
		index = fmt.Sprintf("%d ", spec.Index)
	}

	return fmt.Sprintf("add -b %d -s %s -t %s -u %s -l %s -T %d -P %d %s%s",
		*spec.Start, spec.Size, spec.TypeName, spec.GUID, spec.Label,
		spec.Try, spec.Priority, index, spec.Device), nil
}

// String renders the description back as directives. Specs that cannot be
// rendered are omitted.
func (d *Description) String() string {
	var b strings.Builder
	for _, spec := range d.Specs {
		line, err := FormatDirective(spec)
		if err != nil {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
