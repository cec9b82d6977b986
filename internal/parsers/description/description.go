package description

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/deploymenttheory/go-gptimage/internal/layout"
)

// directivePattern is the grammar of an add directive. The partition index before
// the device path is optional; older descriptions omit it and rely on file order.
var directivePattern = regexp.MustCompile(`^add\s-b\s(?P<begin>\w+)\s-s\s(?P<size>[\w$()-]+)\s-t\s(?P<type>\w+)\s-u\s(?P<uuid>[\w-]+)\s-l\s(?P<label>\w+)\s-T\s(?P<try>\w+)\s-P\s(?P<priority>\w+)\s(?:(?P<index>\d+)\s)?(?P<device>[\w/]+)\s*$`)

var remainingPattern = regexp.MustCompile(`^\$calc\(\$lba_end-([0-9]+)\)$`)

// Stats counts what a parse consumed.
type Stats struct {
	Lines      int // Lines read
	Directives int // Lines accepted as partition specs
	Skipped    int // Lines that looked like add directives but were rejected
}

// Description is a parsed partition table description.
type Description struct {
	Specs []layout.PartitionSpec
	Stats Stats
}

// Parse reads add directives from r. Lines that do not match the directive grammar,
// or whose numeric fields or size token are invalid, are skipped. Parse only fails
// when r does.
func Parse(r io.Reader) (*Description, error) {
	desc := &Description{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()
		desc.Stats.Lines++

		spec, hasIndex, ok := parseDirective(line)
		if !ok {
			if strings.HasPrefix(strings.TrimSpace(line), "add") {
				desc.Stats.Skipped++
			}
			continue
		}

		if !hasIndex {
			spec.Index = desc.Stats.Directives + 1
		}
		desc.Specs = append(desc.Specs, spec)
		desc.Stats.Directives++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read partition table description: %w", err)
	}

	return desc, nil
}

// ParseSize parses a size token: a literal block count, or $calc($lba_end-N).
func ParseSize(token string) (layout.SizeSpec, error) {
	if m := remainingPattern.FindStringSubmatch(token); m != nil {
		reserve, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return layout.SizeSpec{}, fmt.Errorf("invalid reserve in size token %q: %w", token, err)
		}
		return layout.Remaining(reserve), nil
	}

	blocks, err := strconv.ParseUint(token, 10, 64)
	if err != nil {
		return layout.SizeSpec{}, fmt.Errorf("invalid size token %q", token)
	}
	return layout.Blocks(blocks), nil
}

// parseDirective returns the spec, whether the line carried a partition index, and
// whether the line is a valid directive.
func parseDirective(line string) (layout.PartitionSpec, bool, bool) {
	m := directivePattern.FindStringSubmatch(line)
	if m == nil {
		return layout.PartitionSpec{}, false, false
	}

	field := func(name string) string {
		return m[directivePattern.SubexpIndex(name)]
	}

	begin, err := strconv.ParseUint(field("begin"), 10, 64)
	if err != nil {
		return layout.PartitionSpec{}, false, false
	}
	size, err := ParseSize(field("size"))
	if err != nil {
		return layout.PartitionSpec{}, false, false
	}
	try, err := strconv.ParseUint(field("try"), 10, 64)
	if err != nil {
		return layout.PartitionSpec{}, false, false
	}
	priority, err := strconv.ParseUint(field("priority"), 10, 64)
	if err != nil {
		return layout.PartitionSpec{}, false, false
	}

	var (
		index    int
		hasIndex bool
	)
	if raw := field("index"); raw != "" {
		index, err = strconv.Atoi(raw)
		if err != nil {
			return layout.PartitionSpec{}, false, false
		}
		hasIndex = true
	}

	return layout.PartitionSpec{
		Label:    field("label"),
		Start:    &begin,
		Size:     size,
		TypeName: field("type"),
		GUID:     field("uuid"),
		Try:      try,
		Priority: priority,
		Index:    index,
		Device:   field("device"),
	}, hasIndex, true
}
