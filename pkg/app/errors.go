package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gertd/go-pluralize"
	"github.com/hashicorp/go-multierror"
)

// FormatError renders an error for the terminal: the error code when there is
// one, and one line per aggregated failure.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var (
		common *CommonError
		multi  *multierror.Error
	)

	prefix, msg, cause := "", err.Error(), error(nil)
	if errors.As(err, &common) {
		prefix, msg, cause = "["+common.Code+"] ", common.Message, common.Cause
	}

	if errors.As(err, &multi) {
		switch len(multi.Errors) {
		case 0:
		case 1:
			if common == nil {
				msg = multi.Errors[0].Error()
			} else {
				cause = multi.Errors[0]
			}
		default:
			if common == nil {
				msg = "failed"
			}

			lines := make([]string, 0, len(multi.Errors))
			for _, e := range multi.Errors {
				lines = append(lines, fmt.Sprintf("  %s", e.Error()))
			}

			count := pluralize.NewClient().Pluralize("error", len(lines), true)

			return color.RedString("Error: %s%s: %s occurred:\n%s", prefix, msg, count, strings.Join(lines, "\n"))
		}
	}

	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}

	return color.RedString("Error: %s%s", prefix, msg)
}
