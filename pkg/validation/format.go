// Package validation reports problems in a business plan as warnings. Nothing
// here prevents a plan from being computed.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/proforma/pkg/constants"
)

// OutputFormats lists the supported output formats in display order.
var OutputFormats = []string{
	constants.OutputFormatPretty,
	constants.OutputFormatCSV,
	constants.OutputFormatJSON,
	constants.OutputFormatMarkdown,
	constants.OutputFormatXLSX,
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, f := range OutputFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, got %s", strings.Join(OutputFormats, ", "), format)
}
