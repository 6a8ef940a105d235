// Package report renders engine reports as indented JSON or as a terminal text summary.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/f-sync/socialstats/internal/engine"
)

// Output formats accepted by Write.
const (
	FormatText = "text"
	FormatJSON = "json"
)

const (
	jsonIndent              = "  "
	encodeReportErrorFormat = "encode report: %w"
	unknownFormatErrorFmt   = "%w: %q"
	errMessageUnknownFormat = "unknown report format"
)

// ErrUnknownFormat reports a Write call with a format other than FormatText or FormatJSON.
var ErrUnknownFormat = errors.New(errMessageUnknownFormat)

// Options tunes the text rendering. Source names the export the report came from and is printed in
// the header when set.
type Options struct {
	Color  bool
	Source string
}

// Write renders report in the named format.
func Write(writer io.Writer, format string, report engine.Report, options Options) error {
	switch format {
	case FormatJSON:
		return WriteJSON(writer, report)
	case FormatText, "":
		return WriteText(writer, report, options)
	}
	return fmt.Errorf(unknownFormatErrorFmt, ErrUnknownFormat, format)
}

// WriteJSON encodes report as indented JSON followed by a newline.
func WriteJSON(writer io.Writer, report engine.Report) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", jsonIndent)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf(encodeReportErrorFormat, err)
	}
	return nil
}

// ColorEnabled reports whether text written to output should carry ANSI colors. Only an *os.File
// attached to a terminal qualifies.
func ColorEnabled(output io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	file, isFile := output.(*os.File)
	if !isFile || file == nil {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
