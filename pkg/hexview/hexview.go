// Package hexview renders hex dumps with diagnostic offsets highlighted
package hexview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/smfcheck/pkg/validator"
)

// BytesPerRow is the width of one dump row
const BytesPerRow = 16

// MaxMarks caps how many offsets MarksFromReport collects
const MaxMarks = 2000

var (
	offsetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#B40000")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#FFF1A8"))
)

// Marks maps byte offsets to the severity they are highlighted with
type Marks map[int]validator.Severity

// MarksFromReport collects the offsets of every diagnostic in r. An offset
// hit by both an error and a warning is shown as an error.
func MarksFromReport(r *validator.FileReport) Marks {
	marks := make(Marks)
	for _, d := range r.AllDiagnostics() {
		if !d.HasOffset() || d.Offset >= r.Size {
			continue
		}
		if prev, ok := marks[d.Offset]; ok {
			if prev == validator.SeverityWarning && d.Severity == validator.SeverityError {
				marks[d.Offset] = d.Severity
			}
			continue
		}
		if len(marks) >= MaxMarks {
			continue
		}
		marks[d.Offset] = d.Severity
	}
	return marks
}

// Options selects the rows to render
type Options struct {
	From  int  // First byte offset; rounded down to a row boundary
	Rows  int  // Number of rows, 0 renders to the end of data
	Plain bool // Disable styling, marked bytes are wrapped in brackets instead
}

// Window returns options showing rows rows with offset near the middle
func Window(offset, rows int) Options {
	from := offset - (rows/2)*BytesPerRow
	if from < 0 {
		from = 0
	}
	return Options{From: from, Rows: rows}
}

// Render formats data as a hex dump: offset, hex bytes and ASCII
func Render(data []byte, marks Marks, opts Options) string {
	from := opts.From - opts.From%BytesPerRow
	if from < 0 {
		from = 0
	}
	end := len(data)
	if opts.Rows > 0 && from+opts.Rows*BytesPerRow < end {
		end = from + opts.Rows*BytesPerRow
	}

	var s strings.Builder
	for row := from; row < end; row += BytesPerRow {
		rowEnd := min(row+BytesPerRow, end)
		s.WriteString(style(offsetStyle, fmt.Sprintf("%08X", row), opts.Plain))
		s.WriteString("  ")

		for i := row; i < row+BytesPerRow; i++ {
			if i == row+BytesPerRow/2 {
				s.WriteString(" ")
			}
			if i >= rowEnd {
				s.WriteString("   ")
				continue
			}
			s.WriteString(cell(fmt.Sprintf("%02X", data[i]), marks[i], opts.Plain))
			s.WriteString(" ")
		}

		s.WriteString(" |")
		for i := row; i < rowEnd; i++ {
			s.WriteString(cell(printable(data[i]), marks[i], opts.Plain))
		}
		s.WriteString("|\n")
	}
	return s.String()
}

func cell(text string, sev validator.Severity, plain bool) string {
	switch sev {
	case validator.SeverityError:
		if plain {
			return "[" + text + "]"
		}
		return errorStyle.Render(text)
	case validator.SeverityWarning:
		if plain {
			return "<" + text + ">"
		}
		return warningStyle.Render(text)
	}
	return text
}

func style(st lipgloss.Style, text string, plain bool) string {
	if plain {
		return text
	}
	return st.Render(text)
}

func printable(b byte) string {
	if b >= 0x20 && b < 0x7F {
		return string(rune(b))
	}
	return "."
}
