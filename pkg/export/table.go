package export

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/james-see/smfcheck/pkg/validator"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	okStyle     = cellStyle.Foreground(lipgloss.Color("#0A7D22"))
	failStyle   = cellStyle.Foreground(lipgloss.Color("#B40000"))
)

// TableHeaders are the columns of the summary table
var TableHeaders = []string{"Status", "File", "Fmt", "Tracks", "Division", "Size", "Errors", "Warnings"}

// Row returns the summary table cells for one report
func Row(r *validator.FileReport) []string {
	status := "OK"
	if !r.OK {
		status = "ERROR"
	}
	format, tracks, division := "", "", ""
	if r.Header != nil {
		format = strconv.Itoa(int(r.Header.Format))
		tracks = strconv.Itoa(int(r.Header.TrackCount))
		division = r.Header.Division.String()
	}
	return []string{
		status,
		r.Source,
		format,
		tracks,
		division,
		strconv.Itoa(r.Size),
		strconv.Itoa(r.ErrorCount()),
		strconv.Itoa(r.WarningCount()),
	}
}

// Table renders a bordered summary table, one row per report
func Table(reports []*validator.FileReport) string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, Row(r))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(TableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 && row >= 0 && row < len(reports) {
				if reports[row].OK {
					return okStyle
				}
				return failStyle
			}
			return cellStyle
		})
	return t.String()
}
