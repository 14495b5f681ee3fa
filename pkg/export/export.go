// Package export renders validation reports as CSV, JSON, text and tables
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/james-see/smfcheck/pkg/validator"
)

// Format is an output format name accepted by Write
type Format string

const (
	FormatTable Format = "table"
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// Formats lists every supported output format
func Formats() []Format {
	return []Format{FormatTable, FormatText, FormatJSON, FormatCSV}
}

// Write renders reports in the given format
func Write(w io.Writer, format Format, reports []*validator.FileReport) error {
	switch format {
	case FormatTable:
		_, err := fmt.Fprintln(w, Table(reports))
		return err
	case FormatText:
		for i, r := range reports {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if err := WriteText(w, r); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		return WriteJSON(w, reports)
	case FormatCSV:
		return WriteCSV(w, reports)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

var csvHeader = []string{
	"path", "ok", "bytes_size", "format", "num_tracks", "division",
	"track_index", "track_len_decl", "track_len_parsed", "track_has_EOT",
	"errors", "warnings",
}

// WriteCSV writes one semicolon-separated row per track. File-level messages
// are prefixed to every row of that file.
func WriteCSV(w io.Writer, reports []*validator.FileReport) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range reports {
		format, tracks, division := "", "", ""
		if r.Header != nil {
			format = strconv.Itoa(int(r.Header.Format))
			tracks = strconv.Itoa(int(r.Header.TrackCount))
			division = strconv.Itoa(int(r.Header.Division))
		}
		fileErrs := messages(r.Errors())
		fileWarns := messages(r.Warnings())
		base := []string{r.Source, strconv.FormatBool(r.OK), strconv.Itoa(r.Size), format, tracks, division}

		if len(r.Tracks) == 0 {
			row := append(base, "", "", "", "", joinMessages(fileErrs), joinMessages(fileWarns))
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
			continue
		}
		for _, t := range r.Tracks {
			row := append(append([]string{}, base...),
				strconv.Itoa(t.Index),
				strconv.FormatUint(uint64(t.LengthDeclared), 10),
				strconv.Itoa(t.LengthParsed),
				strconv.FormatBool(t.HasEndOfTrack),
				joinMessages(append(append([]string{}, fileErrs...), messages(t.Errors())...)),
				joinMessages(append(append([]string{}, fileWarns...), messages(t.Warnings())...)),
			)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes reports as an indented JSON array
func WriteJSON(w io.Writer, reports []*validator.FileReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// WriteText writes a human-readable summary of one report
func WriteText(w io.Writer, r *validator.FileReport) error {
	_, err := io.WriteString(w, Text(r))
	return err
}

// Text renders a human-readable summary of one report
func Text(r *validator.FileReport) string {
	var s strings.Builder

	status := "OK"
	if !r.OK {
		status = "ERROR"
	}
	fmt.Fprintf(&s, "File: %s [%s]\n", r.Source, status)
	fmt.Fprintf(&s, "Size: %d bytes\n", r.Size)
	if h := r.Header; h != nil {
		if h.Division.IsSMPTE() {
			fps, tpf := h.Division.SMPTE()
			fmt.Fprintf(&s, "Header: format=%d, tracks=%d, SMPTE fps=%d, tpf=%d\n", h.Format, h.TrackCount, fps, tpf)
		} else {
			fmt.Fprintf(&s, "Header: format=%d, tracks=%d, ticks/quarter=%d\n", h.Format, h.TrackCount, h.Division.TicksPerQuarterNote())
		}
	}

	if errs := r.Errors(); len(errs) > 0 {
		s.WriteString("\nERRORS:\n")
		for _, d := range errs {
			fmt.Fprintf(&s, "  - %s%s\n", d.Message, at(d))
		}
	}
	if warns := r.Warnings(); len(warns) > 0 {
		s.WriteString("\nWARNINGS:\n")
		for _, d := range warns {
			fmt.Fprintf(&s, "  * %s%s\n", d.Message, at(d))
		}
	}

	for _, t := range r.Tracks {
		eot := "yes"
		if !t.HasEndOfTrack {
			eot = "no"
		}
		fmt.Fprintf(&s, "\n[Track %d] len=%d/%d  EOT=%s\n", t.Index, t.LengthParsed, t.LengthDeclared, eot)
		st := t.Stats
		fmt.Fprintf(&s, "  notes on/off=%d/%d dangling=%d pc=%d cc=%d bend=%d at=%d/%d sysex=%d meta=%d\n",
			st.NoteOn, st.NoteOff, st.DanglingNotes, st.ProgramChanges, st.Controllers, st.PitchBends,
			st.PolyAftertouch, st.ChannelAftertouch, st.SysEx, st.Meta)
		if mean, ok := MeanTempo(st.TempoValues); ok {
			fmt.Fprintf(&s, "  tempo events=%d mean=%.0f us/qn (%.2f bpm)\n", st.TempoEvents, mean, 60000000/mean)
		}
		for _, d := range t.Errors() {
			fmt.Fprintf(&s, "  - ERROR: %s%s\n", d.Message, at(d))
		}
		for _, d := range t.Warnings() {
			fmt.Fprintf(&s, "  * WARNING: %s%s\n", d.Message, at(d))
		}
	}
	return s.String()
}

// MeanTempo averages tempo values in microseconds per quarter note
func MeanTempo(values []uint32) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	mean := sum / float64(len(values))
	return mean, mean > 0
}

func at(d validator.Diagnostic) string {
	if !d.HasOffset() {
		return ""
	}
	return fmt.Sprintf(" (@0x%X)", d.Offset)
}

func messages(diags []validator.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Message)
	}
	return out
}

func joinMessages(msgs []string) string {
	return strings.Join(msgs, " | ")
}
