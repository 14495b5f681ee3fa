// Package validator checks the structure of Standard MIDI Files
package validator

import "fmt"

// Severity classifies a diagnostic
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// NoOffset marks a diagnostic that has no valid byte offset
const NoOffset = -1

// Diagnostic is a single finding produced while decoding a file
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	Offset   int      `json:"offset"` // Absolute byte offset, or NoOffset
}

// HasOffset reports whether the diagnostic points at a byte in the file
func (d Diagnostic) HasOffset() bool {
	return d.Offset >= 0
}

func (d Diagnostic) String() string {
	if !d.HasOffset() {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s @0x%X: %s", d.Severity, d.Offset, d.Message)
}

// Division is the raw division field of the MThd chunk
type Division uint16

// IsSMPTE reports whether the division uses SMPTE timing
func (d Division) IsSMPTE() bool {
	return d&0x8000 != 0
}

// TicksPerQuarterNote returns the PPQN value, or 0 for SMPTE divisions
func (d Division) TicksPerQuarterNote() uint16 {
	if d.IsSMPTE() {
		return 0
	}
	return uint16(d & 0x7FFF)
}

// SMPTE returns frames per second and ticks per frame. Both are 0 when the
// division is PPQN.
func (d Division) SMPTE() (fps int, ticksPerFrame int) {
	if !d.IsSMPTE() {
		return 0, 0
	}
	// The upper byte holds a negative two's complement frame rate.
	fps = -int(int8(d >> 8))
	ticksPerFrame = int(d & 0xFF)
	return fps, ticksPerFrame
}

func (d Division) String() string {
	if d.IsSMPTE() {
		fps, tpf := d.SMPTE()
		return fmt.Sprintf("SMPTE %d fps, %d ticks/frame", fps, tpf)
	}
	return fmt.Sprintf("%d ticks/quarter", d.TicksPerQuarterNote())
}

// Header holds the fields of the MThd chunk
type Header struct {
	Format     uint16   `json:"format"`
	TrackCount uint16   `json:"num_tracks"`
	Division   Division `json:"division"`
}

// TrackStats counts the events found in one track
type TrackStats struct {
	NoteOn              int      `json:"note_on"`
	NoteOff             int      `json:"note_off"`
	DanglingNotes       int      `json:"dangling_notes"` // Notes still sounding at the end of the track
	ProgramChanges      int      `json:"program_changes"`
	Controllers         int      `json:"controllers"`
	PitchBends          int      `json:"pitch_bends"`
	PolyAftertouch      int      `json:"aftertouch_poly"`
	ChannelAftertouch   int      `json:"aftertouch_channel"`
	SysEx               int      `json:"sysex"`
	Meta                int      `json:"meta"`
	TempoEvents         int      `json:"tempo_events"`
	TimeSignatureEvents int      `json:"time_sig_events"`
	KeySignatureEvents  int      `json:"key_sig_events"`
	TempoValues         []uint32 `json:"tempo_values"` // Microseconds per quarter note, in track order
}

// TrackReport is the result of decoding one MTrk chunk
type TrackReport struct {
	Index          int          `json:"index"`
	LengthDeclared uint32       `json:"length_declared"`
	LengthParsed   int          `json:"length_parsed"`
	HasEndOfTrack  bool         `json:"has_end_of_track"`
	Diagnostics    []Diagnostic `json:"diagnostics"`
	Stats          TrackStats   `json:"stats"`
}

// Errors returns the error diagnostics of the track
func (t *TrackReport) Errors() []Diagnostic {
	return filter(t.Diagnostics, SeverityError)
}

// Warnings returns the warning diagnostics of the track
func (t *TrackReport) Warnings() []Diagnostic {
	return filter(t.Diagnostics, SeverityWarning)
}

// FileReport is the result of validating one file
type FileReport struct {
	Source      string        `json:"path"`
	Size        int           `json:"bytes_size"`
	Header      *Header       `json:"header"`
	Tracks      []TrackReport `json:"tracks"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
	OK          bool          `json:"ok"`
}

// Errors returns the file-level error diagnostics
func (r *FileReport) Errors() []Diagnostic {
	return filter(r.Diagnostics, SeverityError)
}

// Warnings returns the file-level warning diagnostics
func (r *FileReport) Warnings() []Diagnostic {
	return filter(r.Diagnostics, SeverityWarning)
}

// AllDiagnostics returns file-level diagnostics followed by those of every
// track, in track order.
func (r *FileReport) AllDiagnostics() []Diagnostic {
	all := make([]Diagnostic, 0, len(r.Diagnostics))
	all = append(all, r.Diagnostics...)
	for i := range r.Tracks {
		all = append(all, r.Tracks[i].Diagnostics...)
	}
	return all
}

// ErrorCount counts errors across the file and all tracks
func (r *FileReport) ErrorCount() int {
	return count(r.AllDiagnostics(), SeverityError)
}

// WarningCount counts warnings across the file and all tracks
func (r *FileReport) WarningCount() int {
	return count(r.AllDiagnostics(), SeverityWarning)
}

// Offsets returns the distinct diagnostic offsets in detection order
func (r *FileReport) Offsets() []int {
	var out []int
	seen := make(map[int]bool)
	for _, d := range r.AllDiagnostics() {
		if !d.HasOffset() || seen[d.Offset] {
			continue
		}
		seen[d.Offset] = true
		out = append(out, d.Offset)
	}
	return out
}

// FirstOffset returns the offset of the first located diagnostic, or 0
func (r *FileReport) FirstOffset() int {
	for _, d := range r.AllDiagnostics() {
		if d.HasOffset() {
			return d.Offset
		}
	}
	return 0
}

// Options controls optional checks
type Options struct {
	PairNotes bool `json:"pair_notes"` // Track active notes per channel and pitch
	Strict    bool `json:"strict"`     // Warn on tempos outside 10000..2000000 us/qn
}

func filter(diags []Diagnostic, sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

func count(diags []Diagnostic, sev Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}
