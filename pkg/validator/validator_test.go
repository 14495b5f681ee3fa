package validator

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

var endOfTrack = []byte{0x00, 0xFF, 0x2F, 0x00}

func header(format, tracks, division uint16) []byte {
	b := []byte("MThd")
	b = binary.BigEndian.AppendUint32(b, 6)
	b = binary.BigEndian.AppendUint16(b, format)
	b = binary.BigEndian.AppendUint16(b, tracks)
	return binary.BigEndian.AppendUint16(b, division)
}

func trackChunk(body ...[]byte) []byte {
	joined := bytes.Join(body, nil)
	b := []byte("MTrk")
	b = binary.BigEndian.AppendUint32(b, uint32(len(joined)))
	return append(b, joined...)
}

func smfBytes(format, division uint16, tracks ...[]byte) []byte {
	out := header(format, uint16(len(tracks)), division)
	for _, t := range tracks {
		out = append(out, t...)
	}
	return out
}

func codes(diags []Diagnostic) []Code {
	var out []Code
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func hasCode(diags []Diagnostic, code Code) bool {
	for _, d := range diags {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestValidateMinimalFile(t *testing.T) {
	data := smfBytes(0, 96, trackChunk(endOfTrack))
	rep := Validate("minimal.mid", data, Options{})

	if !rep.OK {
		t.Fatalf("OK = false, diagnostics: %v", rep.AllDiagnostics())
	}
	if rep.ErrorCount() != 0 || rep.WarningCount() != 0 {
		t.Errorf("errors = %d, warnings = %d, want 0, 0", rep.ErrorCount(), rep.WarningCount())
	}
	if rep.Header == nil {
		t.Fatal("Header is nil")
	}
	if rep.Header.Format != 0 || rep.Header.TrackCount != 1 || rep.Header.Division.TicksPerQuarterNote() != 96 {
		t.Errorf("Header = %+v, want format 0, 1 track, 96 ppqn", rep.Header)
	}
	if len(rep.Tracks) != 1 {
		t.Fatalf("len(Tracks) = %d, want 1", len(rep.Tracks))
	}
	tr := rep.Tracks[0]
	if !tr.HasEndOfTrack {
		t.Error("HasEndOfTrack = false, want true")
	}
	if tr.LengthParsed != int(tr.LengthDeclared) || tr.LengthParsed != 4 {
		t.Errorf("LengthParsed = %d, LengthDeclared = %d, want 4, 4", tr.LengthParsed, tr.LengthDeclared)
	}
	if rep.Size != len(data) {
		t.Errorf("Size = %d, want %d", rep.Size, len(data))
	}
}

func TestValidateBadMagic(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"RIFF", []byte("RIFF\x00\x00\x00\x06\x00\x00\x00\x01\x00\x60")},
		{"lowercase", []byte("mthd\x00\x00\x00\x06\x00\x00\x00\x01\x00\x60")},
		{"short", []byte("MT")},
		{"empty", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Validate(tt.name, tt.data, Options{})
			if rep.Header != nil {
				t.Errorf("Header = %+v, want nil", rep.Header)
			}
			if len(rep.Tracks) != 0 {
				t.Errorf("len(Tracks) = %d, want 0", len(rep.Tracks))
			}
			if len(rep.Errors()) != 1 {
				t.Errorf("file errors = %v, want exactly one", rep.Errors())
			}
			if rep.OK {
				t.Error("OK = true, want false")
			}
		})
	}
}

func TestValidateEmptyHasNoOffset(t *testing.T) {
	rep := Validate("empty", nil, Options{})
	if len(rep.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v, want one", rep.Diagnostics)
	}
	if rep.Diagnostics[0].HasOffset() {
		t.Errorf("Offset = %d, want NoOffset", rep.Diagnostics[0].Offset)
	}
}

func TestValidateHeader(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		hasHeader bool
		errors    []Code
		warnings  []Code
	}{
		{
			name:      "length below 6",
			data:      []byte("MThd\x00\x00\x00\x04\x00\x00\x00\x01"),
			hasHeader: false,
			errors:    []Code{CodeHeaderTooShort},
		},
		{
			name:      "truncated fields",
			data:      []byte("MThd\x00\x00\x00\x06\x00\x00"),
			hasHeader: false,
			errors:    []Code{CodeHeaderTruncated},
		},
		{
			name:      "extended header",
			data:      append([]byte("MThd\x00\x00\x00\x08\x00\x00\x00\x01\x00\x60\xAA\xBB"), trackChunk(endOfTrack)...),
			hasHeader: true,
			warnings:  []Code{CodeHeaderExtended},
		},
		{
			name:      "unknown format",
			data:      smfBytes(3, 96, trackChunk(endOfTrack)),
			hasHeader: true,
			errors:    []Code{CodeUnknownFormat},
		},
		{
			name:      "zero tracks",
			data:      header(1, 0, 96),
			hasHeader: true,
			errors:    []Code{CodeNoTracks},
		},
		{
			name:      "zero ppqn",
			data:      smfBytes(0, 0, trackChunk(endOfTrack)),
			hasHeader: true,
			errors:    []Code{CodePPQNZero},
		},
		{
			name:      "smpte 25 fps",
			data:      smfBytes(0, 0xE728, trackChunk(endOfTrack)),
			hasHeader: true,
		},
		{
			name:      "smpte zero ticks per frame",
			data:      smfBytes(0, 0xE700, trackChunk(endOfTrack)),
			hasHeader: true,
			errors:    []Code{CodeSMPTEZeroTicks},
		},
		{
			name:      "smpte unusual fps",
			data:      smfBytes(0, 0xEC04, trackChunk(endOfTrack)),
			hasHeader: true,
			warnings:  []Code{CodeSMPTEUnusualFPS},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := Validate(tt.name, tt.data, Options{})
			if (rep.Header != nil) != tt.hasHeader {
				t.Errorf("Header present = %v, want %v", rep.Header != nil, tt.hasHeader)
			}
			if got := codes(rep.Errors()); !reflect.DeepEqual(got, tt.errors) {
				t.Errorf("file errors = %v, want %v", got, tt.errors)
			}
			if got := codes(rep.Warnings()); !reflect.DeepEqual(got, tt.warnings) {
				t.Errorf("file warnings = %v, want %v", got, tt.warnings)
			}
			if rep.OK != (len(tt.errors) == 0) {
				t.Errorf("OK = %v, want %v", rep.OK, len(tt.errors) == 0)
			}
		})
	}
}

func TestDivision(t *testing.T) {
	tests := []struct {
		division Division
		smpte    bool
		ppqn     uint16
		fps      int
		tpf      int
		str      string
	}{
		{96, false, 96, 0, 0, "96 ticks/quarter"},
		{0x7FFF, false, 0x7FFF, 0, 0, "32767 ticks/quarter"},
		{0xE728, true, 0, 25, 40, "SMPTE 25 fps, 40 ticks/frame"},
		{0xE250, true, 0, 30, 80, "SMPTE 30 fps, 80 ticks/frame"},
		{0xE304, true, 0, 29, 4, "SMPTE 29 fps, 4 ticks/frame"},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			if tt.division.IsSMPTE() != tt.smpte {
				t.Errorf("IsSMPTE() = %v, want %v", tt.division.IsSMPTE(), tt.smpte)
			}
			if got := tt.division.TicksPerQuarterNote(); got != tt.ppqn {
				t.Errorf("TicksPerQuarterNote() = %d, want %d", got, tt.ppqn)
			}
			fps, tpf := tt.division.SMPTE()
			if fps != tt.fps || tpf != tt.tpf {
				t.Errorf("SMPTE() = %d, %d, want %d, %d", fps, tpf, tt.fps, tt.tpf)
			}
			if got := tt.division.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
		})
	}
}

func TestValidateTrackEvents(t *testing.T) {
	tests := []struct {
		name     string
		body     []byte
		opts     Options
		errors   []Code
		warnings []Code
		eot      bool
	}{
		{
			name: "missing end of track",
			body: []byte{0x00, 0x90, 0x3C, 0x40},
			errors: []Code{
				CodeMissingEndOfTrack,
			},
		},
		{
			name:   "running status without prior",
			body:   []byte{0x00, 0x3C, 0x40, 0x00, 0xFF, 0x2F, 0x00},
			errors: []Code{CodeRunningStatusNoPrior, CodeMissingEndOfTrack},
			warnings: []Code{
				CodeTrackLengthMismatch,
			},
		},
		{
			name:     "unknown status byte",
			body:     []byte{0x00, 0xF1, 0x00, 0x00, 0xFF, 0x2F, 0x00},
			errors:   []Code{CodeUnknownStatusByte, CodeMissingEndOfTrack},
			warnings: []Code{CodeTrackLengthMismatch},
		},
		{
			name:     "delta time too long",
			body:     []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0xFF, 0x2F, 0x00},
			errors:   []Code{CodeVLQInvalid, CodeMissingEndOfTrack},
			warnings: []Code{CodeTrackLengthMismatch},
		},
		{
			name:   "empty track",
			body:   []byte{},
			errors: []Code{CodeMissingEndOfTrack},
		},
		{
			name:     "truncated channel message",
			body:     []byte{0x00, 0x90, 0x3C},
			errors:   []Code{CodeChannelDataTruncated, CodeMissingEndOfTrack},
			warnings: []Code{CodeTrackLengthMismatch},
		},
		{
			name:   "data byte out of range",
			body:   append([]byte{0x00, 0x90, 0x3C, 0x90}, endOfTrack...),
			errors: []Code{CodeDataOutOfRange},
			eot:    true,
		},
		{
			name:     "truncated meta data",
			body:     []byte{0x00, 0xFF, 0x51, 0x03, 0x07},
			errors:   []Code{CodeMetaTruncated, CodeMissingEndOfTrack},
			warnings: []Code{CodeTrackLengthMismatch},
		},
		{
			name:     "truncated sysex",
			body:     []byte{0x00, 0xF0, 0x05, 0x7E, 0x7F},
			errors:   []Code{CodeSysExTruncated, CodeMissingEndOfTrack},
			warnings: []Code{CodeTrackLengthMismatch},
		},
		{
			name: "sysex and escape",
			body: append([]byte{0x00, 0xF0, 0x03, 0x7E, 0x7F, 0xF7, 0x00, 0xF7, 0x01, 0xF7}, endOfTrack...),
			eot:  true,
		},
		{
			name:   "end of track with length",
			body:   []byte{0x00, 0xFF, 0x2F, 0x01, 0x00},
			errors: []Code{CodeEndOfTrackLength},
			eot:    true,
		},
		{
			name:     "data after end of track",
			body:     []byte{0x00, 0xFF, 0x2F, 0x00, 0x00, 0x90, 0x3C},
			warnings: []Code{CodeDataAfterEndOfTrack},
			eot:      true,
		},
		{
			name:   "tempo wrong length",
			body:   append([]byte{0x00, 0xFF, 0x51, 0x02, 0x07, 0xA1}, endOfTrack...),
			errors: []Code{CodeTempoLength},
			eot:    true,
		},
		{
			name:   "tempo wrong length strict",
			body:   append([]byte{0x00, 0xFF, 0x51, 0x02, 0x07, 0xA1}, endOfTrack...),
			opts:   Options{Strict: true},
			errors: []Code{CodeTempoLength},
			eot:    true,
		},
		{
			name:     "slow tempo strict",
			body:     append([]byte{0x00, 0xFF, 0x51, 0x03, 0x4C, 0x4B, 0x40}, endOfTrack...),
			opts:     Options{Strict: true},
			warnings: []Code{CodeTempoOutOfRange},
			eot:      true,
		},
		{
			name: "slow tempo lenient",
			body: append([]byte{0x00, 0xFF, 0x51, 0x03, 0x4C, 0x4B, 0x40}, endOfTrack...),
			eot:  true,
		},
		{
			name: "normal tempo strict",
			body: append([]byte{0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20}, endOfTrack...),
			opts: Options{Strict: true},
			eot:  true,
		},
		{
			name:     "time signature zero numerator",
			body:     append([]byte{0x00, 0xFF, 0x58, 0x04, 0x00, 0x02, 0x18, 0x08}, endOfTrack...),
			warnings: []Code{CodeTimeSignatureUnusual},
			eot:      true,
		},
		{
			name:     "time signature large denominator",
			body:     append([]byte{0x00, 0xFF, 0x58, 0x04, 0x04, 0x08, 0x18, 0x08}, endOfTrack...),
			warnings: []Code{CodeTimeSignatureUnusual},
			eot:      true,
		},
		{
			name:   "time signature wrong length",
			body:   append([]byte{0x00, 0xFF, 0x58, 0x03, 0x04, 0x02, 0x18}, endOfTrack...),
			errors: []Code{CodeTimeSignatureLength},
			eot:    true,
		},
		{
			name:   "key signature wrong length",
			body:   append([]byte{0x00, 0xFF, 0x59, 0x01, 0x00}, endOfTrack...),
			errors: []Code{CodeKeySignatureLength},
			eot:    true,
		},
		{
			name: "unrecognized meta",
			body: append([]byte{0x00, 0xFF, 0x03, 0x04, 'L', 'e', 'a', 'd'}, endOfTrack...),
			eot:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := smfBytes(0, 96, trackChunk(tt.body))
			rep := Validate(tt.name, data, tt.opts)
			if len(rep.Tracks) != 1 {
				t.Fatalf("len(Tracks) = %d, want 1", len(rep.Tracks))
			}
			tr := rep.Tracks[0]
			if got := codes(tr.Errors()); !reflect.DeepEqual(got, tt.errors) {
				t.Errorf("track errors = %v, want %v", got, tt.errors)
			}
			if got := codes(tr.Warnings()); !reflect.DeepEqual(got, tt.warnings) {
				t.Errorf("track warnings = %v, want %v", got, tt.warnings)
			}
			if tr.HasEndOfTrack != tt.eot {
				t.Errorf("HasEndOfTrack = %v, want %v", tr.HasEndOfTrack, tt.eot)
			}
			if rep.OK != (len(tt.errors) == 0) {
				t.Errorf("OK = %v, want %v", rep.OK, len(tt.errors) == 0)
			}
		})
	}
}

func TestMissingEndOfTrackKeepsParsedLength(t *testing.T) {
	body := []byte{0x00, 0xC0, 0x05, 0x10, 0x90, 0x3C, 0x40}
	rep := Validate("no-eot.mid", smfBytes(0, 96, trackChunk(body)), Options{})
	tr := rep.Tracks[0]
	if tr.HasEndOfTrack {
		t.Error("HasEndOfTrack = true, want false")
	}
	if len(tr.Errors()) != 1 || tr.Errors()[0].Code != CodeMissingEndOfTrack {
		t.Errorf("errors = %v, want one %s", tr.Errors(), CodeMissingEndOfTrack)
	}
	if tr.LengthParsed != len(body) {
		t.Errorf("LengthParsed = %d, want %d", tr.LengthParsed, len(body))
	}
	if tr.Stats.ProgramChanges != 1 || tr.Stats.NoteOn != 1 {
		t.Errorf("Stats = %+v, want 1 program change and 1 note on", tr.Stats)
	}
}

func TestNoteCounting(t *testing.T) {
	tests := []struct {
		name     string
		body     []byte
		opts     Options
		noteOn   int
		noteOff  int
		dangling int
	}{
		{
			name:    "velocity zero is note off",
			body:    []byte{0x00, 0x90, 0x3C, 0x40, 0x60, 0x3C, 0x00},
			opts:    Options{PairNotes: true},
			noteOn:  1,
			noteOff: 1,
		},
		{
			name:     "unmatched note is dangling",
			body:     []byte{0x00, 0x90, 0x3C, 0x40, 0x00, 0x3E, 0x40, 0x60, 0x80, 0x3C, 0x00},
			opts:     Options{PairNotes: true},
			noteOn:   2,
			noteOff:  1,
			dangling: 1,
		},
		{
			name:    "dangling needs pairing",
			body:    []byte{0x00, 0x90, 0x3C, 0x40, 0x00, 0x3E, 0x40, 0x60, 0x80, 0x3C, 0x00},
			noteOn:  2,
			noteOff: 1,
		},
		{
			name:     "note off before note on clamps at zero",
			body:     []byte{0x00, 0x80, 0x3C, 0x00, 0x00, 0x90, 0x3C, 0x40},
			opts:     Options{PairNotes: true},
			noteOn:   1,
			noteOff:  1,
			dangling: 1,
		},
		{
			name:     "channels are separate",
			body:     []byte{0x00, 0x90, 0x3C, 0x40, 0x00, 0x81, 0x3C, 0x00},
			opts:     Options{PairNotes: true},
			noteOn:   1,
			noteOff:  1,
			dangling: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := append(append([]byte{}, tt.body...), endOfTrack...)
			rep := Validate(tt.name, smfBytes(0, 96, trackChunk(body)), tt.opts)
			if !rep.OK {
				t.Fatalf("OK = false, diagnostics: %v", rep.AllDiagnostics())
			}
			s := rep.Tracks[0].Stats
			if s.NoteOn != tt.noteOn {
				t.Errorf("NoteOn = %d, want %d", s.NoteOn, tt.noteOn)
			}
			if s.NoteOff != tt.noteOff {
				t.Errorf("NoteOff = %d, want %d", s.NoteOff, tt.noteOff)
			}
			if s.DanglingNotes != tt.dangling {
				t.Errorf("DanglingNotes = %d, want %d", s.DanglingNotes, tt.dangling)
			}
		})
	}
}

func TestTrackStats(t *testing.T) {
	body := bytes.Join([][]byte{
		{0x00, 0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08},
		{0x00, 0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20},
		{0x00, 0xFF, 0x59, 0x02, 0x00, 0x00},
		{0x00, 0xB0, 0x07, 0x64},
		{0x00, 0xC0, 0x05},
		{0x00, 0xA0, 0x3C, 0x10},
		{0x00, 0xD0, 0x20},
		{0x00, 0xE0, 0x00, 0x40},
		{0x00, 0xF0, 0x02, 0x7E, 0xF7},
		{0x83, 0x00, 0xFF, 0x51, 0x03, 0x0F, 0x42, 0x40},
		endOfTrack,
	}, nil)
	rep := Validate("stats.mid", smfBytes(1, 480, trackChunk(body)), Options{})
	if !rep.OK {
		t.Fatalf("OK = false, diagnostics: %v", rep.AllDiagnostics())
	}
	got := rep.Tracks[0].Stats
	want := TrackStats{
		ProgramChanges:      1,
		Controllers:         1,
		PitchBends:          1,
		PolyAftertouch:      1,
		ChannelAftertouch:   1,
		SysEx:               1,
		Meta:                5,
		TempoEvents:         2,
		TimeSignatureEvents: 1,
		KeySignatureEvents:  1,
		TempoValues:         []uint32{500000, 1000000},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}

func TestTrackLengthExceedsFile(t *testing.T) {
	data := header(0, 1, 96)
	data = append(data, []byte("MTrk\x00\x00\x00\x64")...)
	data = append(data, endOfTrack...)

	rep := Validate("overrun.mid", data, Options{})
	tr := rep.Tracks[0]
	if !hasCode(tr.Errors(), CodeTrackLengthExceedsFile) {
		t.Errorf("errors = %v, want %s", tr.Errors(), CodeTrackLengthExceedsFile)
	}
	if !hasCode(tr.Warnings(), CodeTrackLengthMismatch) {
		t.Errorf("warnings = %v, want %s", tr.Warnings(), CodeTrackLengthMismatch)
	}
	if tr.LengthParsed != 4 || tr.LengthDeclared != 100 {
		t.Errorf("LengthParsed = %d, LengthDeclared = %d, want 4, 100", tr.LengthParsed, tr.LengthDeclared)
	}
	if !tr.HasEndOfTrack {
		t.Error("HasEndOfTrack = false, want true")
	}
	if rep.OK {
		t.Error("OK = true, want false")
	}
}

func TestBrokenTrackDoesNotStopLaterTracks(t *testing.T) {
	broken := trackChunk([]byte{0x00, 0xF4, 0x01, 0x02, 0x03, 0x04})
	good := trackChunk([]byte{0x00, 0x90, 0x3C, 0x40, 0x60, 0x80, 0x3C, 0x00}, endOfTrack)
	rep := Validate("multi.mid", smfBytes(1, 96, broken, good), Options{})

	if len(rep.Tracks) != 2 {
		t.Fatalf("len(Tracks) = %d, want 2", len(rep.Tracks))
	}
	for i, tr := range rep.Tracks {
		if tr.Index != i {
			t.Errorf("Tracks[%d].Index = %d", i, tr.Index)
		}
	}
	if len(rep.Tracks[0].Errors()) == 0 {
		t.Error("track 0 has no errors")
	}
	if len(rep.Tracks[1].Diagnostics) != 0 {
		t.Errorf("track 1 diagnostics = %v, want none", rep.Tracks[1].Diagnostics)
	}
	if rep.Tracks[1].Stats.NoteOn != 1 {
		t.Errorf("track 1 NoteOn = %d, want 1", rep.Tracks[1].Stats.NoteOn)
	}
	if rep.OK {
		t.Error("OK = true, want false")
	}
}

func TestBadTrackMagic(t *testing.T) {
	data := header(0, 1, 96)
	data = append(data, []byte("XTrk\x00\x00\x00\x04")...)
	data = append(data, endOfTrack...)

	rep := Validate("xtrk.mid", data, Options{})
	if len(rep.Tracks) != 1 {
		t.Fatalf("len(Tracks) = %d, want 1", len(rep.Tracks))
	}
	if got := codes(rep.Tracks[0].Diagnostics); !reflect.DeepEqual(got, []Code{CodeBadTrackMagic}) {
		t.Errorf("diagnostics = %v, want [%s]", got, CodeBadTrackMagic)
	}
}

func TestFewerTracksThanDeclared(t *testing.T) {
	data := header(1, 3, 96)
	data = append(data, trackChunk(endOfTrack)...)

	rep := Validate("short.mid", data, Options{})
	if len(rep.Tracks) != 1 {
		t.Errorf("len(Tracks) = %d, want 1", len(rep.Tracks))
	}
	if !rep.OK {
		t.Errorf("OK = false, diagnostics: %v", rep.AllDiagnostics())
	}
}

func TestOffsetsWithinFile(t *testing.T) {
	inputs := [][]byte{
		smfBytes(0, 96, trackChunk([]byte{0x00, 0x90})),
		smfBytes(0, 0xE700, trackChunk([]byte{0x00, 0xFF, 0x51})),
		smfBytes(3, 0, trackChunk()),
		append(header(0, 1, 96), []byte("MTrk\x00\x00\xFF\xFF\x00")...),
		append(header(0, 2, 96), []byte("MTr")...),
		[]byte("MThd\x00\x00\x00\x10\x00"),
	}

	for i, data := range inputs {
		rep := Validate("offsets", data, Options{Strict: true, PairNotes: true})
		for _, d := range rep.AllDiagnostics() {
			if d.Offset < 0 || d.Offset >= len(data) {
				t.Errorf("input %d: %v has offset outside [0, %d)", i, d, len(data))
			}
		}
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	data := smfBytes(1, 96,
		trackChunk([]byte{0x00, 0xFF, 0x51, 0x03, 0x4C, 0x4B, 0x40, 0x00, 0x90, 0x3C, 0x40}),
		trackChunk([]byte{0x00, 0x3C}),
	)
	opts := Options{PairNotes: true, Strict: true}

	first := Validate("same.mid", data, opts)
	second := Validate("same.mid", data, opts)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reports differ:\n%+v\n%+v", first, second)
	}
}

func TestValidateGeneratedFile(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(96)

	var track smf.Track
	track.Add(0, smf.Message([]byte{0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20}))
	track.Add(0, smf.Message([]byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08}))
	track.Add(0, midi.ProgramChange(0, 5))
	track.Add(0, midi.NoteOn(0, 60, 100))
	track.Add(96, midi.NoteOff(0, 60))
	track.Add(0, midi.NoteOn(0, 62, 100))
	track.Add(96, midi.NoteOff(0, 62))
	track.Close(0)
	if err := s.Add(track); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}

	rep := Validate("generated.mid", buf.Bytes(), Options{PairNotes: true, Strict: true})
	if !rep.OK {
		t.Fatalf("OK = false, diagnostics: %v", rep.AllDiagnostics())
	}
	if rep.Header.TrackCount != 1 || rep.Header.Division.TicksPerQuarterNote() != 96 {
		t.Errorf("Header = %v, want 1 track at 96 ppqn", rep.Header)
	}
	st := rep.Tracks[0].Stats
	if st.NoteOn != 2 || st.NoteOff != 2 || st.DanglingNotes != 0 {
		t.Errorf("notes on/off/dangling = %d/%d/%d, want 2/2/0", st.NoteOn, st.NoteOff, st.DanglingNotes)
	}
	if !reflect.DeepEqual(st.TempoValues, []uint32{500000}) {
		t.Errorf("TempoValues = %v, want [500000]", st.TempoValues)
	}
	if st.ProgramChanges != 1 || st.TimeSignatureEvents != 1 {
		t.Errorf("Stats = %+v", st)
	}
}

func TestReportOffsets(t *testing.T) {
	r := &FileReport{
		Diagnostics: []Diagnostic{{Severity: SeverityError, Offset: NoOffset}},
		Tracks: []TrackReport{
			{Diagnostics: []Diagnostic{
				{Severity: SeverityWarning, Offset: 30},
				{Severity: SeverityError, Offset: 22},
				{Severity: SeverityError, Offset: 30},
			}},
		},
	}
	if got := r.Offsets(); !reflect.DeepEqual(got, []int{30, 22}) {
		t.Errorf("Offsets() = %v, want [30 22]", got)
	}
	if got := r.FirstOffset(); got != 30 {
		t.Errorf("FirstOffset() = %d, want 30", got)
	}
	if got := (&FileReport{}).FirstOffset(); got != 0 {
		t.Errorf("empty FirstOffset() = %d, want 0", got)
	}
}
