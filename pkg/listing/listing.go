// Package listing decodes the events of a MIDI file for display
package listing

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Line is one decoded track event
type Line struct {
	Track   int    `json:"track"`
	Tick    int64  `json:"tick"` // Absolute tick within the track
	Delta   uint32 `json:"delta"`
	Message string `json:"message"`
	Note    string `json:"note,omitempty"`
}

// Listing is the decoded content of a file
type Listing struct {
	TimeFormat string `json:"time_format"`
	Tracks     int    `json:"tracks"`
	Lines      []Line `json:"lines"`
}

// List decodes data with the gomidi SMF reader. It is meant for files the
// validator accepts; anything the reader rejects is returned as an error.
func List(data []byte) (*Listing, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	l := &Listing{
		TimeFormat: fmt.Sprint(s.TimeFormat),
		Tracks:     len(s.Tracks),
	}
	for i, track := range s.Tracks {
		var tick int64
		for _, ev := range track {
			tick += int64(ev.Delta)
			msg := []byte(ev.Message)
			l.Lines = append(l.Lines, Line{
				Track:   i,
				Tick:    tick,
				Delta:   ev.Delta,
				Message: fmt.Sprint(ev.Message),
				Note:    annotate(msg),
			})
		}
	}
	return l, nil
}

// Write prints the listing as aligned text, one event per line
func (l *Listing) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "time format: %s, %d track(s)\n", l.TimeFormat, l.Tracks); err != nil {
		return err
	}
	for _, ln := range l.Lines {
		note := ""
		if ln.Note != "" {
			note = "  ; " + ln.Note
		}
		if _, err := fmt.Fprintf(w, "%3d %8d %6d  %s%s\n", ln.Track, ln.Tick, ln.Delta, ln.Message, note); err != nil {
			return err
		}
	}
	return nil
}

// String renders the listing like Write
func (l *Listing) String() string {
	var s strings.Builder
	_ = l.Write(&s)
	return s.String()
}

// annotate adds a human hint for a few message kinds
func annotate(msg []byte) string {
	if len(msg) == 0 {
		return ""
	}
	status := msg[0]
	switch {
	// Tempo meta message (FF 51 03 tt tt tt)
	case len(msg) >= 6 && status == 0xFF && msg[1] == 0x51 && msg[2] == 0x03:
		us := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
		if us == 0 {
			return ""
		}
		return fmt.Sprintf("%.2f bpm", 60000000.0/float64(us))
	case status == SysExStart:
		id, err := ExtractManufacturerID(msg)
		if err != nil {
			return ""
		}
		return "manufacturer " + ManufacturerName(id)
	case len(msg) >= 3 && (status&0xF0 == 0x90 || status&0xF0 == 0x80):
		return NoteName(msg[1])
	}
	return ""
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the pitch name of a MIDI key, with middle C (60) as C4
func NoteName(key uint8) string {
	return fmt.Sprintf("%s%d", noteNames[key%12], int(key)/12-1)
}
