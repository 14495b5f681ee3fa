package validator

// Validate decodes data as a Standard MIDI File and reports every problem it
// finds. It never fails: a malformed file yields a report with errors.
// source is only recorded in the report.
func Validate(source string, data []byte, opts Options) *FileReport {
	report := &FileReport{
		Source: source,
		Size:   len(data),
		Tracks: []TrackReport{},
	}
	c := NewCursor(data)

	hr := decodeHeader(c)
	report.Diagnostics = hr.diagnostics
	if hr.header == nil {
		report.OK = false
		return report
	}
	report.Header = hr.header

	for i := 0; i < int(hr.header.TrackCount) && c.Remaining() > 0; i++ {
		report.Tracks = append(report.Tracks, decodeTrack(c, i, opts))
	}

	report.OK = report.ErrorCount() == 0
	return report
}
