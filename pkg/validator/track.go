package validator

// Meta event types the validator interprets
const (
	MetaEndOfTrack    = 0x2F
	MetaTempo         = 0x51
	MetaTimeSignature = 0x58
	MetaKeySignature  = 0x59
)

// Status bytes outside the channel voice range
const (
	StatusSysEx       = 0xF0
	StatusSysExEscape = 0xF7
	StatusMeta        = 0xFF
)

// Strict-mode tempo bounds in microseconds per quarter note
const (
	MinStrictTempo = 10000
	MaxStrictTempo = 2000000
)

type scanState int

const (
	stateScanning scanState = iota
	stateEndOfTrack
	stateAborted
)

type noteKey struct {
	channel uint8
	pitch   uint8
}

// trackDecoder walks the events of one MTrk chunk. It owns the report it
// builds until decodeTrack returns it.
type trackDecoder struct {
	opts   Options
	c      *Cursor // Bounded to the chunk body
	diags  *diagnostics
	report TrackReport
	status byte // Running status, 0 when none seen yet
	active map[noteKey]int
}

// decodeTrack reads one track chunk from c and leaves c at the declared end
// of the chunk, or at the end of the buffer when the chunk overruns it.
func decodeTrack(c *Cursor, index int, opts Options) TrackReport {
	diags := newDiagnostics(c.Len())
	report := TrackReport{Index: index}

	tagOffset := c.Offset()
	tag, err := c.Read(4)
	if err != nil {
		c.Skip(c.Remaining())
		diags.errorf(CodeTrackHeaderTruncated, tagOffset, "track %d: chunk header truncated", index)
		report.Diagnostics = diags.result()
		return report
	}
	if string(tag) != TrackTag {
		diags.errorf(CodeBadTrackMagic, tagOffset, "track %d: missing %s (found %q)", index, TrackTag, tag)
		report.Diagnostics = diags.result()
		return report
	}
	length, err := c.ReadUint32()
	if err != nil {
		c.Skip(c.Remaining())
		diags.errorf(CodeTrackHeaderTruncated, tagOffset+4, "track %d: chunk length truncated", index)
		report.Diagnostics = diags.result()
		return report
	}
	report.LengthDeclared = length

	start := c.Offset()
	if uint64(length) > uint64(c.Remaining()) {
		diags.errorf(CodeTrackLengthExceedsFile, start, "track %d: declared length %d exceeds file (%d bytes left)", index, length, c.Remaining())
	}
	body := c.Sub(int(min(uint64(length), uint64(c.Remaining()))))

	d := &trackDecoder{
		opts:   opts,
		c:      body,
		diags:  diags,
		report: report,
		active: make(map[noteKey]int),
	}
	d.scan()

	c.Skip(body.Len())
	end := start + body.Len()
	d.finish(end)
	return d.report
}

func (d *trackDecoder) scan() {
	state := stateScanning
	for state == stateScanning && d.c.Remaining() > 0 {
		state = d.step()
	}
	d.report.LengthParsed = d.c.Pos()
}

func (d *trackDecoder) finish(end int) {
	r := &d.report
	if uint64(r.LengthParsed) != uint64(r.LengthDeclared) {
		d.diags.warnf(CodeTrackLengthMismatch, end, "track %d: parsed length %d != declared %d", r.Index, r.LengthParsed, r.LengthDeclared)
	}
	if !r.HasEndOfTrack {
		d.diags.errorf(CodeMissingEndOfTrack, end-1, "track %d: no End-of-Track (FF 2F 00)", r.Index)
	}
	if d.opts.PairNotes {
		for _, n := range d.active {
			r.Stats.DanglingNotes += n
		}
	}
	r.Diagnostics = d.diags.result()
}

// step decodes one event
func (d *trackDecoder) step() scanState {
	idx := d.report.Index
	deltaOffset := d.c.Offset()
	if _, err := d.c.ReadVLQ(); err != nil {
		d.diags.errorf(CodeVLQInvalid, deltaOffset, "track %d: invalid delta-time: %v", idx, err)
		return stateAborted
	}
	if d.c.Remaining() == 0 {
		return stateScanning
	}

	b, _ := d.c.ReadByte()
	if b&0x80 != 0 {
		d.status = b
	} else {
		if d.status == 0 {
			d.diags.errorf(CodeRunningStatusNoPrior, d.c.Offset()-1, "track %d: running status without a previous status byte", idx)
			return stateAborted
		}
		_ = d.c.UnreadByte()
	}

	switch {
	case d.status >= 0x80 && d.status <= 0xEF:
		return d.channelMessage()
	case d.status == StatusMeta:
		return d.metaEvent()
	case d.status == StatusSysEx || d.status == StatusSysExEscape:
		return d.sysExEvent()
	default:
		d.diags.errorf(CodeUnknownStatusByte, d.c.Offset()-1, "track %d: unknown status byte 0x%02X", idx, d.status)
		return stateAborted
	}
}

func (d *trackDecoder) channelMessage() scanState {
	idx := d.report.Index
	kind := d.status & 0xF0
	channel := d.status & 0x0F
	n := 2
	if kind == 0xC0 || kind == 0xD0 {
		n = 1
	}
	dataOffset := d.c.Offset()
	data, err := d.c.Read(n)
	if err != nil {
		d.diags.errorf(CodeChannelDataTruncated, dataOffset, "track %d: not enough data for 0x%02X", idx, d.status)
		return stateAborted
	}
	for _, v := range data {
		if v > 127 {
			d.diags.errorf(CodeDataOutOfRange, dataOffset, "track %d: data byte > 127 in message 0x%02X: %d", idx, d.status, v)
			break
		}
	}

	s := &d.report.Stats
	switch kind {
	case 0x80:
		s.NoteOff++
		d.release(channel, data[0])
	case 0x90:
		if data[1] == 0 {
			s.NoteOff++
			d.release(channel, data[0])
		} else {
			s.NoteOn++
			if d.opts.PairNotes {
				d.active[noteKey{channel, data[0]}]++
			}
		}
	case 0xA0:
		s.PolyAftertouch++
	case 0xB0:
		s.Controllers++
	case 0xC0:
		s.ProgramChanges++
	case 0xD0:
		s.ChannelAftertouch++
	case 0xE0:
		s.PitchBends++
	}
	return stateScanning
}

// release decrements the active count for a note, never below zero
func (d *trackDecoder) release(channel, pitch uint8) {
	if !d.opts.PairNotes {
		return
	}
	k := noteKey{channel, pitch}
	if d.active[k] > 0 {
		d.active[k]--
	}
	if d.active[k] == 0 {
		delete(d.active, k)
	}
}

func (d *trackDecoder) metaEvent() scanState {
	idx := d.report.Index
	if d.c.Remaining() < 2 {
		d.diags.errorf(CodeMetaTruncated, d.c.Offset(), "track %d: meta event truncated", idx)
		return stateAborted
	}
	metaType, _ := d.c.ReadByte()
	length, err := d.c.ReadVLQ()
	if err != nil {
		d.diags.errorf(CodeMetaTruncated, d.c.Offset(), "track %d: invalid meta length: %v", idx, err)
		return stateAborted
	}
	dataOffset := d.c.Offset()
	if uint64(length) > uint64(d.c.Remaining()) {
		d.diags.errorf(CodeMetaTruncated, dataOffset, "track %d: meta 0x%02X data truncated (%d of %d bytes)", idx, metaType, d.c.Remaining(), length)
		return stateAborted
	}
	data, _ := d.c.Read(int(length))

	s := &d.report.Stats
	s.Meta++
	switch metaType {
	case MetaEndOfTrack:
		if length != 0 {
			d.diags.errorf(CodeEndOfTrackLength, dataOffset, "track %d: End-of-Track length %d (expected 0)", idx, length)
		}
		d.report.HasEndOfTrack = true
		if rest := d.c.Remaining(); rest > 0 {
			d.diags.warnf(CodeDataAfterEndOfTrack, d.c.Offset(), "track %d: %d extra bytes after End-of-Track", idx, rest)
			d.c.Skip(rest)
		}
		return stateEndOfTrack
	case MetaTempo:
		if length != 3 {
			d.diags.errorf(CodeTempoLength, dataOffset, "track %d: tempo length %d (expected 3)", idx, length)
			break
		}
		us := uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
		s.TempoEvents++
		s.TempoValues = append(s.TempoValues, us)
		if d.opts.Strict && (us < MinStrictTempo || us > MaxStrictTempo) {
			d.diags.warnf(CodeTempoOutOfRange, dataOffset, "track %d: unusual tempo %d us/qn", idx, us)
		}
	case MetaTimeSignature:
		if length != 4 {
			d.diags.errorf(CodeTimeSignatureLength, dataOffset, "track %d: time signature length %d (expected 4)", idx, length)
			break
		}
		nn, dd := data[0], data[1]
		if nn == 0 || dd > 7 {
			d.diags.warnf(CodeTimeSignatureUnusual, dataOffset, "track %d: unusual time signature nn=%d, dd=%d", idx, nn, dd)
		}
		s.TimeSignatureEvents++
	case MetaKeySignature:
		if length != 2 {
			d.diags.errorf(CodeKeySignatureLength, dataOffset, "track %d: key signature length %d (expected 2)", idx, length)
			break
		}
		s.KeySignatureEvents++
	}
	return stateScanning
}

func (d *trackDecoder) sysExEvent() scanState {
	idx := d.report.Index
	lengthOffset := d.c.Offset()
	length, err := d.c.ReadVLQ()
	if err != nil {
		d.diags.errorf(CodeSysExTruncated, lengthOffset, "track %d: invalid SysEx length: %v", idx, err)
		return stateAborted
	}
	if uint64(length) > uint64(d.c.Remaining()) {
		d.diags.errorf(CodeSysExTruncated, d.c.Offset(), "track %d: SysEx truncated (%d of %d bytes)", idx, d.c.Remaining(), length)
		return stateAborted
	}
	d.c.Skip(int(length))
	d.report.Stats.SysEx++
	return stateScanning
}
