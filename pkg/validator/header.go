package validator

import "fmt"

// Chunk tags
const (
	HeaderTag = "MThd"
	TrackTag  = "MTrk"
)

// headerBodySize is the size of the fixed MThd fields
const headerBodySize = 6

// headerResult is what decodeHeader hands to the aggregator. header is nil
// when the chunk could not be trusted.
type headerResult struct {
	header      *Header
	diagnostics []Diagnostic
}

// decodeHeader reads the MThd chunk at the cursor position
func decodeHeader(c *Cursor) headerResult {
	diags := newDiagnostics(c.Len())
	abort := func(code Code, offset int, format string, args ...any) headerResult {
		diags.errorf(code, offset, format, args...)
		return headerResult{diagnostics: diags.result()}
	}

	tagOffset := c.Offset()
	tag, err := c.Read(4)
	if err != nil {
		return abort(CodeBadHeaderMagic, tagOffset, "no %s at start of file: %v", HeaderTag, err)
	}
	if string(tag) != HeaderTag {
		return abort(CodeBadHeaderMagic, tagOffset, "no %s at start of file (found %q)", HeaderTag, tag)
	}

	lengthOffset := c.Offset()
	length, err := c.ReadUint32()
	if err != nil {
		return abort(CodeHeaderTruncated, lengthOffset, "header length missing: %v", err)
	}
	if length < headerBodySize {
		return abort(CodeHeaderTooShort, lengthOffset, "header too short: %d bytes (standard is %d)", length, headerBodySize)
	}

	bodyOffset := c.Offset()
	body, err := c.Read(headerBodySize)
	if err != nil {
		return abort(CodeHeaderTruncated, bodyOffset, "header fields truncated: %v", err)
	}
	h := &Header{
		Format:     uint16(body[0])<<8 | uint16(body[1]),
		TrackCount: uint16(body[2])<<8 | uint16(body[3]),
		Division:   Division(uint16(body[4])<<8 | uint16(body[5])),
	}

	if length > headerBodySize {
		extraOffset := c.Offset()
		if _, err := c.Read(int(length - headerBodySize)); err != nil {
			return abort(CodeHeaderTruncated, extraOffset, "header declares %d bytes but file ends early: %v", length, err)
		}
		diags.warnf(CodeHeaderExtended, extraOffset, "header has %d bytes (standard is %d)", length, headerBodySize)
	}

	if h.Format > 2 {
		diags.errorf(CodeUnknownFormat, bodyOffset, "unknown format: %d", h.Format)
	}
	if h.TrackCount == 0 {
		diags.errorf(CodeNoTracks, bodyOffset+2, "track count is 0")
	}
	validateDivision(h.Division, bodyOffset+4, diags)

	return headerResult{header: h, diagnostics: diags.result()}
}

func validateDivision(d Division, offset int, diags *diagnostics) {
	if !d.IsSMPTE() {
		if d.TicksPerQuarterNote() == 0 {
			diags.errorf(CodePPQNZero, offset, "division PPQN must be > 0")
		}
		return
	}
	fps, tpf := d.SMPTE()
	switch fps {
	case 24, 25, 29, 30:
	default:
		diags.warnf(CodeSMPTEUnusualFPS, offset, "unusual SMPTE frame rate: %d fps", fps)
	}
	if tpf == 0 {
		diags.errorf(CodeSMPTEZeroTicks, offset+1, "SMPTE ticks per frame is 0")
	}
}

// String renders the header the way reports print it
func (h *Header) String() string {
	return fmt.Sprintf("format %d, %d track(s), %s", h.Format, h.TrackCount, h.Division)
}
