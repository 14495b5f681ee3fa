package validator

// Code identifies the check that produced a diagnostic
type Code string

// Header checks
const (
	CodeBadHeaderMagic  Code = "bad-header-magic"
	CodeHeaderTooShort  Code = "header-too-short"
	CodeHeaderTruncated Code = "header-truncated"
	CodeHeaderExtended  Code = "header-extended"
	CodeUnknownFormat   Code = "unknown-format"
	CodeNoTracks        Code = "no-tracks"
	CodeSMPTEUnusualFPS Code = "smpte-unusual-fps"
	CodeSMPTEZeroTicks  Code = "smpte-zero-ticks"
	CodePPQNZero        Code = "ppqn-zero"
)

// Track checks
const (
	CodeBadTrackMagic          Code = "bad-track-magic"
	CodeTrackHeaderTruncated   Code = "track-header-truncated"
	CodeTrackLengthExceedsFile Code = "track-length-exceeds-file"
	CodeVLQInvalid             Code = "vlq-invalid"
	CodeRunningStatusNoPrior   Code = "running-status-without-prior"
	CodeChannelDataTruncated   Code = "channel-data-truncated"
	CodeDataOutOfRange         Code = "data-out-of-range"
	CodeMetaTruncated          Code = "meta-truncated"
	CodeSysExTruncated         Code = "sysex-truncated"
	CodeUnknownStatusByte      Code = "unknown-status-byte"
	CodeEndOfTrackLength       Code = "eot-length"
	CodeDataAfterEndOfTrack    Code = "data-after-eot"
	CodeTempoLength            Code = "tempo-length"
	CodeTempoOutOfRange        Code = "tempo-out-of-range"
	CodeTimeSignatureLength    Code = "timesig-length"
	CodeTimeSignatureUnusual   Code = "timesig-unusual"
	CodeKeySignatureLength     Code = "keysig-length"
	CodeTrackLengthMismatch    Code = "track-length-mismatch"
	CodeMissingEndOfTrack      Code = "missing-end-of-track"
)

// Check describes one diagnostic code
type Check struct {
	Code        Code     `json:"code"`
	Severity    Severity `json:"severity"`
	Fatal       bool     `json:"fatal"` // Aborts the header or the current track
	Description string   `json:"description"`
}

var checks = []Check{
	{CodeBadHeaderMagic, SeverityError, true, "file does not start with MThd"},
	{CodeHeaderTooShort, SeverityError, true, "MThd length is below 6"},
	{CodeHeaderTruncated, SeverityError, true, "file ends inside the MThd chunk"},
	{CodeHeaderExtended, SeverityWarning, false, "MThd length is above 6, extra bytes skipped"},
	{CodeUnknownFormat, SeverityError, false, "format is not 0, 1 or 2"},
	{CodeNoTracks, SeverityError, false, "track count is 0"},
	{CodeSMPTEUnusualFPS, SeverityWarning, false, "SMPTE frame rate is not 24, 25, 29 or 30"},
	{CodeSMPTEZeroTicks, SeverityError, false, "SMPTE ticks per frame is 0"},
	{CodePPQNZero, SeverityError, false, "ticks per quarter note is 0"},
	{CodeBadTrackMagic, SeverityError, true, "track chunk does not start with MTrk"},
	{CodeTrackHeaderTruncated, SeverityError, true, "file ends inside an MTrk chunk header"},
	{CodeTrackLengthExceedsFile, SeverityError, false, "declared track length runs past the end of the file"},
	{CodeVLQInvalid, SeverityError, true, "variable-length quantity is truncated or longer than 4 bytes"},
	{CodeRunningStatusNoPrior, SeverityError, true, "data byte found before any status byte"},
	{CodeChannelDataTruncated, SeverityError, true, "channel message is missing data bytes"},
	{CodeDataOutOfRange, SeverityError, false, "channel message data byte is above 127"},
	{CodeMetaTruncated, SeverityError, true, "meta event is truncated"},
	{CodeSysExTruncated, SeverityError, true, "system exclusive event is truncated"},
	{CodeUnknownStatusByte, SeverityError, true, "status byte is not valid inside a track"},
	{CodeEndOfTrackLength, SeverityError, false, "End-of-Track meta event has a non-zero length"},
	{CodeDataAfterEndOfTrack, SeverityWarning, false, "bytes follow End-of-Track inside the chunk"},
	{CodeTempoLength, SeverityError, false, "Set-Tempo meta event length is not 3"},
	{CodeTempoOutOfRange, SeverityWarning, false, "tempo is outside 10000..2000000 us/qn (strict mode)"},
	{CodeTimeSignatureLength, SeverityError, false, "Time-Signature meta event length is not 4"},
	{CodeTimeSignatureUnusual, SeverityWarning, false, "time signature numerator is 0 or denominator exponent above 7"},
	{CodeKeySignatureLength, SeverityError, false, "Key-Signature meta event length is not 2"},
	{CodeTrackLengthMismatch, SeverityWarning, false, "parsed track length differs from the declared length"},
	{CodeMissingEndOfTrack, SeverityError, false, "track has no End-of-Track meta event"},
}

// Checks returns every diagnostic code the validator can emit
func Checks() []Check {
	out := make([]Check, len(checks))
	copy(out, checks)
	return out
}
