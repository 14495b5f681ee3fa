package validator

import "fmt"

// diagnostics accumulates findings for one decoding step. size is the file
// length; offsets are clamped into [0, size) so a hex view can always point
// at a real byte.
type diagnostics struct {
	list []Diagnostic
	size int
}

func newDiagnostics(size int) *diagnostics {
	return &diagnostics{size: size}
}

func (d *diagnostics) errorf(code Code, offset int, format string, args ...any) {
	d.add(SeverityError, code, offset, fmt.Sprintf(format, args...))
}

func (d *diagnostics) warnf(code Code, offset int, format string, args ...any) {
	d.add(SeverityWarning, code, offset, fmt.Sprintf(format, args...))
}

func (d *diagnostics) add(sev Severity, code Code, offset int, msg string) {
	d.list = append(d.list, Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		Offset:   d.clamp(offset),
	})
}

func (d *diagnostics) clamp(offset int) int {
	switch {
	case d.size == 0 || offset < 0:
		return NoOffset
	case offset >= d.size:
		return d.size - 1
	}
	return offset
}

// Result hands the collected list to the caller
func (d *diagnostics) result() []Diagnostic {
	return d.list
}
