package convert

import (
	"fmt"

	"fileforge/internal/formats"
)

// Progress receives advisory progress updates during a conversion.
// Callers must tolerate coarse jumps; converters that cannot report
// incrementally go straight from 0 to 100.
type Progress func(percent int, message string)

// Result is the outcome of a successful conversion. Archive is set
// when Data is a zip bundle rather than a single file of the requested
// format (PDF image extraction with more than one image).
type Result struct {
	Data    []byte
	Archive bool
}

// Func converts input bytes into the requested output format using
// already-validated options. Implementations are stateless and perform
// no filesystem writes; persistence is the orchestrator's job.
type Func func(input []byte, outputFormat string, opts formats.Options, report Progress) (Result, error)

// Error wraps an underlying converter failure. The orchestrator records
// it on the job instead of letting it escape the conversion boundary.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

func failed(err error, format string, args ...any) error {
	return &Error{Reason: fmt.Sprintf(format, args...), Err: err}
}

// Limits bounds resource usage per conversion. Zero fields fall back to
// the defaults below.
type Limits struct {
	MaxImageDimension int
	MaxPDFPages       int
	MaxRows           int
	MaxColumns        int
}

// DefaultLimits returns the stock processing limits.
func DefaultLimits() Limits {
	return Limits{
		MaxImageDimension: 10000,
		MaxPDFPages:       500,
		MaxRows:           1_000_000,
		MaxColumns:        1000,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxImageDimension <= 0 {
		l.MaxImageDimension = d.MaxImageDimension
	}
	if l.MaxPDFPages <= 0 {
		l.MaxPDFPages = d.MaxPDFPages
	}
	if l.MaxRows <= 0 {
		l.MaxRows = d.MaxRows
	}
	if l.MaxColumns <= 0 {
		l.MaxColumns = d.MaxColumns
	}
	return l
}

// Converter bundles the three conversion families behind a single
// dispatch point.
type Converter struct {
	limits Limits
}

// New creates a Converter with the given limits.
func New(limits Limits) *Converter {
	return &Converter{limits: limits.withDefaults()}
}

// Dispatch resolves the conversion routine for an (input, output) pair.
// Unregistered pairs fail with UnsupportedConversionError.
func (c *Converter) Dispatch(inputFormat, outputFormat string) (Func, error) {
	in := formats.Normalize(inputFormat)
	out := formats.Normalize(outputFormat)
	if !formats.Supported(in, out) {
		return nil, &formats.UnsupportedConversionError{Input: in, Output: out}
	}

	switch formats.CategoryOf(in) {
	case formats.CategoryImage:
		return c.convertImage, nil
	case formats.CategoryDocument:
		return c.convertDocument, nil
	case formats.CategoryData:
		return func(input []byte, outputFormat string, opts formats.Options, report Progress) (Result, error) {
			return c.convertData(input, in, outputFormat, opts, report)
		}, nil
	default:
		return nil, &formats.UnsupportedConversionError{Input: in, Output: out}
	}
}
