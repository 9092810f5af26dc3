package ot

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownFormat is returned for data not starting with a known font signature.
	ErrUnknownFormat = errors.New("unknown font format")
	// ErrNoDecompressor is returned when compressed font data is encountered but
	// no decoder function has been configured.
	ErrNoDecompressor = errors.New("no decompressor")
	// ErrLengthMismatch is returned in strict mode if a structure's decoded
	// size differs from its declared size.
	ErrLengthMismatch = errors.New("unexpected table size")
	// ErrBufferBounds is returned when decoding would read past the end of
	// the available data.
	ErrBufferBounds = errors.New("buffer bounds error")
	// ErrNoSuchTable is returned when a table is requested which is not
	// contained in the font.
	ErrNoSuchTable = errors.New("no such table")
)

func errFontFormat(msg string) error {
	return fmt.Errorf("OpenType font format: %s", msg)
}

// ErrorSeverity represents the severity level of a font decoding error.
type ErrorSeverity int

const (
	// SeverityCritical indicates a severe error that makes the font unusable or unreliable.
	SeverityCritical ErrorSeverity = iota
	// SeverityMajor indicates a significant error that may affect functionality but doesn't prevent usage.
	SeverityMajor
	// SeverityMinor indicates a minor issue that can be safely ignored in most cases.
	SeverityMinor
)

// String returns a human-readable representation of the error severity.
func (s ErrorSeverity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityMajor:
		return "MAJOR"
	case SeverityMinor:
		return "MINOR"
	default:
		return "UNKNOWN"
	}
}

// FontError represents an error encountered while decoding a table.
// Errors are accumulated per container and can be inspected at any time.
type FontError struct {
	Table    Tag           // The OpenType table where the error occurred (e.g., "cmap", "hmtx")
	Section  string        // Specific section within the table (e.g., "Format4", "EncodingRecord")
	Issue    string        // Human-readable description of the issue
	Severity ErrorSeverity // Severity level of the error
	Offset   uint32        // Byte offset where the error occurred (0 if unknown)
}

// Error implements the error interface.
func (e FontError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("[%s] %s/%s at offset %d: %s", e.Severity, e.Table, e.Section, e.Offset, e.Issue)
	}
	return fmt.Sprintf("[%s] %s/%s: %s", e.Severity, e.Table, e.Section, e.Issue)
}

// FontWarning represents a non-critical issue encountered during decoding.
// Warnings indicate potential problems but do not prevent font usage.
type FontWarning struct {
	Table  Tag    // The OpenType table where the warning occurred
	Issue  string // Human-readable description of the warning
	Offset uint32 // Byte offset where the warning occurred (0 if unknown)
}

// String returns a human-readable representation of the warning.
func (w FontWarning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("[WARNING] %s at offset %d: %s", w.Table, w.Offset, w.Issue)
	}
	return fmt.Sprintf("[WARNING] %s: %s", w.Table, w.Issue)
}

// diagnostics accumulates errors and warnings of a container. As tables are
// decoded lazily, issues may be added long after the container has been
// opened, possibly from different goroutines.
type diagnostics struct {
	mu       sync.Mutex
	errors   []FontError
	warnings []FontWarning
}

// addError records a decoding error.
func (d *diagnostics) addError(table Tag, section string, issue string, severity ErrorSeverity, offset uint32) {
	tracer().Errorf("%s/%s: %s", table, section, issue)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors = append(d.errors, FontError{
		Table:    table,
		Section:  section,
		Issue:    issue,
		Severity: severity,
		Offset:   offset,
	})
}

// addWarning records a decoding warning.
func (d *diagnostics) addWarning(table Tag, issue string, offset uint32) {
	tracer().Infof("%s: %s", table, issue)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.warnings = append(d.warnings, FontWarning{
		Table:  table,
		Issue:  issue,
		Offset: offset,
	})
}

func (d *diagnostics) allErrors() []FontError {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]FontError{}, d.errors...)
}

func (d *diagnostics) allWarnings() []FontWarning {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]FontWarning{}, d.warnings...)
}

// hasCriticalErrors returns true if any critical errors have been recorded.
func (d *diagnostics) hasCriticalErrors() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, err := range d.errors {
		if err.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
