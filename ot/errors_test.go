package ot

import "testing"

// TestErrorSeverity verifies the ErrorSeverity String() method.
func TestErrorSeverity(t *testing.T) {
	tests := []struct {
		severity ErrorSeverity
		expected string
	}{
		{SeverityCritical, "CRITICAL"},
		{SeverityMajor, "MAJOR"},
		{SeverityMinor, "MINOR"},
		{ErrorSeverity(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		result := tt.severity.String()
		if result != tt.expected {
			t.Errorf("ErrorSeverity(%d).String() = %q; want %q", tt.severity, result, tt.expected)
		}
	}
}

// TestFontError verifies FontError creation and formatting.
func TestFontError(t *testing.T) {
	tests := []struct {
		name     string
		err      FontError
		expected string
	}{
		{
			name: "Error with offset",
			err: FontError{
				Table:    T("GSUB"),
				Section:  "LookupType6",
				Issue:    "Buffer too small",
				Severity: SeverityCritical,
				Offset:   1234,
			},
			expected: "[CRITICAL] GSUB/LookupType6 at offset 1234: Buffer too small",
		},
		{
			name: "Error without offset",
			err: FontError{
				Table:    T("GPOS"),
				Section:  "LookupType2",
				Issue:    "Invalid format",
				Severity: SeverityMajor,
				Offset:   0,
			},
			expected: "[MAJOR] GPOS/LookupType2: Invalid format",
		},
		{
			name: "Minor error",
			err: FontError{
				Table:    T("GDEF"),
				Section:  "GlyphClassDef",
				Issue:    "Missing coverage",
				Severity: SeverityMinor,
				Offset:   0,
			},
			expected: "[MINOR] GDEF/GlyphClassDef: Missing coverage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("FontError.Error() = %q; want %q", result, tt.expected)
			}
		})
	}
}

// TestFontWarning verifies FontWarning creation and formatting.
func TestFontWarning(t *testing.T) {
	tests := []struct {
		name     string
		warning  FontWarning
		expected string
	}{
		{
			name: "Warning with offset",
			warning: FontWarning{
				Table:  T("kern"),
				Issue:  "Table size mismatch",
				Offset: 5678,
			},
			expected: "[WARNING] kern at offset 5678: Table size mismatch",
		},
		{
			name: "Warning without offset",
			warning: FontWarning{
				Table:  T("GSUB"),
				Issue:  "Unused lookup",
				Offset: 0,
			},
			expected: "[WARNING] GSUB: Unused lookup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.warning.String()
			if result != tt.expected {
				t.Errorf("FontWarning.String() = %q; want %q", result, tt.expected)
			}
		})
	}
}

// TestDiagnostics verifies the collection of errors and warnings.
func TestDiagnostics(t *testing.T) {
	d := &diagnostics{}

	if len(d.allErrors()) != 0 || len(d.allWarnings()) != 0 {
		t.Error("diagnostics should be empty initially")
	}
	if d.hasCriticalErrors() {
		t.Error("diagnostics should not have critical errors initially")
	}

	d.addError(T("GSUB"), "Test", "Minor issue", SeverityMinor, 100)
	if d.hasCriticalErrors() {
		t.Error("diagnostics should not have critical errors yet")
	}
	d.addError(T("GPOS"), "Test", "Critical issue", SeverityCritical, 200)
	if !d.hasCriticalErrors() {
		t.Error("diagnostics should have critical errors after adding one")
	}
	d.addError(T("GDEF"), "Test", "Major issue", SeverityMajor, 300)
	if n := len(d.allErrors()); n != 3 {
		t.Errorf("diagnostics should have 3 errors; got %d", n)
	}

	d.addWarning(T("kern"), "Warning issue", 400)
	warnings := d.allWarnings()
	if len(warnings) != 1 {
		t.Fatalf("diagnostics should have 1 warning; got %d", len(warnings))
	}
	if warnings[0].Table != T("kern") || warnings[0].Offset != 400 {
		t.Errorf("unexpected warning %v", warnings[0])
	}

	// returned slices are copies
	errs := d.allErrors()
	errs[0].Issue = "changed"
	if d.allErrors()[0].Issue != "Minor issue" {
		t.Error("allErrors() should return a copy")
	}
}

// TestContainerDiagnostics verifies that containers expose recorded issues.
func TestContainerDiagnostics(t *testing.T) {
	f := newFontFile([]byte{0, 1, 0, 0}, Options{})
	if len(f.Errors()) != 0 {
		t.Error("new container should return empty errors slice")
	}
	if len(f.Warnings()) != 0 {
		t.Error("new container should return empty warnings slice")
	}
	f.diag.addWarning(T("MERG"), "decoded partially", 0)
	f.diag.addError(T("cmap"), "Format4", "bad segment", SeverityMajor, 12)
	if len(f.Warnings()) != 1 || len(f.Errors()) != 1 {
		t.Errorf("container should report 1 warning and 1 error; got %d and %d",
			len(f.Warnings()), len(f.Errors()))
	}
}
