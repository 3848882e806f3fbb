package report

import (
	"strings"
	"testing"
)

func TestCountingAndGating(t *testing.T) {
	Initialize("silent")

	if !ShouldProceed() {
		t.Fatal("a fresh reporter must allow proceeding")
	}

	ctx := &Context{Origin: "/tmp/demo.yasdl", DefPath: "demo.fs", Line: 3, Col: 4}
	ReportWarning(ctx, "03071", "useless use of name deletion")
	ReportNotice(ctx, "07172", "required fields should also be 'notnull true'")

	if !ShouldProceed() {
		t.Error("warnings and notices must not stop the pipeline")
	}
	if WarningCount() != 1 {
		t.Errorf("expected 1 warning, got %d", WarningCount())
	}

	ReportError(ctx, "06011", "required definition is not realized")
	if ShouldProceed() {
		t.Error("errors must stop the pipeline")
	}
	if ErrorCount() != 1 {
		t.Errorf("expected 1 error, got %d", ErrorCount())
	}

	if len(Diagnostics()) != 3 {
		t.Errorf("expected 3 recorded diagnostics, got %d", len(Diagnostics()))
	}

	// Initialize resets the collected state
	Initialize("silent")
	if !ShouldProceed() || len(Diagnostics()) != 0 {
		t.Error("Initialize must reset the reporter")
	}
}

func TestGNUFormat(t *testing.T) {
	d := &Diagnostic{
		Severity: SevError,
		Code:     "01041",
		Message:  "duplicated name \"f\"",
		Context:  &Context{Origin: "/tmp/demo.yasdl", DefPath: "demo.fs.f", Line: 12},
	}

	got := d.gnuFormat()
	want := `"/tmp/demo.yasdl":12:E01041:demo.fs.f:duplicated name "f"`
	if got != want {
		t.Errorf("gnu format mismatch:\n got: %s\nwant: %s", got, want)
	}

	if !strings.HasPrefix(d.Severity.letter(), "E") {
		t.Errorf("unexpected severity letter %s", d.Severity.letter())
	}
}
