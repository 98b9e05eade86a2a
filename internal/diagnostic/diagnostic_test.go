package diagnostic

import (
	"strings"
	"testing"
)

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Severity:    SeverityWarning,
		Category:    CategoryTypeUnsupported,
		File:        "types.ast.json",
		Declaration: "User",
		Message:     "conditional types are not supported; accepting any value",
		Hint:        "use @schema to supply a schema by hand",
	}

	s := d.String()
	if !strings.Contains(s, "types.ast.json (User)") {
		t.Errorf("expected file and declaration, got %q", s)
	}
	if !strings.Contains(s, "warning") {
		t.Errorf("expected 'warning', got %q", s)
	}
	if !strings.Contains(s, "[type-unsupported]") {
		t.Errorf("expected category, got %q", s)
	}
	if !strings.Contains(s, "hint:") {
		t.Errorf("expected hint, got %q", s)
	}
}

func TestDiagnostic_StringDeclarationOnly(t *testing.T) {
	d := Diagnostic{Severity: SeverityError, Declaration: "Order", Message: "boom"}
	if got, want := d.String(), "Order - error: boom"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCollector_WarnAndError(t *testing.T) {
	c := NewCollector(false, false)
	c.Warn(CategoryFormatUnknown, "User", "unknown format \"phone\"")
	c.Error(CategoryConfigInvalid, "", "missing input")

	if c.WarningCount() != 1 {
		t.Errorf("expected 1 warning, got %d", c.WarningCount())
	}
	if c.ErrorCount() != 1 {
		t.Errorf("expected 1 error, got %d", c.ErrorCount())
	}
	if !c.HasErrors() {
		t.Error("expected HasErrors() = true")
	}
}

func TestCollector_StrictMode(t *testing.T) {
	c := NewCollector(true, false) // strict mode
	c.Warn(CategoryTypeUnsupported, "User", "unsupported type")

	// In strict mode, warnings become errors
	if c.ErrorCount() != 1 {
		t.Errorf("expected 1 error (strict mode), got %d", c.ErrorCount())
	}
	if c.WarningCount() != 0 {
		t.Errorf("expected 0 warnings (strict mode), got %d", c.WarningCount())
	}
}

func TestCollector_QuietMode(t *testing.T) {
	c := NewCollector(false, true) // quiet mode
	c.Warn(CategoryTypeUnsupported, "User", "unsupported type")
	c.Info(CategoryCircularDependency, "User", "cycle")
	c.Error(CategoryConfigInvalid, "", "real error") // errors still show

	if len(c.Diagnostics()) != 1 {
		t.Errorf("expected 1 diagnostic (only error), got %d", len(c.Diagnostics()))
	}
}

func TestCollector_AddAppliesModes(t *testing.T) {
	c := NewCollector(true, false)
	c.Add(Diagnostic{Severity: SeverityWarning, Category: CategoryTemplateLiteral, Message: "degraded"})
	diags := c.Diagnostics()
	if len(diags) != 1 || diags[0].Severity != SeverityError {
		t.Errorf("expected escalated error, got %v", diags)
	}
}

func TestCollector_Summary(t *testing.T) {
	c := NewCollector(false, false)
	c.Warn(CategoryConstraintInvalid, "A", "warn1")
	c.Warn(CategoryConstraintInvalid, "B", "warn2")
	c.Error(CategoryConfigInvalid, "", "err1")

	summary := c.Summary()
	if !strings.Contains(summary, "1 error") {
		t.Errorf("expected '1 error' in summary, got %q", summary)
	}
	if !strings.Contains(summary, "2 warning") {
		t.Errorf("expected '2 warning' in summary, got %q", summary)
	}
	if got := NewCollector(false, false).Summary(); got != "no issues" {
		t.Errorf("got %q, want %q", got, "no issues")
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	// Should not panic
	c.Warn(CategoryTypeUnsupported, "", "test")
	c.Error(CategoryConfigInvalid, "", "test")
	if c.HasErrors() {
		t.Error("nil collector should not have errors")
	}
	if c.Summary() != "" {
		t.Error("nil collector should return empty summary")
	}
}

func TestCollector_FormatAll(t *testing.T) {
	c := NewCollector(false, false)
	c.Warn(CategoryTypeUnsupported, "Shape", "type not supported")

	formatted := c.FormatAll()
	if !strings.Contains(formatted, "Shape - warning") {
		t.Errorf("expected formatted output with declaration, got %q", formatted)
	}
}

func TestCollector_WarnWithHint(t *testing.T) {
	c := NewCollector(false, false)
	c.WarnWithHint(CategoryDiscriminatorInvalid, "Event", "arm lacks kind", "add a kind member to every arm")

	diags := c.Diagnostics()
	if len(diags) != 1 || diags[0].Hint != "add a kind member to every arm" {
		t.Errorf("expected hint, got %v", diags)
	}
}
