package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Category classifies diagnostics for filtering.
type Category string

const (
	CategoryTypeUnsupported      Category = "type-unsupported"
	CategoryTemplateLiteral      Category = "template-literal"
	CategoryTemplateExpansion    Category = "template-expansion"
	CategoryDiscriminatorInvalid Category = "discriminator-invalid"
	CategoryFormatUnknown        Category = "format-unknown"
	CategoryConstraintInvalid    Category = "constraint-invalid"
	CategoryCircularDependency   Category = "circular-dependency"
	CategoryCompileFailed        Category = "compile-failed"
	CategoryConfigInvalid        Category = "config-invalid"
)

// Diagnostic represents a structured diagnostic message.
type Diagnostic struct {
	Severity    Severity `json:"severity"`
	Category    Category `json:"category"`
	File        string   `json:"file,omitempty"`        // source unit path
	Declaration string   `json:"declaration,omitempty"` // declaration being compiled
	Message     string   `json:"message"`
	Hint        string   `json:"hint,omitempty"` // optional suggestion for fixing the issue
}

// String formats the diagnostic for display.
func (d Diagnostic) String() string {
	var sb strings.Builder

	// Location
	if d.File != "" {
		sb.WriteString(d.File)
		if d.Declaration != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", d.Declaration))
		}
		sb.WriteString(" - ")
	} else if d.Declaration != "" {
		sb.WriteString(d.Declaration)
		sb.WriteString(" - ")
	}

	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")

	if d.Category != "" {
		sb.WriteString("[")
		sb.WriteString(string(d.Category))
		sb.WriteString("] ")
	}

	sb.WriteString(d.Message)

	if d.Hint != "" {
		sb.WriteString("\n  hint: ")
		sb.WriteString(d.Hint)
	}

	return sb.String()
}

// Collector collects diagnostics during compilation.
type Collector struct {
	diagnostics []Diagnostic
	strict      bool // if true, warnings become errors
	quiet       bool // if true, suppress warnings
}

// NewCollector creates a new diagnostic collector.
func NewCollector(strict, quiet bool) *Collector {
	return &Collector{
		strict: strict,
		quiet:  quiet,
	}
}

// Warn adds a warning diagnostic.
func (c *Collector) Warn(category Category, declaration, message string) {
	c.Add(Diagnostic{
		Severity:    SeverityWarning,
		Category:    category,
		Declaration: declaration,
		Message:     message,
	})
}

// WarnWithHint adds a warning with a suggestion.
func (c *Collector) WarnWithHint(category Category, declaration, message, hint string) {
	c.Add(Diagnostic{
		Severity:    SeverityWarning,
		Category:    category,
		Declaration: declaration,
		Message:     message,
		Hint:        hint,
	})
}

// Error adds an error diagnostic.
func (c *Collector) Error(category Category, declaration, message string) {
	c.Add(Diagnostic{
		Severity:    SeverityError,
		Category:    category,
		Declaration: declaration,
		Message:     message,
	})
}

// Info adds an informational diagnostic.
func (c *Collector) Info(category Category, declaration, message string) {
	c.Add(Diagnostic{
		Severity:    SeverityInfo,
		Category:    category,
		Declaration: declaration,
		Message:     message,
	})
}

// Add records d, applying the collector's strict and quiet modes.
func (c *Collector) Add(d Diagnostic) {
	if c == nil {
		return
	}
	switch d.Severity {
	case SeverityWarning:
		if c.quiet {
			return
		}
		if c.strict {
			d.Severity = SeverityError
		}
	case SeverityInfo:
		if c.quiet {
			return
		}
	}
	c.diagnostics = append(c.diagnostics, d)
}

// Diagnostics returns all collected diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}
	return c.diagnostics
}

// HasErrors returns true if any error-level diagnostics exist.
func (c *Collector) HasErrors() bool {
	return c.ErrorCount() > 0
}

// ErrorCount returns the number of error diagnostics.
func (c *Collector) ErrorCount() int {
	return c.count(SeverityError)
}

// WarningCount returns the number of warning diagnostics.
func (c *Collector) WarningCount() int {
	return c.count(SeverityWarning)
}

func (c *Collector) count(sev Severity) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, d := range c.diagnostics {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// FormatAll formats all diagnostics as a multi-line string.
func (c *Collector) FormatAll() string {
	if c == nil || len(c.diagnostics) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range c.diagnostics {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Summary returns a summary line like "2 warning(s), 1 error(s)".
func (c *Collector) Summary() string {
	if c == nil {
		return ""
	}
	warnings := c.WarningCount()
	errors := c.ErrorCount()

	parts := []string{}
	if errors > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errors))
	}
	if warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warnings))
	}
	if len(parts) == 0 {
		return "no issues"
	}
	return strings.Join(parts, ", ")
}
