package render

import (
	"fmt"
	"strings"
)

// Emitter builds TypeScript source line by line with two-space
// indentation.
type Emitter struct {
	buf    strings.Builder
	indent int
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Line writes a single line at the current indentation level. Embedded
// newlines are indented too.
func (e *Emitter) Line(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if text == "" {
		e.buf.WriteByte('\n')
		return
	}
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			e.writeIndent()
		}
		e.buf.WriteString(line)
		e.buf.WriteByte('\n')
	}
}

// Blank writes an empty line.
func (e *Emitter) Blank() {
	e.buf.WriteByte('\n')
}

// Indent increases the indentation level.
func (e *Emitter) Indent() {
	e.indent++
}

// Dedent decreases the indentation level.
func (e *Emitter) Dedent() {
	if e.indent > 0 {
		e.indent--
	}
}

func (e *Emitter) writeIndent() {
	for i := 0; i < e.indent; i++ {
		e.buf.WriteString("  ")
	}
}

// String returns the accumulated source code.
func (e *Emitter) String() string {
	return e.buf.String()
}
