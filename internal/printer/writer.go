// Package printer renders tokens, the AST, the symbol table, and TAC
// as the indented text listings the driver's -l/-a/-t/-o0/-o1 flags
// produce, in the style of lang/yparse's OutputWriter: a buffered
// writer plus a tracked indent level.
package printer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Writer accumulates an indented text listing.
type Writer struct {
	w      *bufio.Writer
	indent int
}

// New wraps w in a Writer starting at indent level 0.
func New(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Flush flushes any buffered output.
func (p *Writer) Flush() {
	p.w.Flush()
}

func (p *Writer) line(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", p.indent), fmt.Sprintf(format, args...))
}

func (p *Writer) raw(s string) {
	fmt.Fprintf(p.w, "%s\n", s)
}
