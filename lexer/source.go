package lexer

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/width"
)

// PrintSource writes the source line containing span's start, with a
// caret line underneath pointing at the offending column. Line numbers
// inside the user's file are reported relative to its first line, not to
// the start of the combined prelude+source buffer.
func (l *Lexer) PrintSource(w io.Writer, span Span) {
	start := span.Start
	if start.Offset < 0 || start.Offset > len(l.src) {
		return
	}
	lineIdx := start.Line - 1
	if lineIdx < 0 || lineIdx >= len(l.lines) {
		return
	}
	begin := l.lines[lineIdx]
	end := begin
	for end < len(l.src) && l.src[end] != '\n' {
		end++
	}
	line := string(l.src[begin:end])

	displayLine := start.Line
	if l.userStart > 0 && start.Offset >= l.userStart {
		displayLine -= l.posOf(l.userStart).Line - 1
	}

	prefix := fmt.Sprintf("%s:%d: ", l.filename, displayLine)
	fmt.Fprintf(w, "%s%s\n", prefix, line)

	var caret strings.Builder
	caret.WriteString(strings.Repeat(" ", displayWidth(prefix)))
	for _, ch := range l.src[begin : begin+start.Column-1] {
		if ch == '\t' {
			caret.WriteByte('\t')
			continue
		}
		caret.WriteString(strings.Repeat(" ", displayWidth(string(ch))))
	}
	caret.WriteByte('^')
	fmt.Fprintf(w, "%s\n", caret.String())
}

func displayWidth(s string) int {
	n := 0
	for _, ch := range s {
		switch width.LookupRune(ch).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}
