package lexer

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"unicode"

	"github.com/smasher164/xid"
)

// Lexer scans a single buffer that may hold the prelude followed by the
// user's source. userStart marks where the user's code begins, so that
// source excerpts report lines relative to the file the user wrote.
type Lexer struct {
	filename  string
	src       []rune
	pos       int
	ch        rune
	lines     []int // offset of the first rune of each line
	userStart int
}

const eof = -1

func New(filename string, src []byte) *Lexer {
	l := &Lexer{
		filename: filename,
		src:      []rune(string(src)),
		pos:      -1,
		lines:    []int{0},
	}
	for i, ch := range l.src {
		if ch == '\n' && i+1 < len(l.src) {
			l.lines = append(l.lines, i+1)
		}
	}
	l.next()
	return l
}

func NewFile(fsys fs.FS, filename string) (*Lexer, error) {
	src, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return nil, err
	}
	return New(filename, src), nil
}

// SetUserStart records the offset at which the user's file begins within
// the combined prelude+source buffer.
func (l *Lexer) SetUserStart(offset int) {
	l.userStart = offset
}

func (l *Lexer) Filename() string { return l.filename }

func (l *Lexer) next() {
	l.pos++
	if l.pos < len(l.src) {
		l.ch = l.src[l.pos]
	} else {
		l.ch = eof
	}
}

func (l *Lexer) peek() rune {
	if l.pos+1 < len(l.src) {
		return l.src[l.pos+1]
	}
	return eof
}

func isLetter(ch rune) bool {
	return ch == '_' || xid.Start(ch)
}

func isDecimal(ch rune) bool { return '0' <= ch && ch <= '9' }

func (l *Lexer) lineIndex(offset int) int {
	line, found := sort.Find(len(l.lines), func(i int) int {
		v := l.lines[i]
		if offset == v {
			return 0
		}
		if offset < v {
			return -1
		}
		return 1
	})
	if found {
		return line
	}
	return line - 1
}

func (l *Lexer) posOf(offset int) Pos {
	line := l.lineIndex(offset)
	return Pos{Offset: offset, Line: line + 1, Column: offset - l.lines[line] + 1}
}

func (l *Lexer) spanOf(off1, off2 int) Span {
	start := l.posOf(off1)
	end := start
	if off1 != off2 {
		end = l.posOf(off2)
	}
	return Span{Start: start, End: end}
}

func (l *Lexer) lexIdentOrKeyword() Token {
	startPos := l.pos
	l.next()
	for xid.Continue(l.ch) {
		l.next()
	}
	ident := string(l.src[startPos:l.pos])
	if ttyp, ok := Keywords[ident]; ok {
		return Token{Type: ttyp, Span: l.spanOf(startPos, l.pos-1)}
	}
	return Token{Type: Ident, Span: l.spanOf(startPos, l.pos-1), Data: ident}
}

func (l *Lexer) lexNumber() Token {
	startPos := l.pos
	for isDecimal(l.ch) {
		l.next()
	}
	if l.ch == '.' && isDecimal(l.peek()) {
		l.next()
		for isDecimal(l.ch) {
			l.next()
		}
	}
	return Token{Type: Number, Span: l.spanOf(startPos, l.pos-1), Data: string(l.src[startPos:l.pos])}
}

func (l *Lexer) lexString() Token {
	startPos := l.pos
	l.next()
	var buf strings.Builder
	for l.ch != '"' {
		if l.ch == eof || l.ch == '\n' {
			return Token{Type: Illegal, Span: l.spanOf(startPos, l.pos-1), Data: "unterminated string"}
		}
		if l.ch == '\\' {
			l.next()
			switch l.ch {
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case '\\', '"':
				buf.WriteRune(l.ch)
			default:
				return Token{Type: Illegal, Span: l.spanOf(l.pos, l.pos), Data: fmt.Sprintf("unknown escape sequence \\%c", l.ch)}
			}
			l.next()
			continue
		}
		buf.WriteRune(l.ch)
		l.next()
	}
	endPos := l.pos
	l.next()
	return Token{Type: String, Span: l.spanOf(startPos, endPos), Data: buf.String()}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != eof {
		l.next()
	}
}

// Next returns the next token, skipping whitespace and comments.
func (l *Lexer) Next() Token {
	for {
		switch {
		case l.ch == eof:
			return Token{Type: EOF, Span: l.spanOf(l.pos, l.pos)}
		case unicode.IsSpace(l.ch):
			l.next()
			continue
		case l.ch == '/' && l.peek() == '/':
			l.skipLineComment()
			continue
		case isLetter(l.ch):
			return l.lexIdentOrKeyword()
		case isDecimal(l.ch):
			return l.lexNumber()
		case l.ch == '"':
			return l.lexString()
		}
		startPos := l.pos
		if ttyp, ok := DoubleCharTokens[[2]rune{l.ch, l.peek()}]; ok {
			l.next()
			l.next()
			return Token{Type: ttyp, Span: l.spanOf(startPos, l.pos-1)}
		}
		if ttyp, ok := SingleCharTokens[l.ch]; ok {
			l.next()
			return Token{Type: ttyp, Span: l.spanOf(startPos, startPos)}
		}
		ch := l.ch
		l.next()
		return Token{Type: Illegal, Span: l.spanOf(startPos, startPos), Data: fmt.Sprintf("unexpected character %q", ch)}
	}
}
