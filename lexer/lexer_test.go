package lexer_test

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/kr/pretty"
	. "github.com/verve-lang/verve/lexer"
	"golang.org/x/exp/slices"
)

func tok(ttyp TokenType, data string) Token {
	return Token{Type: ttyp, Data: data}
}

func scan(t *testing.T, src string) []Token {
	t.Helper()
	testfs := fstest.MapFS{
		"test.vrv": &fstest.MapFile{Data: []byte(src)},
	}
	l, err := NewFile(testfs, "test.vrv")
	if err != nil {
		t.Fatal(err)
	}
	var got []Token
	for {
		tok := l.Next()
		got = append(got, tok)
		if tok.Type == EOF {
			return got
		}
	}
}

func TestLexer(t *testing.T) {
	run := func(name, src string, expected []Token) {
		t.Run(name, func(t *testing.T) {
			got := scan(t, src)
			expected = append(expected, tok(EOF, ""))
			if !slices.EqualFunc(got, expected, Token.Eq) {
				t.Errorf("token mismatch: %s", strings.Join(pretty.Diff(got, expected), "\n"))
			}
		})
	}
	run("arith", "1 + 2 * x", []Token{
		tok(Number, "1"), tok(Plus, ""), tok(Number, "2"), tok(Times, ""), tok(Ident, "x"),
	})
	run("float", "3.14", []Token{tok(Number, "3.14")})
	run("keywords", "fn let if else match case enum interface impl virtual extern", []Token{
		tok(Fn, ""), tok(Let, ""), tok(If, ""), tok(Else, ""), tok(Match, ""), tok(Case, ""),
		tok(Enum, ""), tok(Interface, ""), tok(Impl, ""), tok(Virtual, ""), tok(Extern, ""),
	})
	run("double char", "-> == != <= >= && ||", []Token{
		tok(Arrow, ""), tok(LogicalEquals, ""), tok(NotEquals, ""), tok(LessThanEquals, ""),
		tok(GreaterThanEquals, ""), tok(LogicalAnd, ""), tok(LogicalOr, ""),
	})
	run("string", `"hello\nworld"`, []Token{tok(String, "hello\nworld")})
	run("comment", "1 // comment\n2", []Token{tok(Number, "1"), tok(Number, "2")})
	run("signature", "fn id<T>(x: T) -> T { x }", []Token{
		tok(Fn, ""), tok(Ident, "id"), tok(LessThan, ""), tok(Ident, "T"), tok(GreaterThan, ""),
		tok(LeftParen, ""), tok(Ident, "x"), tok(Colon, ""), tok(Ident, "T"), tok(RightParen, ""),
		tok(Arrow, ""), tok(Ident, "T"), tok(LeftBrace, ""), tok(Ident, "x"), tok(RightBrace, ""),
	})
	run("unterminated string", "\"abc\n", []Token{tok(Illegal, "unterminated string")})
	run("unexpected rune", "#", []Token{tok(Illegal, `unexpected character '#'`)})
}

func TestSpans(t *testing.T) {
	got := scan(t, "let x = 1\nx + 2")
	want := []struct {
		line, col int
	}{
		{1, 1}, // let
		{1, 5}, // x
		{1, 7}, // =
		{1, 9}, // 1
		{2, 1}, // x
		{2, 3}, // +
		{2, 5}, // 2
	}
	for i, w := range want {
		start := got[i].Span.Start
		if start.Line != w.line || start.Column != w.col {
			t.Errorf("token %d (%s): got %d:%d, want %d:%d", i, got[i], start.Line, start.Column, w.line, w.col)
		}
	}
}

func TestPrintSource(t *testing.T) {
	l := New("test.vrv", []byte("let x = 1\nx + y\n"))
	var b strings.Builder
	var yTok Token
	for tok := l.Next(); tok.Type != EOF; tok = l.Next() {
		if tok.Type == Ident && tok.Data == "y" {
			yTok = tok
		}
	}
	l.PrintSource(&b, yTok.Span)
	want := "test.vrv:2: x + y\n                ^\n"
	if b.String() != want {
		t.Errorf("got:\n%q\nwant:\n%q", b.String(), want)
	}
}

func TestPrintSourceUserOffset(t *testing.T) {
	// two prelude lines ahead of the user's file
	preludeText := "extern print(string) -> void\nextern print_int(int) -> void\n"
	src := preludeText + "oops\n"
	l := New("test.vrv", []byte(src))
	l.SetUserStart(len(preludeText))
	var target Token
	for tok := l.Next(); tok.Type != EOF; tok = l.Next() {
		if tok.Data == "oops" {
			target = tok
		}
	}
	var b strings.Builder
	l.PrintSource(&b, target.Span)
	if !strings.HasPrefix(b.String(), "test.vrv:1: oops") {
		t.Errorf("line number not adjusted to the user's file: %q", b.String())
	}
}
