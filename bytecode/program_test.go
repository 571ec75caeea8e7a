package bytecode_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kr/pretty"
	. "github.com/verve-lang/verve/bytecode"
)

func sample() *Program {
	p := NewProgram()
	greeting := p.InternString("greeting")
	hello := p.InternString("hello")
	main := p.InternString("main")
	p.Functions = append(p.Functions, Function{
		Name:  main,
		Arity: 1,
		Text:  []int64{int64(PushArg), 0, int64(Ret)},
	})
	p.Text = []int64{
		int64(LoadString), int64(hello),
		int64(PutToScope), int64(greeting),
		int64(Push), 42,
		int64(Exit), 0,
	}
	return p
}

func TestInternString(t *testing.T) {
	p := NewProgram()
	a := p.InternString("x")
	b := p.InternString("y")
	c := p.InternString("x")
	if a != c {
		t.Errorf("interning is not stable: %d != %d", a, c)
	}
	if a == b {
		t.Errorf("distinct strings share an index")
	}
	if len(p.Strings) != 2 {
		t.Errorf("expected 2 strings, got %d", len(p.Strings))
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := sample()
	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(p.Text, got.Text); len(diff) > 0 {
		t.Errorf("text mismatch: %s", strings.Join(diff, "\n"))
	}
	if diff := pretty.Diff(p.Strings, got.Strings); len(diff) > 0 {
		t.Errorf("strings mismatch: %s", strings.Join(diff, "\n"))
	}
	if diff := pretty.Diff(p.Functions, got.Functions); len(diff) > 0 {
		t.Errorf("functions mismatch: %s", strings.Join(diff, "\n"))
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte{1, 2, 3, 4, 0, 0, 0, 0})); err == nil {
		t.Fatal("expected an error for a bad magic number")
	}
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	sample().Dump(&buf)
	out := buf.String()
	for _, want := range []string{
		"STRINGS:",
		`0: "greeting"`,
		"FUNCTIONS:",
		"main(1):",
		"push_arg 0",
		"ret",
		"TEXT:",
		`load_string "hello"`,
		`put_to_scope "greeting"`,
		"push 42",
		"exit 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
