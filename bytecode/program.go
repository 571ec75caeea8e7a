package bytecode

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	Magic         uint32 = 0x76727665 // "vrve"
	FormatVersion uint32 = 1
)

// Function is one compiled function body: its interned name, arity and
// text segment.
type Function struct {
	Name  int
	Arity int
	Text  []int64
}

// Program is the complete compiled artifact: the main text segment,
// the compiled functions, and the interned string section.
type Program struct {
	Text      []int64
	Functions []Function
	Strings   []string

	stringMap map[string]int
}

func NewProgram() *Program {
	return &Program{stringMap: make(map[string]int)}
}

// InternString adds v to the string section once and returns its index.
func (p *Program) InternString(v string) int {
	if idx, ok := p.stringMap[v]; ok {
		return idx
	}
	if p.stringMap == nil {
		p.stringMap = make(map[string]int)
	}
	idx := len(p.Strings)
	p.stringMap[v] = idx
	p.Strings = append(p.Strings, v)
	return idx
}

// Encode writes the program in its little-endian binary form.
func (p *Program) Encode(w io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = r.(error)
		}
	}()
	order := binary.LittleEndian
	put := func(v any) {
		if err := binary.Write(w, order, v); err != nil {
			panic(err)
		}
	}
	putText := func(text []int64) {
		put(uint32(len(text)))
		for _, word := range text {
			put(word)
		}
	}
	put(Magic)
	put(FormatVersion)

	put(uint32(len(p.Strings)))
	for _, s := range p.Strings {
		bs := []byte(s)
		put(uint32(len(bs)))
		put(bs)
	}

	put(uint32(len(p.Functions)))
	for _, fn := range p.Functions {
		put(uint32(fn.Name))
		put(uint32(fn.Arity))
		putText(fn.Text)
	}

	putText(p.Text)
	return nil
}

// Decode reads a program back from its binary form.
func Decode(r io.Reader) (*Program, error) {
	order := binary.LittleEndian
	var magic, version uint32
	if err := binary.Read(r, order, &magic); err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, fmt.Errorf("bytecode: bad magic %#x", magic)
	}
	if err := binary.Read(r, order, &version); err != nil {
		return nil, err
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("bytecode: unsupported format version %d", version)
	}

	read := func(v any) error { return binary.Read(r, order, v) }
	readText := func() ([]int64, error) {
		var n uint32
		if err := read(&n); err != nil {
			return nil, err
		}
		text := make([]int64, n)
		for i := range text {
			if err := read(&text[i]); err != nil {
				return nil, err
			}
		}
		return text, nil
	}

	p := NewProgram()

	var nstrings uint32
	if err := read(&nstrings); err != nil {
		return nil, err
	}
	for i := uint32(0); i < nstrings; i++ {
		var size uint32
		if err := read(&size); err != nil {
			return nil, err
		}
		bs := make([]byte, size)
		if _, err := io.ReadFull(r, bs); err != nil {
			return nil, err
		}
		p.InternString(string(bs))
	}

	var nfuncs uint32
	if err := read(&nfuncs); err != nil {
		return nil, err
	}
	for i := uint32(0); i < nfuncs; i++ {
		var name, arity uint32
		if err := read(&name); err != nil {
			return nil, err
		}
		if err := read(&arity); err != nil {
			return nil, err
		}
		text, err := readText()
		if err != nil {
			return nil, err
		}
		p.Functions = append(p.Functions, Function{Name: int(name), Arity: int(arity), Text: text})
	}

	text, err := readText()
	if err != nil {
		return nil, err
	}
	p.Text = text
	return p, nil
}
