package bytecode

import (
	"fmt"
	"io"
	"math"
)

// Disassemble decodes an encoded program from r and dumps it to w.
func Disassemble(r io.Reader, w io.Writer) error {
	p, err := Decode(r)
	if err != nil {
		return err
	}
	p.Dump(w)
	return nil
}

// Dump writes a human-readable listing of every section.
func (p *Program) Dump(w io.Writer) {
	fmt.Fprintln(w, "STRINGS:")
	for i, s := range p.Strings {
		fmt.Fprintf(w, "  %d: %q\n", i, s)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "FUNCTIONS:")
	for _, fn := range p.Functions {
		fmt.Fprintf(w, "%s(%d):\n", p.Strings[fn.Name], fn.Arity)
		p.dumpText(w, fn.Text)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "TEXT:")
	p.dumpText(w, p.Text)
}

func (p *Program) dumpText(w io.Writer, text []int64) {
	for pc := 0; pc < len(text); {
		op := Opcode(text[pc])
		fmt.Fprintf(w, "  %04d %s", pc, op)
		operands := text[pc+1 : pc+1+op.Operands()]
		switch {
		case op.readsString() && int(operands[0]) < len(p.Strings):
			fmt.Fprintf(w, " %q", p.Strings[operands[0]])
		case op == PushFloat:
			fmt.Fprintf(w, " %v", math.Float64frombits(uint64(operands[0])))
		default:
			for _, operand := range operands {
				fmt.Fprintf(w, " %d", operand)
			}
		}
		fmt.Fprintln(w)
		pc += 1 + op.Operands()
	}
}
