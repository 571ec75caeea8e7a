package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/kr/pretty"

	"github.com/verve-lang/verve/bytecode"
	"github.com/verve-lang/verve/codegen"
	"github.com/verve-lang/verve/lexer"
	"github.com/verve-lang/verve/parser"
	"github.com/verve-lang/verve/prelude"
	"github.com/verve-lang/verve/types"
	"github.com/verve-lang/verve/vm"
)

func main() {
	disasm := flag.Bool("d", false, "compile and dump bytecode")
	compile := flag.Bool("c", false, "compile to a file instead of running")
	dumpAST := flag.Bool("a", false, "dump the checked AST")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 || (*compile && len(args) < 2) {
		fmt.Fprintf(os.Stderr, "Usage: %s [-d] [-a] <file>\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "       %s -c <file> <out>\n", filepath.Base(os.Args[0]))
		os.Exit(1)
	}
	filename := args[0]

	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// the prelude is compiled ahead of the user's code, in the same
	// buffer, so its declarations land in the same scope
	combined := prelude.Source + "\n" + string(src)
	l := lexer.New(filename, []byte(combined))
	l.SetUserStart(utf8.RuneCountInString(prelude.Source) + 1)

	prog, err := parser.Parse(l)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	env := types.Universe()
	if err := types.Check(prog, env, l); err != nil {
		os.Exit(1)
	}

	if *dumpAST {
		pretty.Println(prog)
		return
	}

	bc := codegen.Generate(prog)

	var buf bytes.Buffer
	if err := bc.Encode(&buf); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	switch {
	case *disasm:
		if err := bytecode.Disassemble(&buf, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case *compile:
		if err := os.WriteFile(args[1], buf.Bytes(), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	default:
		decoded, err := bytecode.Decode(&buf)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if _, err := vm.New(decoded).Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
