package bytecode

import "fmt"

type Opcode int64

const (
	Ret Opcode = iota
	Bind
	Push
	PushFloat
	Call
	Jz
	Jmp
	CreateClosure
	LoadString
	PushArg
	Lookup
	Exit
	CreateLexScope
	ReleaseLexScope
	PutToScope
	AllocObj
	ObjStoreAt
	ObjLoad
	ObjTagTest
	Pop
)

var opcodeNames = [...]string{
	Ret:             "ret",
	Bind:            "bind",
	Push:            "push",
	PushFloat:       "push_float",
	Call:            "call",
	Jz:              "jz",
	Jmp:             "jmp",
	CreateClosure:   "create_closure",
	LoadString:      "load_string",
	PushArg:         "push_arg",
	Lookup:          "lookup",
	Exit:            "exit",
	CreateLexScope:  "create_lex_scope",
	ReleaseLexScope: "release_lex_scope",
	PutToScope:      "put_to_scope",
	AllocObj:        "alloc_obj",
	ObjStoreAt:      "obj_store_at",
	ObjLoad:         "obj_load",
	ObjTagTest:      "obj_tag_test",
	Pop:             "pop",
}

// operand word count for each opcode
var opcodeOperands = [...]int{
	Ret:             0,
	Bind:            1,
	Push:            1,
	PushFloat:       1,
	Call:            1,
	Jz:              1,
	Jmp:             1,
	CreateClosure:   1,
	LoadString:      1,
	PushArg:         1,
	Lookup:          1,
	Exit:            1,
	CreateLexScope:  0,
	ReleaseLexScope: 0,
	PutToScope:      1,
	AllocObj:        2,
	ObjStoreAt:      1,
	ObjLoad:         1,
	ObjTagTest:      2,
	Pop:             0,
}

func (op Opcode) String() string {
	if op >= 0 && int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("opcode(%d)", int64(op))
}

func (op Opcode) Operands() int {
	if op >= 0 && int(op) < len(opcodeOperands) {
		return opcodeOperands[op]
	}
	return 0
}

// readsString reports whether the op's first operand indexes the
// string section; the disassembler resolves those inline.
func (op Opcode) readsString() bool {
	switch op {
	case Bind, LoadString, Lookup, PutToScope:
		return true
	}
	return false
}
