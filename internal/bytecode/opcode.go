// Package bytecode implements L3: the code builder (instruction stream,
// constant pool, jump patching, stack-depth tracking, and the peephole
// fusion pass) described in spec.md §4.1/§6.1/§6.2. Grounded primarily on
// _examples/original_source/crates/ouros/src/bytecode/builder.rs (the
// exact algorithm, including its embedded unit tests, which this
// package's builder_test.go mirrors for spec.md scenarios S1-S4), with
// the opcode table's Go shape (a byte const block plus an OpcodeNames map
// built from it) following
// _examples/ATSOTECK-rage/internal/runtime/opcode.go's idiom.
package bytecode

// Opcode is a single-byte bytecode instruction discriminant (spec.md
// §6.2).
type Opcode byte

const (
	Nop Opcode = iota

	// Load/store (spec.md §6.2 "Load/store").
	LoadNone
	LoadTrue
	LoadFalse
	LoadEllipsis
	LoadSmallInt // i8
	LoadConst    // u16
	LoadLocal0
	LoadLocal1
	LoadLocal2
	LoadLocal3
	LoadLocal  // u8
	LoadLocalW // u16
	StoreLocal0
	StoreLocal1
	StoreLocal2
	StoreLocal3
	StoreLocal        // u8
	StoreLocalW       // u16
	StoreLocalSmallInt // u8 slot, i8 value

	Pop
	Dup
	Rot2
	Rot3

	// Arithmetic (binary ops: fixed stack effect -1, pops 2, pushes 1;
	// unary ops: 0).
	Add
	Sub
	Mul
	Div
	FloorDiv
	Mod
	Pow
	BitAnd
	BitOr
	BitXor
	LShift
	RShift
	MatMul
	UnaryNeg
	UnaryPos
	UnaryNot
	UnaryInvert

	// Comparison (fixed stack effect -1).
	CompareEq
	CompareNe
	CompareLt
	CompareLe
	CompareGt
	CompareGe
	CompareIs
	CompareIsNot
	CompareIn
	CompareNotIn

	// Fused compare+jump (peephole output, spec.md §4.1 rule 3).
	CompareEqJumpIfFalse // i16
	CompareNeJumpIfFalse
	CompareLtJumpIfFalse
	CompareLeJumpIfFalse
	CompareGtJumpIfFalse
	CompareGeJumpIfFalse

	// Control flow — all i16, relative to ip+3 (spec.md §4.1 bytecode
	// layout / §6.2).
	Jump
	JumpIfTrue
	JumpIfFalse
	JumpIfTrueOrPop
	JumpIfFalseOrPop
	ForIter

	// Calls (spec.md §4.1 stack-effect table / §6.2).
	CallFunction       // u8 n
	CallFunctionKw     // u8 pos, u8 nkw, nkw*u16
	CallAttr           // u16 name, u8 n
	CallAttrKw         // u16 name, u8 pos, u8 nkw, nkw*u16
	CallBuiltinFunction // u8 id, u8 n
	CallBuiltinType    // u8 id, u8 n

	ReturnValue

	// Constructors.
	BuildList   // u16
	BuildTuple  // u16
	BuildSet    // u16
	BuildDict   // u16
	BuildFString // u16

	// Attribute access.
	LoadAttr       // u16 name
	StoreAttr      // u16 name
	DeleteAttr     // u16 name
	LoadAttrImport // u16 name

	// Subscript.
	BinarySubscr
	StoreSubscr
	DeleteSubscr

	// Unpacking.
	UnpackSequence // u8
	UnpackEx       // u8 before, u8 after

	// Meta / function/class construction.
	MakeFunction // u16 code_const, u8 ndefaults
	MakeClosure  // u16 code_const, u8 ndefaults, u8 ncellvars
	BuildClass   // u16 func_const, u16 name_const, u8 nbases

	GetIter

	opcodeCount
)

// OpcodeNames maps every opcode to its disassembly name, built from the
// const block above the way the teacher's opcode.go derives its table.
var OpcodeNames = map[Opcode]string{
	Nop: "NOP", LoadNone: "LOAD_NONE", LoadTrue: "LOAD_TRUE", LoadFalse: "LOAD_FALSE",
	LoadEllipsis: "LOAD_ELLIPSIS", LoadSmallInt: "LOAD_SMALL_INT", LoadConst: "LOAD_CONST",
	LoadLocal0: "LOAD_LOCAL_0", LoadLocal1: "LOAD_LOCAL_1", LoadLocal2: "LOAD_LOCAL_2",
	LoadLocal3: "LOAD_LOCAL_3", LoadLocal: "LOAD_LOCAL", LoadLocalW: "LOAD_LOCAL_W",
	StoreLocal0: "STORE_LOCAL_0", StoreLocal1: "STORE_LOCAL_1", StoreLocal2: "STORE_LOCAL_2",
	StoreLocal3: "STORE_LOCAL_3", StoreLocal: "STORE_LOCAL", StoreLocalW: "STORE_LOCAL_W",
	StoreLocalSmallInt: "STORE_LOCAL_SMALL_INT",
	Pop:                "POP", Dup: "DUP", Rot2: "ROT_2", Rot3: "ROT_3",
	Add: "ADD", Sub: "SUB", Mul: "MUL", Div: "DIV", FloorDiv: "FLOOR_DIV", Mod: "MOD",
	Pow: "POW", BitAnd: "BIT_AND", BitOr: "BIT_OR", BitXor: "BIT_XOR", LShift: "LSHIFT",
	RShift: "RSHIFT", MatMul: "MATMUL", UnaryNeg: "UNARY_NEG", UnaryPos: "UNARY_POS",
	UnaryNot: "UNARY_NOT", UnaryInvert: "UNARY_INVERT",
	CompareEq: "COMPARE_EQ", CompareNe: "COMPARE_NE", CompareLt: "COMPARE_LT",
	CompareLe: "COMPARE_LE", CompareGt: "COMPARE_GT", CompareGe: "COMPARE_GE",
	CompareIs: "COMPARE_IS", CompareIsNot: "COMPARE_IS_NOT", CompareIn: "COMPARE_IN",
	CompareNotIn: "COMPARE_NOT_IN",
	CompareEqJumpIfFalse: "COMPARE_EQ_JUMP_IF_FALSE", CompareNeJumpIfFalse: "COMPARE_NE_JUMP_IF_FALSE",
	CompareLtJumpIfFalse: "COMPARE_LT_JUMP_IF_FALSE", CompareLeJumpIfFalse: "COMPARE_LE_JUMP_IF_FALSE",
	CompareGtJumpIfFalse: "COMPARE_GT_JUMP_IF_FALSE", CompareGeJumpIfFalse: "COMPARE_GE_JUMP_IF_FALSE",
	Jump: "JUMP", JumpIfTrue: "JUMP_IF_TRUE", JumpIfFalse: "JUMP_IF_FALSE",
	JumpIfTrueOrPop: "JUMP_IF_TRUE_OR_POP", JumpIfFalseOrPop: "JUMP_IF_FALSE_OR_POP",
	ForIter: "FOR_ITER",
	CallFunction: "CALL_FUNCTION", CallFunctionKw: "CALL_FUNCTION_KW", CallAttr: "CALL_ATTR",
	CallAttrKw: "CALL_ATTR_KW", CallBuiltinFunction: "CALL_BUILTIN_FUNCTION",
	CallBuiltinType: "CALL_BUILTIN_TYPE", ReturnValue: "RETURN_VALUE",
	BuildList: "BUILD_LIST", BuildTuple: "BUILD_TUPLE", BuildSet: "BUILD_SET",
	BuildDict: "BUILD_DICT", BuildFString: "BUILD_FSTRING",
	LoadAttr: "LOAD_ATTR", StoreAttr: "STORE_ATTR", DeleteAttr: "DELETE_ATTR",
	LoadAttrImport: "LOAD_ATTR_IMPORT",
	BinarySubscr:   "BINARY_SUBSCR", StoreSubscr: "STORE_SUBSCR", DeleteSubscr: "DELETE_SUBSCR",
	UnpackSequence: "UNPACK_SEQUENCE", UnpackEx: "UNPACK_EX",
	MakeFunction: "MAKE_FUNCTION", MakeClosure: "MAKE_CLOSURE", BuildClass: "BUILD_CLASS",
	GetIter: "GET_ITER",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// OperandShape describes how many operand bytes (beyond the opcode byte
// itself) follow an instruction, and how to interpret them (spec.md
// §4.1 "Fixed operand shapes").
type OperandShape int

const (
	ShapeNone OperandShape = iota
	ShapeU8
	ShapeI8
	ShapeU8U8
	ShapeU16
	ShapeU16U8
	ShapeU16U8U8
	ShapeU16U16U8
	ShapeI16Jump     // 2-byte little-endian relative jump offset
	ShapeU8I8        // slot (u8) + small-int value (i8) — StoreLocalSmallInt
	ShapeCallKw      // u8 pos, u8 nkw, nkw*u16 — variable length
	ShapeU16CallKw   // u16 name, u8 pos, u8 nkw, nkw*u16 — CallAttrKw
)

var opcodeShape = map[Opcode]OperandShape{
	Nop: ShapeNone, LoadNone: ShapeNone, LoadTrue: ShapeNone, LoadFalse: ShapeNone,
	LoadEllipsis: ShapeNone, LoadSmallInt: ShapeI8, LoadConst: ShapeU16,
	LoadLocal0: ShapeNone, LoadLocal1: ShapeNone, LoadLocal2: ShapeNone, LoadLocal3: ShapeNone,
	LoadLocal: ShapeU8, LoadLocalW: ShapeU16,
	StoreLocal0: ShapeNone, StoreLocal1: ShapeNone, StoreLocal2: ShapeNone, StoreLocal3: ShapeNone,
	StoreLocal: ShapeU8, StoreLocalW: ShapeU16, StoreLocalSmallInt: ShapeU8I8,
	Pop: ShapeNone, Dup: ShapeNone, Rot2: ShapeNone, Rot3: ShapeNone,
	Add: ShapeNone, Sub: ShapeNone, Mul: ShapeNone, Div: ShapeNone, FloorDiv: ShapeNone,
	Mod: ShapeNone, Pow: ShapeNone, BitAnd: ShapeNone, BitOr: ShapeNone, BitXor: ShapeNone,
	LShift: ShapeNone, RShift: ShapeNone, MatMul: ShapeNone,
	UnaryNeg: ShapeNone, UnaryPos: ShapeNone, UnaryNot: ShapeNone, UnaryInvert: ShapeNone,
	CompareEq: ShapeNone, CompareNe: ShapeNone, CompareLt: ShapeNone, CompareLe: ShapeNone,
	CompareGt: ShapeNone, CompareGe: ShapeNone, CompareIs: ShapeNone, CompareIsNot: ShapeNone,
	CompareIn: ShapeNone, CompareNotIn: ShapeNone,
	CompareEqJumpIfFalse: ShapeI16Jump, CompareNeJumpIfFalse: ShapeI16Jump,
	CompareLtJumpIfFalse: ShapeI16Jump, CompareLeJumpIfFalse: ShapeI16Jump,
	CompareGtJumpIfFalse: ShapeI16Jump, CompareGeJumpIfFalse: ShapeI16Jump,
	Jump: ShapeI16Jump, JumpIfTrue: ShapeI16Jump, JumpIfFalse: ShapeI16Jump,
	JumpIfTrueOrPop: ShapeI16Jump, JumpIfFalseOrPop: ShapeI16Jump, ForIter: ShapeI16Jump,
	CallFunction: ShapeU8, CallFunctionKw: ShapeCallKw, CallAttr: ShapeU16U8,
	CallAttrKw: ShapeU16CallKw, CallBuiltinFunction: ShapeU8U8, CallBuiltinType: ShapeU8U8,
	ReturnValue: ShapeNone,
	BuildList:   ShapeU16, BuildTuple: ShapeU16, BuildSet: ShapeU16, BuildDict: ShapeU16,
	BuildFString: ShapeU16,
	LoadAttr:     ShapeU16, StoreAttr: ShapeU16, DeleteAttr: ShapeU16, LoadAttrImport: ShapeU16,
	BinarySubscr: ShapeNone, StoreSubscr: ShapeNone, DeleteSubscr: ShapeNone,
	UnpackSequence: ShapeU8, UnpackEx: ShapeU8U8,
	MakeFunction: ShapeU16U8, MakeClosure: ShapeU16U8U8, BuildClass: ShapeU16U16U8,
	GetIter: ShapeNone,
}

// Shape returns op's operand shape.
func (op Opcode) Shape() OperandShape { return opcodeShape[op] }

// FixedLen returns the total instruction length in bytes (opcode +
// operands) for shapes with a statically known size; ok is false for
// variable-length shapes (the Call*Kw family).
func (s OperandShape) FixedLen() (int, bool) {
	switch s {
	case ShapeNone:
		return 1, true
	case ShapeU8, ShapeI8:
		return 2, true
	case ShapeU8U8:
		return 3, true
	case ShapeU16:
		return 3, true
	case ShapeU16U8:
		return 4, true
	case ShapeU16U8U8:
		return 5, true
	case ShapeU16U16U8:
		return 6, true
	case ShapeI16Jump:
		return 3, true
	case ShapeU8I8:
		return 3, true
	default:
		return 0, false
	}
}
