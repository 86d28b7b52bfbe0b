package bytecode

import (
	"encoding/binary"
	"fmt"

	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/value"
)

// JumpLabel is returned by EmitJump and consumed by PatchJump (spec.md
// §4.1 emission API).
type JumpLabel struct {
	pos int // byte offset of the jump opcode itself
}

// fixedDelta holds the opcode's stack-effect contract for opcodes whose
// delta does not depend on an operand value (spec.md §4.1 "Stack effect
// tracking").
var fixedDelta = map[Opcode]int{
	LoadNone: 1, LoadTrue: 1, LoadFalse: 1, LoadEllipsis: 1, LoadSmallInt: 1, LoadConst: 1,
	LoadLocal0: 1, LoadLocal1: 1, LoadLocal2: 1, LoadLocal3: 1, LoadLocal: 1, LoadLocalW: 1,
	StoreLocal0: -1, StoreLocal1: -1, StoreLocal2: -1, StoreLocal3: -1, StoreLocal: -1,
	StoreLocalW: -1, StoreLocalSmallInt: 0, // pushes nothing, pops nothing: value is immediate
	Pop: -1, Dup: 1, Rot2: 0, Rot3: 0,
	Add: -1, Sub: -1, Mul: -1, Div: -1, FloorDiv: -1, Mod: -1, Pow: -1,
	BitAnd: -1, BitOr: -1, BitXor: -1, LShift: -1, RShift: -1, MatMul: -1,
	UnaryNeg: 0, UnaryPos: 0, UnaryNot: 0, UnaryInvert: 0,
	CompareEq: -1, CompareNe: -1, CompareLt: -1, CompareLe: -1, CompareGt: -1, CompareGe: -1,
	CompareIs: -1, CompareIsNot: -1, CompareIn: -1, CompareNotIn: -1,
	CompareEqJumpIfFalse: -2, CompareNeJumpIfFalse: -2, CompareLtJumpIfFalse: -2,
	CompareLeJumpIfFalse: -2, CompareGtJumpIfFalse: -2, CompareGeJumpIfFalse: -2,
	Jump: 0, JumpIfTrue: -1, JumpIfFalse: -1, JumpIfTrueOrPop: -1, JumpIfFalseOrPop: -1,
	ForIter: 1,
	ReturnValue: -1,
	LoadAttr: 0, StoreAttr: -2, DeleteAttr: -1, LoadAttrImport: 0,
	BinarySubscr: -1, StoreSubscr: -3, DeleteSubscr: -2,
	GetIter: 0, Nop: 0,
}

// CodeBuilder accumulates one function's bytecode, constant pool,
// location/exception tables, and stack-depth bookkeeping, producing an
// immutable Code on Build (spec.md §4.1).
type CodeBuilder struct {
	bytecode           []byte
	instructionOffsets []int

	constPool []value.Value

	locationTable  []LocationEntry
	pendingRange   *CodeRange
	pendingFocus   *CodeRange

	exceptionTable []ExceptionEntry

	curDepth int
	maxDepth int

	localNames     map[uint16]intern.StringId
	assignedLocals map[uint16]bool
}

// NewCodeBuilder constructs an empty builder.
func NewCodeBuilder() *CodeBuilder {
	return &CodeBuilder{
		localNames:     make(map[uint16]intern.StringId),
		assignedLocals: make(map[uint16]bool),
	}
}

// CurrentOffset returns the byte offset the next emitted instruction will
// start at.
func (b *CodeBuilder) CurrentOffset() int { return len(b.bytecode) }

// StackDepth returns the builder's current tracked depth.
func (b *CodeBuilder) StackDepth() int { return b.curDepth }

// SetStackDepth resets the current depth to d, for control-flow rejoins
// (spec.md §4.1): a merge point where two branches pushed different
// amounts explicitly resets to the depth known to be correct for the
// continuation.
func (b *CodeBuilder) SetStackDepth(d int) {
	if d < 0 {
		panic(fmt.Sprintf("bytecode: stack depth went negative (%d)", d))
	}
	b.curDepth = d
}

func (b *CodeBuilder) adjustDepth(delta int) {
	b.curDepth += delta
	if b.curDepth < 0 {
		panic(fmt.Sprintf("bytecode: stack depth went negative (delta %d)", delta))
	}
	if b.curDepth > b.maxDepth {
		b.maxDepth = b.curDepth
	}
}

func (b *CodeBuilder) startInstruction() int {
	off := len(b.bytecode)
	b.instructionOffsets = append(b.instructionOffsets, off)
	if b.pendingRange != nil {
		b.locationTable = append(b.locationTable, LocationEntry{
			ByteOffset: uint32(off), Range: *b.pendingRange, Focus: b.pendingFocus,
		})
		b.pendingRange = nil
		b.pendingFocus = nil
	}
	return off
}

// Emit appends a zero-operand opcode, adjusting stack depth by its fixed
// delta (spec.md §4.1 `emit`).
func (b *CodeBuilder) Emit(op Opcode) int {
	off := b.startInstruction()
	b.bytecode = append(b.bytecode, byte(op))
	b.adjustDepth(fixedDelta[op])
	return off
}

// emitOpcodeByte appends a zero-operand opcode without touching the
// stack depth; callers whose stack effect is operand-dependent apply
// their own delta afterwards.
func (b *CodeBuilder) emitOpcodeByte(op Opcode) int {
	off := b.startInstruction()
	b.bytecode = append(b.bytecode, byte(op))
	return off
}

// EmitU8 appends opcode+u8.
func (b *CodeBuilder) EmitU8(op Opcode, v uint8) int {
	off := b.emitOpcodeByte(op)
	b.bytecode = append(b.bytecode, v)
	b.adjustDepth(fixedDelta[op])
	return off
}

// EmitI8 appends opcode+i8.
func (b *CodeBuilder) EmitI8(op Opcode, v int8) int {
	off := b.emitOpcodeByte(op)
	b.bytecode = append(b.bytecode, byte(v))
	b.adjustDepth(fixedDelta[op])
	return off
}

// EmitU8U8 appends opcode+u8+u8.
func (b *CodeBuilder) EmitU8U8(op Opcode, a, c uint8) int {
	off := b.emitOpcodeByte(op)
	b.bytecode = append(b.bytecode, a, c)
	return off
}

// EmitU16 appends opcode+u16 (little-endian).
func (b *CodeBuilder) EmitU16(op Opcode, v uint16) int {
	off := b.emitOpcodeByte(op)
	b.bytecode = append(b.bytecode, byte(v), byte(v>>8))
	b.adjustDepth(fixedDelta[op])
	return off
}

// EmitU16U8 appends opcode+u16+u8.
func (b *CodeBuilder) EmitU16U8(op Opcode, v uint16, a uint8) int {
	off := b.emitOpcodeByte(op)
	b.bytecode = append(b.bytecode, byte(v), byte(v>>8), a)
	b.adjustDepth(fixedDelta[op])
	return off
}

// EmitU16U8U8 appends opcode+u16+u8+u8.
func (b *CodeBuilder) EmitU16U8U8(op Opcode, v uint16, a, c uint8) int {
	off := b.emitOpcodeByte(op)
	b.bytecode = append(b.bytecode, byte(v), byte(v>>8), a, c)
	return off
}

// EmitU16U16U8 appends opcode+u16+u16+u8.
func (b *CodeBuilder) EmitU16U16U8(op Opcode, v1, v2 uint16, a uint8) int {
	off := b.emitOpcodeByte(op)
	b.bytecode = append(b.bytecode, byte(v1), byte(v1>>8), byte(v2), byte(v2>>8), a)
	return off
}

// EmitJump writes a 3-byte jump instruction with a zero placeholder
// offset and returns a label for PatchJump (spec.md §4.1 `emit_jump`).
func (b *CodeBuilder) EmitJump(op Opcode) JumpLabel {
	off := b.emitOpcodeByte(op)
	b.bytecode = append(b.bytecode, 0, 0)
	b.adjustDepth(fixedDelta[op])
	return JumpLabel{pos: off}
}

// PatchJump rewrites the placeholder at label with the relative offset
// from the current position to label (spec.md §4.1 `patch_jump`):
// cur_pos - label_pos - 3. Fails if the offset exceeds the i16 range
// (spec.md §8.3.11 "function too large").
func (b *CodeBuilder) PatchJump(label JumpLabel) error {
	target := len(b.bytecode)
	off := target - label.pos - 3
	return b.writeJumpOffset(label.pos, off)
}

// EmitJumpTo writes a 3-byte jump instruction to an absolute byte offset
// already known at emission time (spec.md §4.1 `emit_jump_to`).
func (b *CodeBuilder) EmitJumpTo(op Opcode, target int) error {
	pos := b.emitOpcodeByte(op)
	b.bytecode = append(b.bytecode, 0, 0)
	b.adjustDepth(fixedDelta[op])
	off := target - pos - 3
	return b.writeJumpOffset(pos, off)
}

func (b *CodeBuilder) writeJumpOffset(pos, off int) error {
	if off < -32768 || off > 32767 {
		return fmt.Errorf("function too large: jump offset %d exceeds i16 range", off)
	}
	b.bytecode[pos+1] = byte(int16(off))
	b.bytecode[pos+2] = byte(int16(off) >> 8)
	return nil
}

// EmitLoadLocal selects the specialized zero-operand opcode for slots
// 0-3, the u8 form for 4-255, and the u16 "wide" form otherwise (spec.md
// §4.1 `emit_load_local`, scenario S1).
func (b *CodeBuilder) EmitLoadLocal(slot uint16) {
	switch {
	case slot == 0:
		b.Emit(LoadLocal0)
	case slot == 1:
		b.Emit(LoadLocal1)
	case slot == 2:
		b.Emit(LoadLocal2)
	case slot == 3:
		b.Emit(LoadLocal3)
	case slot <= 255:
		b.EmitU8(LoadLocal, uint8(slot))
	default:
		b.EmitU16(LoadLocalW, slot)
	}
}

// EmitStoreLocal is EmitLoadLocal's store-side counterpart.
func (b *CodeBuilder) EmitStoreLocal(slot uint16) {
	switch {
	case slot == 0:
		b.Emit(StoreLocal0)
	case slot == 1:
		b.Emit(StoreLocal1)
	case slot == 2:
		b.Emit(StoreLocal2)
	case slot == 3:
		b.Emit(StoreLocal3)
	case slot <= 255:
		b.EmitU8(StoreLocal, uint8(slot))
	default:
		b.EmitU16(StoreLocalW, slot)
	}
}

// EmitCallFunction encodes CallFunction(n): delta -n (pops callable + n
// args, pushes 1 result).
func (b *CodeBuilder) EmitCallFunction(n uint8) {
	b.emitOpcodeByte(CallFunction)
	b.bytecode = append(b.bytecode, n)
	b.adjustDepth(-int(n))
}

// EmitCallFunctionKw encodes pos count + kwnames tail (spec.md §4.1
// `emit_call_function_kw`); fatal if keyword count exceeds 255.
func (b *CodeBuilder) EmitCallFunctionKw(pos uint8, kwnames []intern.StringId) error {
	if len(kwnames) > 255 {
		return fmt.Errorf("keyword count %d exceeds 255", len(kwnames))
	}
	b.emitOpcodeByte(CallFunctionKw)
	b.bytecode = append(b.bytecode, pos, uint8(len(kwnames)))
	for _, id := range kwnames {
		b.bytecode = binary.LittleEndian.AppendUint16(b.bytecode, uint16(id))
	}
	b.adjustDepth(-(int(pos) + len(kwnames)))
	return nil
}

// EmitCallAttrKw encodes LOAD-style attribute name + pos/kw tail (spec.md
// §4.1 `emit_call_attr_kw`).
func (b *CodeBuilder) EmitCallAttrKw(name uint16, pos uint8, kwnames []intern.StringId) error {
	if len(kwnames) > 255 {
		return fmt.Errorf("keyword count %d exceeds 255", len(kwnames))
	}
	b.emitOpcodeByte(CallAttrKw)
	b.bytecode = binary.LittleEndian.AppendUint16(b.bytecode, name)
	b.bytecode = append(b.bytecode, pos, uint8(len(kwnames)))
	for _, id := range kwnames {
		b.bytecode = binary.LittleEndian.AppendUint16(b.bytecode, uint16(id))
	}
	b.adjustDepth(-(int(pos) + len(kwnames)))
	return nil
}

// EmitCallAttr encodes CallAttr(name, n): delta -n.
func (b *CodeBuilder) EmitCallAttr(name uint16, n uint8) {
	b.emitOpcodeByte(CallAttr)
	b.bytecode = binary.LittleEndian.AppendUint16(b.bytecode, name)
	b.bytecode = append(b.bytecode, n)
	b.adjustDepth(-int(n))
}

// EmitCallBuiltinFunction encodes CallBuiltinFunction(id, n): delta 1-n.
func (b *CodeBuilder) EmitCallBuiltinFunction(id, n uint8) {
	b.EmitU8U8(CallBuiltinFunction, id, n)
	b.adjustDepth(1 - int(n))
}

// EmitCallBuiltinType encodes CallBuiltinType(id, n): delta 1-n.
func (b *CodeBuilder) EmitCallBuiltinType(id, n uint8) {
	b.EmitU8U8(CallBuiltinType, id, n)
	b.adjustDepth(1 - int(n))
}

// EmitBuildList/Tuple/Set/FString encode delta 1-n.
func (b *CodeBuilder) emitBuildN(op Opcode, n uint16) {
	b.EmitU16(op, n)
	b.adjustDepth(1 - int(n))
}
func (b *CodeBuilder) EmitBuildList(n uint16)  { b.emitBuildN(BuildList, n) }
func (b *CodeBuilder) EmitBuildTuple(n uint16) { b.emitBuildN(BuildTuple, n) }
func (b *CodeBuilder) EmitBuildSet(n uint16)   { b.emitBuildN(BuildSet, n) }
func (b *CodeBuilder) EmitBuildFString(n uint16) { b.emitBuildN(BuildFString, n) }

// EmitBuildDict encodes delta 1-2n.
func (b *CodeBuilder) EmitBuildDict(n uint16) {
	b.EmitU16(BuildDict, n)
	b.adjustDepth(1 - 2*int(n))
}

// EmitBuildClass encodes delta 1-nbases.
func (b *CodeBuilder) EmitBuildClass(funcConst, nameConst uint16, nbases uint8) {
	b.EmitU16U16U8(BuildClass, funcConst, nameConst, nbases)
	b.adjustDepth(1 - int(nbases))
}

// EmitMakeFunction encodes delta 1-ndefaults.
func (b *CodeBuilder) EmitMakeFunction(codeConst uint16, ndefaults uint8) {
	b.EmitU16U8(MakeFunction, codeConst, ndefaults)
	b.adjustDepth(1 - int(ndefaults))
}

// EmitMakeClosure encodes delta 1-ndefaults.
func (b *CodeBuilder) EmitMakeClosure(codeConst uint16, ndefaults, ncellvars uint8) {
	b.EmitU16U8U8(MakeClosure, codeConst, ndefaults, ncellvars)
	b.adjustDepth(1 - int(ndefaults))
}

// EmitUnpackSequence encodes delta n-1.
func (b *CodeBuilder) EmitUnpackSequence(n uint8) {
	b.EmitU8(UnpackSequence, n)
	b.adjustDepth(int(n) - 1)
}

// EmitUnpackEx encodes delta before+after (per spec.md §4.1's literal
// table entry).
func (b *CodeBuilder) EmitUnpackEx(before, after uint8) {
	b.EmitU8U8(UnpackEx, before, after)
	b.adjustDepth(int(before) + int(after))
}

// AddConst appends v to the constant pool, returning its u16 index;
// fatal once the pool would exceed 65535 entries (spec.md §4.1
// `add_const`, §8.3.12).
func (b *CodeBuilder) AddConst(v value.Value) (uint16, error) {
	if len(b.constPool) >= 65535 {
		return 0, fmt.Errorf("constant pool full: cannot add 65536th constant")
	}
	idx := len(b.constPool)
	b.constPool = append(b.constPool, v)
	return uint16(idx), nil
}

// AddExceptionEntry appends an exception-handler record in
// innermost-first order (spec.md §4.1 `add_exception_entry`): callers are
// expected to call this as handlers close, innermost try block first.
func (b *CodeBuilder) AddExceptionEntry(e ExceptionEntry) {
	b.exceptionTable = append(b.exceptionTable, e)
}

// SetLocation records range (and optional focus sub-range) against the
// next emitted instruction (spec.md §4.1 `set_location`).
func (b *CodeBuilder) SetLocation(r CodeRange, focus *CodeRange) {
	rc := r
	b.pendingRange = &rc
	b.pendingFocus = focus
}

// RegisterLocalName records slot's source name, used by the VM to
// disambiguate NameError from UnboundLocalError (spec.md §4.1
// `register_local_name`).
func (b *CodeBuilder) RegisterLocalName(slot uint16, name intern.StringId) {
	b.localNames[slot] = name
}

// RegisterAssignedLocal marks slot as assigned somewhere in the function
// body (spec.md §4.1 `register_assigned_local`).
func (b *CodeBuilder) RegisterAssignedLocal(slot uint16) {
	b.assignedLocals[slot] = true
}

// Build finalizes the builder: applies the peephole fusion pass and
// produces an immutable Code (spec.md §4.1 `build`).
func (b *CodeBuilder) Build(numLocals uint16) *Code {
	protected := b.protectedJumpTargets()
	code := peephole(b.bytecode, b.instructionOffsets, protected)

	names := make([]intern.StringId, numLocals)
	for slot, name := range b.localNames {
		if int(slot) < len(names) {
			names[slot] = name
		}
	}
	assigned := make(map[uint16]bool, len(b.assignedLocals))
	for k, v := range b.assignedLocals {
		assigned[k] = v
	}

	return &Code{
		Bytecode:       code,
		ConstPool:      append([]value.Value(nil), b.constPool...),
		LocationTable:  append([]LocationEntry(nil), b.locationTable...),
		ExceptionTable: append([]ExceptionEntry(nil), b.exceptionTable...),
		NumLocals:      numLocals,
		MaxStackDepth:  uint16(b.maxDepth),
		LocalNames:     names,
		AssignedLocals: assigned,
	}
}

// protectedJumpTargets decodes every jump-class opcode and exception
// handler offset in the still-unfused bytecode, producing the set of
// byte offsets the peephole pass must never remove or cross (spec.md
// §4.1 "Peephole fusion").
func (b *CodeBuilder) protectedJumpTargets() map[int]bool {
	targets := make(map[int]bool)
	i := 0
	for i < len(b.bytecode) {
		op := Opcode(b.bytecode[i])
		shape := op.Shape()
		if shape == ShapeI16Jump {
			off := int(int16(uint16(b.bytecode[i+1]) | uint16(b.bytecode[i+2])<<8))
			targets[i+3+off] = true
		}
		n, ok := shape.FixedLen()
		if !ok {
			// Variable-length (Call*Kw): decode the count bytes to skip
			// the keyword-name tail correctly.
			n = variableLenTotal(b.bytecode, i, op)
		}
		i += n
	}
	for _, e := range b.exceptionTable {
		targets[int(e.HandlerOffset)] = true
	}
	return targets
}

func variableLenTotal(code []byte, i int, op Opcode) int {
	switch op {
	case CallFunctionKw:
		nkw := int(code[i+2])
		return 3 + nkw*2
	case CallAttrKw:
		nkw := int(code[i+4])
		return 5 + nkw*2
	default:
		return 1
	}
}
