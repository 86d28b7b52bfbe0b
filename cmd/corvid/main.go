// Command corvid is a disassembler-and-walkthrough CLI for the core: it
// builds a Code object the way an external compiler would (spec.md §4.1),
// disassembles the result generically off each opcode's declared operand
// shape, then drives the heap and attribute dispatcher through a small
// class hierarchy the way an external VM loop would on every
// LoadAttr/StoreAttr opcode (spec.md §4.3). It replaces the teacher's
// cmd/rage and cmd/oink entry points, which drove a full
// Python-source-to-execution pipeline outside this core's scope (spec.md
// §1 treats the parser and VM dispatch loop as external collaborators);
// this driver instead exercises exactly the three subsystems the core
// owns.
package main

import (
	"fmt"

	"github.com/corvidlang/corvid/internal/bytecode"
	"github.com/corvidlang/corvid/internal/hashobj"
	"github.com/corvidlang/corvid/internal/heap"
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/runerr"
	"github.com/corvidlang/corvid/internal/value"
	"github.com/corvidlang/corvid/pkg/corvid"
)

func main() {
	fmt.Println("=== corvid core walkthrough ===")
	fmt.Println()

	disassembleMaxFunction()
	fmt.Println()
	runAttributeWalkthrough()
	fmt.Println()
	runHashDemo()
}

// disassembleMaxFunction builds the bytecode for:
//
//	def max2(a, b):
//	    if a > b:
//	        return a
//	    return b
//
// the way the external compiler (which is not part of this repository,
// per spec.md §1) would call into CodeBuilder, then disassembles the finished Code
// generically from each opcode's operand shape (spec.md §4.1's "fixed
// operand shapes" table) rather than hand-decoding this one snippet.
func disassembleMaxFunction() {
	b := bytecode.NewCodeBuilder()

	b.EmitLoadLocal(0) // a
	b.EmitLoadLocal(1) // b
	b.Emit(bytecode.CompareGt)
	label := b.EmitJump(bytecode.JumpIfFalse)
	b.EmitLoadLocal(0)
	b.Emit(bytecode.ReturnValue)
	if err := b.PatchJump(label); err != nil {
		panic(err)
	}
	b.EmitLoadLocal(1)
	b.Emit(bytecode.ReturnValue)

	code := b.Build(2)

	fmt.Println("def max2(a, b): ... -- disassembly:")
	disassemble(code)
	fmt.Printf("max_stack_depth = %d, num_locals = %d\n", code.MaxStackDepth, code.NumLocals)
}

// disassemble walks code.Bytecode purely off each opcode's Shape(), the
// same boundary metadata the peephole pass (internal/bytecode's own
// consumer) relies on to avoid re-decoding.
func disassemble(code *bytecode.Code) {
	buf := code.Bytecode
	for i := 0; i < len(buf); {
		op := bytecode.Opcode(buf[i])
		n, ok := op.Shape().FixedLen()
		if !ok {
			// Call*Kw variable-length forms: never emitted by this
			// walkthrough, but handled rather than assumed away.
			fmt.Printf("  %4d  %s <variable-length operand>\n", i, op)
			break
		}
		fmt.Printf("  %4d  %s\n", i, op)
		i += n
	}
}

// runAttributeWalkthrough builds a __slots__ = ("x",) class with no
// instance __dict__ directly against a corvid.Runtime and drives
// StoreAttr/LoadAttr the way a VM's StoreAttr/LoadAttr opcodes would,
// demonstrating spec.md §8.4 scenario S8: assigning an undeclared
// attribute raises AttributeError, while the declared slot round-trips.
func runAttributeWalkthrough() {
	rt := corvid.New()
	h, strings, dispatcher := rt.Heap, rt.Strings, rt.Attr

	nsID := mustAllocDict(h)
	xName := strings.Intern("x")

	clsID, err := h.Allocate(heap.HeapData{Kind: heap.DataClassObject, Payload: &heap.ClassObjectData{
		Name:            strings.Intern("Point"),
		Namespace:       nsID,
		OwnSlots:        []intern.StringId{xName},
		SlotLayout:      []intern.StringId{xName},
		SlotIndex:       map[intern.StringId]int{xName: 0},
		InstanceHasDict: false,
	}})
	must(err)
	// MRO is self-first (spec.md §3.7); patch it in now that clsID is known.
	clsData, _ := h.Get(clsID)
	clsData.Payload.(*heap.ClassObjectData).MRO = []value.HeapId{clsID}

	slotDescID, err := h.Allocate(heap.HeapData{Kind: heap.DataSlotDescriptor, Payload: &heap.SlotDescriptorData{
		Kind: heap.SlotMember, OwnerClass: clsID, SlotIndex: 0,
	}})
	must(err)
	h.SetName(nsID, xName, value.Ref(slotDescID))

	objID, err := h.Allocate(heap.HeapData{Kind: heap.DataInstance, Payload: &heap.InstanceData{
		Class: clsID,
		Slots: []value.Value{value.Undefined},
	}})
	must(err)

	fmt.Println("class Point: __slots__ = (\"x\",) -- attribute walkthrough:")

	_, err = dispatcher.StoreAttr(value.Ref(objID), strings.Intern("y"), value.Int(1))
	fmt.Printf("  instance.y = 1  -> %v (AttributeError: %v)\n", err, runerr.IsExc(err, runerr.AttributeError))

	_, err = dispatcher.StoreAttr(value.Ref(objID), xName, value.Int(7))
	must(err)
	loaded, err := dispatcher.LoadAttr(value.Ref(objID), xName)
	must(err)
	fmt.Printf("  instance.x = 7; instance.x -> %d\n", loaded.Value.Int)
}

func mustAllocDict(h *heap.Heap) value.HeapId {
	id, err := h.Allocate(heap.HeapData{Kind: heap.DataDict, Payload: heap.NewDict()})
	must(err)
	return id
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// runHashDemo is spec.md §8.4 scenario S5.
func runHashDemo() {
	hObj, err := hashobj.New("sha256", []byte("hello"), -1)
	must(err)
	hex, err := hashobj.Hexdigest(hObj, -1)
	must(err)
	fmt.Printf("sha256(b\"hello\").hexdigest() = %s\n", hex)
}
