package bytecode

import (
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/value"
)

// CodeRange is the source-location record the external parser attaches
// to AST nodes and hands to the builder via SetLocation (spec.md §1's
// "consumed via CodeRange location records"). Treated opaquely by this
// package beyond carrying it through to the location table.
type CodeRange struct {
	StartLine, StartCol int
	EndLine, EndCol      int
}

// LocationEntry is one row of a Code's location table (spec.md §4.1
// "Location table" / §6.1).
type LocationEntry struct {
	ByteOffset uint32
	Range      CodeRange
	Focus      *CodeRange
}

// ExceptionEntry is one row of a Code's exception table (spec.md §6.1),
// matched innermost-first by add_exception_entry's append order (spec.md
// §4.1). Depth is the operand-stack depth the VM resets to before
// jumping to HandlerOffset — supplemented from
// original_source/types/class.rs's error-path handling (spec.md leaves
// the purpose of Depth implicit; see SPEC_FULL.md §C).
type ExceptionEntry struct {
	TryStart      uint32
	TryEnd        uint32
	HandlerOffset uint32
	Depth         uint16
}

// Code is the immutable artifact build() produces (spec.md §6.1), field
// order matching the spec's listing.
type Code struct {
	Bytecode        []byte
	ConstPool       []value.Value
	LocationTable   []LocationEntry
	ExceptionTable  []ExceptionEntry
	NumLocals       uint16
	MaxStackDepth   uint16
	LocalNames      []intern.StringId
	AssignedLocals  map[uint16]bool
}
