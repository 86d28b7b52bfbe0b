// Package value defines Value, the tagged-sum payload every Python value
// carries (spec.md §3.2): a closed set of immediates owned directly by the
// Value, plus the single Ref variant that participates in heap
// refcounting. The set is realized as a tagged struct with switch-based
// dispatch (see DESIGN.md / spec.md §9 "Polymorphism over heap variants")
// rather than an interface hierarchy, so the compiler can't silently miss
// a case when a new Kind is added.
package value

import (
	"github.com/corvidlang/corvid/internal/intern"
)

// Kind discriminates a Value's active variant.
type Kind uint8

const (
	KindNone Kind = iota
	KindEllipsis
	KindBool
	KindInt
	KindFloat
	KindInternString
	KindInternBytes
	KindBuiltin
	KindModuleFunction
	KindProxy
	KindUndefined
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindEllipsis:
		return "Ellipsis"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindInternString:
		return "InternString"
	case KindInternBytes:
		return "InternBytes"
	case KindBuiltin:
		return "Builtin"
	case KindModuleFunction:
		return "ModuleFunction"
	case KindProxy:
		return "Proxy"
	case KindUndefined:
		return "Undefined"
	case KindRef:
		return "Ref"
	default:
		return "?"
	}
}

// HeapId is an opaque handle identifying a slot in the heap (spec.md
// §3.1). Two HeapIds compare equal iff they refer to the same slot. The
// generation field distinguishes a stale id (captured before the slot was
// reused after release) from a live one — spec.md §5's "reusable slots
// carry a generation tag or equivalent", supplemented from
// original_source/object.rs's slot-reuse discipline.
type HeapId struct {
	idx uint32
	gen uint32
}

// Index exposes the raw slot index, for Heap's internal bookkeeping only.
func (h HeapId) Index() uint32 { return h.idx }

// Generation exposes the captured generation, for Heap's internal
// bookkeeping only.
func (h HeapId) Generation() uint32 { return h.gen }

// NewHeapId is used only by package heap to mint ids; kept exported (via
// a constructor, not a literal) so HeapId's fields stay unexported to
// every other package, preserving "equality implies identity".
func NewHeapId(idx, gen uint32) HeapId { return HeapId{idx: idx, gen: gen} }

// Value is the tagged union described above. Only the field matching Kind
// is meaningful; all others are zero. A bare Value{} is KindNone's zero
// value by construction (None), and the core relies on that: an unset
// Value field (a property's missing setter or deleter, for instance)
// reads as None.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   intern.StringId
	Bytes intern.BytesId
	Tag   uint32 // Builtin / ModuleFunction / Proxy discriminant tag
	Ref   HeapId
}

var None = Value{Kind: KindNone}
var EllipsisValue = Value{Kind: KindEllipsis}
var Undefined = Value{Kind: KindUndefined}

func Bool(b bool) Value    { return Value{Kind: KindBool, Bool: b} }
func Int(i int64) Value    { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func InternString(id intern.StringId) Value {
	return Value{Kind: KindInternString, Str: id}
}
func InternBytes(id intern.BytesId) Value {
	return Value{Kind: KindInternBytes, Bytes: id}
}
func Builtin(tag uint32) Value        { return Value{Kind: KindBuiltin, Tag: tag} }
func ModuleFunction(tag uint32) Value { return Value{Kind: KindModuleFunction, Tag: tag} }
func Proxy(tag uint32) Value          { return Value{Kind: KindProxy, Tag: tag} }
func Ref(id HeapId) Value             { return Value{Kind: KindRef, Ref: id} }

// IsRef reports whether v participates in heap refcounting.
func (v Value) IsRef() bool { return v.Kind == KindRef }

// IsUndefined reports whether v is the uninitialized-slot sentinel. Never
// observable at the Python level (spec.md §3.2 invariant).
func (v Value) IsUndefined() bool { return v.Kind == KindUndefined }
