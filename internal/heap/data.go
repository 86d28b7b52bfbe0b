package heap

import (
	"strings"

	"github.com/corvidlang/corvid/internal/value"
)

// DataKind discriminates HeapData's closed variant set (spec.md §3.3).
// Adding a variant means adding a case to every switch below; there is no
// virtual dispatch to silently fall back on (spec.md §9 design note).
type DataKind uint8

const (
	DataStr DataKind = iota
	DataBytes
	DataBytearray
	DataList
	DataTuple
	DataNamedTuple
	DataDict
	DataSet
	DataFrozenSet
	DataDeque
	DataRange
	DataLongInt
	DataDecimal
	DataFraction
	DataClosure
	DataBoundMethod
	DataStaticMethod
	DataClassMethod
	DataPartial
	DataCmpToKey
	DataSingleDispatchMethod
	DataPartialMethod
	DataClassObject
	DataInstance
	DataSlotDescriptor
	DataUserProperty
	DataCachedProperty
	DataMappingProxy
	DataSuperProxy
	DataWeakRef
	DataClassSubclasses
	DataIter
	DataTee
	DataGenerator
	DataCoroutine
	DataGatherFuture
	DataModule
	DataException
	DataPath
	DataHashObject
)

var dataKindNames = map[DataKind]string{
	DataStr: "str", DataBytes: "bytes", DataBytearray: "bytearray",
	DataList: "list", DataTuple: "tuple", DataNamedTuple: "namedtuple",
	DataDict: "dict", DataSet: "set", DataFrozenSet: "frozenset",
	DataDeque: "deque", DataRange: "range", DataLongInt: "int",
	DataDecimal: "Decimal", DataFraction: "Fraction", DataClosure: "function",
	DataBoundMethod: "method", DataStaticMethod: "staticmethod",
	DataClassMethod: "classmethod", DataPartial: "functools.partial",
	DataCmpToKey: "functools.cmp_to_key", DataSingleDispatchMethod: "singledispatchmethod",
	DataPartialMethod: "partialmethod", DataClassObject: "type",
	DataInstance: "instance", DataSlotDescriptor: "member_descriptor",
	DataUserProperty: "property", DataCachedProperty: "cached_property",
	DataMappingProxy: "mappingproxy", DataSuperProxy: "super",
	DataWeakRef: "weakref", DataClassSubclasses: "subclasses",
	DataIter: "iterator", DataTee: "itertools._tee", DataGenerator: "generator",
	DataCoroutine: "coroutine", DataGatherFuture: "Future", DataModule: "module",
	DataException: "Exception", DataPath: "Path", DataHashObject: "Hash",
}

// HeapData is the tagged struct one heap slot stores: a Kind tag plus the
// concrete payload for that kind in Payload. Only one concrete type is
// ever stored per Kind; dispatch functions below switch on Kind and
// type-assert Payload rather than calling an interface method, so the
// variant set stays closed and reviewable in one place per behavior.
type HeapData struct {
	Kind    DataKind
	Payload any
}

// TypeName returns the Python type name for d's variant (the "Py trait"
// `type-name` hook, spec.md §3.3).
func TypeName(d HeapData) string {
	if name, ok := dataKindNames[d.Kind]; ok {
		return name
	}
	return "object"
}

// ContainsRefs reports whether d's payload might hold child HeapIds. This
// is the monotone false→true flag from spec.md §3.5/§9: containers that
// have never held a Ref skip child-id collection entirely, a major
// optimization for primitive-dense collections.
func ContainsRefs(d HeapData) bool {
	switch p := d.Payload.(type) {
	case *ListData:
		return p.containsRefs
	case *TupleData:
		return p.containsRefs
	case *DictData:
		return true
	case *SetData:
		return true
	case *NamedTupleData:
		return true
	case *DequeData:
		return p.containsRefs
	case *InstanceData:
		return true
	case *ClosureData, *BoundMethodData, *PartialData, *CmpToKeyData,
		*SingleDispatchMethodData, *PartialMethodData, *ClassObjectData,
		*UserPropertyData, *CachedPropertyData, *MappingProxyData,
		*SuperProxyData, *GeneratorData, *CoroutineData, *GatherFutureData,
		*ModuleData, *ExceptionData, *IterData, *TeeData:
		return true
	default:
		return false
	}
}

// CollectChildIDs enumerates every HeapId d's payload references, for
// refcount propagation on release (spec.md §3.3 `collect-child-ids`).
func CollectChildIDs(d HeapData, out *[]value.HeapId) {
	appendIfRef := func(v value.Value) {
		if v.IsRef() {
			*out = append(*out, v.Ref)
		}
	}
	switch p := d.Payload.(type) {
	case *ListData:
		for _, v := range p.Items {
			appendIfRef(v)
		}
	case *TupleData:
		for _, v := range p.Items {
			appendIfRef(v)
		}
	case *NamedTupleData:
		for _, v := range p.Items {
			appendIfRef(v)
		}
	case *DictData:
		for _, e := range p.entries {
			if e.deleted {
				continue
			}
			appendIfRef(e.key)
			appendIfRef(e.value)
		}
	case *SetData:
		for _, e := range p.entries {
			if e.deleted {
				continue
			}
			appendIfRef(e.value)
		}
	case *DequeData:
		for _, v := range p.Items {
			appendIfRef(v)
		}
	case *InstanceData:
		*out = append(*out, p.Class)
		if p.AttrsDict != (value.HeapId{}) {
			*out = append(*out, p.AttrsDict)
		}
		for _, v := range p.Slots {
			appendIfRef(v)
		}
		// weakref ids are intentionally excluded: spec.md §3.7/§9 open
		// question 2 — weakrefs are tracked without incrementing and
		// must not be released transitively from their referent.
	case *ClosureData:
		for _, v := range p.FreeVars {
			appendIfRef(v)
		}
		for _, v := range p.Defaults {
			appendIfRef(v)
		}
	case *BoundMethodData:
		appendIfRef(p.Self)
		appendIfRef(p.Func)
	case *PartialData:
		appendIfRef(p.Func)
		for _, v := range p.Args {
			appendIfRef(v)
		}
	case *CmpToKeyData:
		appendIfRef(p.CmpFunc)
	case *SingleDispatchMethodData:
		appendIfRef(p.Dispatcher)
	case *PartialMethodData:
		appendIfRef(p.Func)
		for _, v := range p.Args {
			appendIfRef(v)
		}
	case *ClassObjectData:
		appendIfRef(p.Metaclass)
		*out = append(*out, p.Namespace)
		for _, v := range p.Bases {
			appendIfRef(v)
		}
	case *UserPropertyData:
		appendIfRef(p.Getter)
		appendIfRef(p.Setter)
		appendIfRef(p.Deleter)
	case *CachedPropertyData:
		appendIfRef(p.Func)
	case *MappingProxyData:
		*out = append(*out, p.Target)
	case *SuperProxyData:
		appendIfRef(p.Instance)
		appendIfRef(p.StartClass)
	case *GeneratorData:
		appendIfRef(p.Frame)
	case *CoroutineData:
		appendIfRef(p.Frame)
	case *GatherFutureData:
		for _, v := range p.Children {
			appendIfRef(v)
		}
	case *ModuleData:
		*out = append(*out, p.Namespace)
	case *ExceptionData:
		for _, v := range p.Args {
			appendIfRef(v)
		}
	case *IterData:
		appendIfRef(p.Source)
	case *TeeData:
		appendIfRef(p.Source)
	}
}

// LenOrNone is the `length-or-none` Py-trait hook.
func LenOrNone(d HeapData) (int, bool) {
	switch p := d.Payload.(type) {
	case *StrData:
		return p.length(), true
	case *BytesData:
		return len(p.Bytes), true
	case *BytearrayData:
		return len(p.Bytes), true
	case *ListData:
		return len(p.Items), true
	case *TupleData:
		return len(p.Items), true
	case *NamedTupleData:
		return len(p.Items), true
	case *DictData:
		return p.Len(), true
	case *SetData:
		return p.Len(), true
	case *FrozenSetData:
		return len(p.backing.entries) - p.backing.deletedCount, true
	case *DequeData:
		return len(p.Items), true
	case *RangeData:
		return p.len(), true
	default:
		return 0, false
	}
}

// Bool is the `bool` Py-trait hook.
func Bool(d HeapData) bool {
	if n, ok := LenOrNone(d); ok {
		return n != 0
	}
	switch d.Payload.(type) {
	case *LongIntData:
		return d.Payload.(*LongIntData).Value.Sign() != 0
	default:
		return true
	}
}

// EstimateSize is the `estimate-size` Py-trait hook, a coarse accounting
// figure rather than an exact byte count.
func EstimateSize(d HeapData) int {
	switch p := d.Payload.(type) {
	case *StrData:
		return len(p.Value)
	case *BytesData:
		return len(p.Bytes)
	case *BytearrayData:
		return len(p.Bytes)
	case *ListData:
		return len(p.Items) * 16
	case *TupleData:
		return len(p.Items) * 16
	case *DictData:
		return len(p.entries) * 48
	case *SetData:
		return len(p.entries) * 32
	default:
		return 32
	}
}

// VisitedSet tracks HeapIds currently being displayed so cycle-handling
// (spec.md §3.5) can emit a type-appropriate placeholder instead of
// recursing forever.
type VisitedSet struct {
	seen map[value.HeapId]bool
}

// NewVisitedSet constructs an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[value.HeapId]bool)}
}

// Enter marks id as in-progress, returning false if id was already being
// displayed (a cycle).
func (v *VisitedSet) Enter(id value.HeapId) bool {
	if v.seen[id] {
		return false
	}
	v.seen[id] = true
	return true
}

// Leave unmarks id once its display has finished.
func (v *VisitedSet) Leave(id value.HeapId) {
	delete(v.seen, id)
}

// ReprWrite is the cycle-safe `repr-write` Py-trait hook (spec.md §3.5,
// §8.1.6 "py_repr_fmt terminates in finite time even when the container
// transitively references itself").
func ReprWrite(h *Heap, id value.HeapId, d HeapData, w *strings.Builder, vis *VisitedSet) {
	switch p := d.Payload.(type) {
	case *StrData:
		writeStrRepr(w, p.Value)
	case *BytesData:
		writeBytesRepr(w, p.Bytes, "b")
	case *BytearrayData:
		w.WriteString("bytearray(")
		writeBytesRepr(w, p.Bytes, "b")
		w.WriteString(")")
	case *ListData:
		reprSequence(h, id, p.Items, "[", "]", "[...]", w, vis)
	case *TupleData:
		if len(p.Items) == 1 {
			reprSequence(h, id, p.Items, "(", ",)", "(...)", w, vis)
		} else {
			reprSequence(h, id, p.Items, "(", ")", "(...)", w, vis)
		}
	case *DictData:
		reprDict(h, id, p, w, vis)
	case *SetData:
		reprSet(h, id, p.OrderedForRepr(), "{", "}", w, vis)
	case *FrozenSetData:
		w.WriteString("frozenset(")
		if len(p.backing.entries) > 0 {
			reprSet(h, id, p.backing.OrderedForRepr(), "{", "}", w, vis)
		} else {
			w.WriteString("set()")
		}
		w.WriteString(")")
	case *LongIntData:
		w.WriteString(p.Value.String())
	default:
		w.WriteString("...")
	}
}

func reprSequence(h *Heap, id value.HeapId, items []value.Value, open, closePlaceholder, cyclePlaceholder string, w *strings.Builder, vis *VisitedSet) {
	if !vis.Enter(id) {
		w.WriteString(cyclePlaceholder)
		return
	}
	defer vis.Leave(id)
	w.WriteString(open)
	for i, it := range items {
		if i > 0 {
			w.WriteString(", ")
		}
		writeValueRepr(h, it, w, vis)
	}
	w.WriteString(closePlaceholder)
}

func writeValueRepr(h *Heap, v value.Value, w *strings.Builder, vis *VisitedSet) {
	switch v.Kind {
	case value.KindNone:
		w.WriteString("None")
	case value.KindEllipsis:
		w.WriteString("Ellipsis")
	case value.KindBool:
		if v.Bool {
			w.WriteString("True")
		} else {
			w.WriteString("False")
		}
	case value.KindInt:
		w.WriteString(formatInt(v.Int))
	case value.KindFloat:
		w.WriteString(formatFloat(v.Float))
	case value.KindRef:
		if d, ok := h.Get(v.Ref); ok {
			ReprWrite(h, v.Ref, d, w, vis)
		} else {
			w.WriteString("<dead ref>")
		}
	default:
		w.WriteString("?")
	}
}
