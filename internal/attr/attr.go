// Package attr implements L4: the attribute-access dispatcher (spec.md
// §4.3), the load_attr/store_attr/delete_attr operations the VM issues for
// every Python attribute access. It reproduces CPython's descriptor
// protocol: data-descriptor precedence over instance `__dict__`,
// `__getattribute__`/`__getattr__` chaining, metaclass fallback, and
// `__slots__` storage.
//
// Grounded on _examples/original_source/crates/ouros/src/bytecode/vm/attr.rs
// (read in full; see DESIGN.md), adapted from the Rust match-per-variant
// shape to Go's same style already used by package heap: a closed set of
// HeapData variants inspected by type-switch rather than virtual dispatch
// (spec.md §9 "Dynamic dispatch for attribute access").
//
// This package never drives the VM's call stack itself — any attribute
// operation that needs to invoke a user-defined function (a property
// getter, `__getattribute__`, a descriptor's `__get__`, ...) returns a
// Result tagged FramePushed carrying the call to make and a Pending
// continuation describing how to finish the operation once that call
// returns (spec.md §5's "continuation records", consumed via Resume).
package attr

import (
	"github.com/corvidlang/corvid/internal/heap"
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/value"
)

// Kind discriminates the tagged results an attribute operation can
// produce (spec.md §4.3 "Async suspension in attribute access").
type Kind uint8

const (
	// KindPush is an immediately available value; the VM pushes it.
	KindPush Kind = iota
	// KindFramePushed means a user function was scheduled; see Call.
	KindFramePushed
	// KindExternal defers to a host-registered external function.
	KindExternal
	// KindProxy defers to an embedder-side proxy call.
	KindProxy
	// KindOsCall delegates to a host OS-level operation.
	KindOsCall
)

// PendingKind discriminates the continuation records of spec.md §5.
type PendingKind uint8

const (
	// PendingNone is not a valid Pending on a FramePushed Result.
	PendingNone PendingKind = iota
	// PendingPlain: propagate the callee's return value as this
	// operation's own result, with no further bookkeeping.
	PendingPlain
	// PendingGetattrFallback: if the pushed call raised AttributeError,
	// invoke `__getattr__(name)` on Obj before propagating; otherwise
	// propagate the call's own outcome.
	PendingGetattrFallback
	// PendingCachedProperty: cache the callee's return value into
	// InstanceID's `__dict__` under Name, then propagate it as the
	// result.
	PendingCachedProperty
	// PendingDiscardReturn: a setter/deleter call; its return value is
	// dropped and Push(None) is the effective result.
	PendingDiscardReturn
)

// Pending is the continuation a FramePushed Result attaches, consumed by
// Resume once the scheduled call returns or raises.
type Pending struct {
	Kind       PendingKind
	Obj        value.Value    // PendingGetattrFallback target
	Name       intern.StringId
	InstanceID value.HeapId // PendingCachedProperty target instance
}

// Call describes the user function a FramePushed Result asks the VM to
// invoke.
type Call struct {
	Callable value.Value
	Args     []value.Value
	Pending  Pending
}

// Result is the tagged outcome of a load_attr/store_attr/delete_attr call.
type Result struct {
	Kind Kind

	// KindPush
	Value value.Value

	// KindFramePushed
	Call Call

	// KindExternal
	ExternalID   uint32
	ExternalArgs []value.Value

	// KindProxy
	ProxyID     uint32
	ProxyMethod intern.StringId
	ProxyArgs   []value.Value

	// KindOsCall
	OsFunc string
	OsArgs []value.Value
}

func push(v value.Value) Result { return Result{Kind: KindPush, Value: v} }

func framePushed(callable value.Value, args []value.Value, pending Pending) Result {
	return Result{Kind: KindFramePushed, Call: Call{Callable: callable, Args: args, Pending: pending}}
}

// Dispatcher implements the three attribute operations against one
// runtime's heap and string tables.
type Dispatcher struct {
	Heap    *heap.Heap
	Strings *intern.Tables
}

// New constructs a Dispatcher over h and strings.
func New(h *heap.Heap, strings *intern.Tables) *Dispatcher {
	return &Dispatcher{Heap: h, Strings: strings}
}

func (d *Dispatcher) name(id intern.StringId) string {
	return d.Strings.Lookup(id)
}

// typeName returns the Python type name of v, for error messages and
// dunder-method resolution (spec.md §4.3 error schema).
func (d *Dispatcher) typeName(v value.Value) string {
	switch v.Kind {
	case value.KindNone:
		return "NoneType"
	case value.KindEllipsis:
		return "ellipsis"
	case value.KindBool:
		return "bool"
	case value.KindInt:
		return "int"
	case value.KindFloat:
		return "float"
	case value.KindInternString:
		return "str"
	case value.KindInternBytes:
		return "bytes"
	case value.KindRef:
		data, ok := d.Heap.Get(v.Ref)
		if !ok {
			return "object"
		}
		if data.Kind == heap.DataInstance {
			inst := data.Payload.(*heap.InstanceData)
			if cls, ok := d.Heap.Get(inst.Class); ok && cls.Kind == heap.DataClassObject {
				return d.name(cls.Payload.(*heap.ClassObjectData).Name)
			}
		}
		if data.Kind == heap.DataClassObject {
			return "type"
		}
		return heap.TypeName(data)
	default:
		return "object"
	}
}

// className returns obj's display name when obj is itself a class object,
// used by the class-object error message variants ("type object '%s' has
// no attribute").
func (d *Dispatcher) className(obj value.Value) (string, bool) {
	if obj.Kind != value.KindRef {
		return "", false
	}
	data, ok := d.Heap.Get(obj.Ref)
	if !ok || data.Kind != heap.DataClassObject {
		return "", false
	}
	return d.name(data.Payload.(*heap.ClassObjectData).Name), true
}
