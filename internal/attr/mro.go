package attr

import (
	"github.com/corvidlang/corvid/internal/heap"
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/value"
)

// classOf resolves a class HeapData for id, or ok=false if id isn't a live
// class object (a defensive check; callers only pass ids that came from
// ClassObjectData.MRO or .Class fields).
func (d *Dispatcher) classOf(id value.HeapId) (*heap.ClassObjectData, bool) {
	data, ok := d.Heap.Get(id)
	if !ok || data.Kind != heap.DataClassObject {
		return nil, false
	}
	return data.Payload.(*heap.ClassObjectData), true
}

// lookupMRO walks a class's linearized MRO (self-first, spec.md §3.7)
// searching each class's own namespace for name, returning the first match
// together with the class that owns it.
func (d *Dispatcher) lookupMRO(mro []value.HeapId, name intern.StringId) (value.Value, value.HeapId, bool) {
	for _, classID := range mro {
		cls, ok := d.classOf(classID)
		if !ok {
			continue
		}
		if v, found := d.Heap.LookupName(cls.Namespace, name); found {
			return v, classID, true
		}
	}
	return value.Value{}, value.HeapId{}, false
}

// metaclassMRO resolves the chain of classes to search for metaclass-level
// attribute access: the metaclass's own MRO if it is itself a user class
// object, otherwise an empty chain (a builtin metaclass like `type` itself
// carries no further namespace in this core — spec.md §1 treats concrete
// builtin-method tables as an external module concern).
func (d *Dispatcher) metaclassMRO(cls *heap.ClassObjectData) []value.HeapId {
	if cls.Metaclass.Kind != value.KindRef {
		return nil
	}
	meta, ok := d.classOf(cls.Metaclass.Ref)
	if !ok {
		return nil
	}
	return meta.MRO
}

// findDunder looks up a dunder method (e.g. `__getattribute__`) across a
// class's MRO, resolving function-like values (plain callables, bound via
// the instance they'll be invoked against at the call site).
func (d *Dispatcher) findDunder(mro []value.HeapId, name intern.StringId) (value.Value, bool) {
	v, _, ok := d.lookupMRO(mro, name)
	return v, ok
}
