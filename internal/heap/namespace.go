package heap

import (
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/value"
)

// Namespace dicts (a ClassObjectData's own namespace, an instance's
// `__dict__`, a module's globals) are always keyed by InternString values.
// Since interning guarantees one StringId per distinct string content
// (spec.md §8.2.8), the StringId itself is both a stable hash and a cheap
// equality test — no need to round-trip through the string tables to
// resolve a name lookup.

func strKeyEq(name intern.StringId) func(value.Value) bool {
	return func(k value.Value) bool {
		return k.Kind == value.KindInternString && k.Str == name
	}
}

// LookupName finds name in the dict stored at dictID, the Py-trait access
// pattern every attribute lookup over a namespace dict uses (spec.md §4.3).
func (h *Heap) LookupName(dictID value.HeapId, name intern.StringId) (value.Value, bool) {
	data, ok := h.Get(dictID)
	if !ok || data.Kind != DataDict {
		return value.Value{}, false
	}
	d := data.Payload.(*DictData)
	return d.Get(uint64(name), strKeyEq(name))
}

// SetName inserts or updates name in the dict at dictID.
func (h *Heap) SetName(dictID value.HeapId, name intern.StringId, v value.Value) bool {
	data, ok := h.Get(dictID)
	if !ok || data.Kind != DataDict {
		return false
	}
	d := data.Payload.(*DictData)
	d.Set(value.InternString(name), uint64(name), strKeyEq(name), v)
	return true
}

// DeleteName removes name from the dict at dictID, reporting whether it was
// present.
func (h *Heap) DeleteName(dictID value.HeapId, name intern.StringId) bool {
	data, ok := h.Get(dictID)
	if !ok || data.Kind != DataDict {
		return false
	}
	d := data.Payload.(*DictData)
	return d.Delete(uint64(name), strKeyEq(name))
}
