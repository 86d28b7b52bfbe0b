// Package heap implements L2: the typed value heap, its reference-counting
// discipline, and the cycle-handling strategy layered on top (spec.md
// §3.3-§3.5, §4.2). Grounded on
// _examples/original_source/crates/ouros/src/object.rs and cross-checked
// against types/class.rs, types/dict.rs, types/set.rs for the variants
// those files implement directly.
package heap

import (
	"github.com/corvidlang/corvid/internal/runerr"
	"github.com/corvidlang/corvid/internal/value"
)

// slot is one entry in the heap's backing array.
type slot struct {
	data     HeapData
	refcount uint32
	gen      uint32
	live     bool
	// weak marks this slot as a weak-value or weak-key dict, copied by
	// value rather than identity during weakref-aware operations.
	weakValueDict bool
	weakKeyDict   bool
}

// Limits bounds the heap's growth, consulted on every Allocate the way
// spec.md §5 describes an "external resource tracker" the VM may consult.
type Limits struct {
	MaxSlots int // 0 means unbounded
}

// Heap owns every HeapData variant for one runtime instance. Per spec.md
// §4.2/§5: "no concurrent access is possible by construction" — a Heap is
// never shared across goroutines.
type Heap struct {
	slots   []slot
	freeIdx []uint32
	limits  Limits
	live    int
}

// New constructs an empty Heap under the given resource limits.
func New(limits Limits) *Heap {
	return &Heap{limits: limits}
}

// Allocate reserves a slot for data with refcount 1 and returns its
// HeapId (spec.md §4.2 `allocate`).
func (h *Heap) Allocate(data HeapData) (value.HeapId, error) {
	if h.limits.MaxSlots > 0 && h.live >= h.limits.MaxSlots {
		return value.HeapId{}, runerr.Resource("heap slot limit exceeded")
	}
	var idx uint32
	var gen uint32
	if n := len(h.freeIdx); n > 0 {
		idx = h.freeIdx[n-1]
		h.freeIdx = h.freeIdx[:n-1]
		gen = h.slots[idx].gen
		h.slots[idx] = slot{data: data, refcount: 1, gen: gen, live: true}
	} else {
		idx = uint32(len(h.slots))
		h.slots = append(h.slots, slot{data: data, refcount: 1, gen: 0, live: true})
	}
	h.live++
	return value.NewHeapId(idx, gen), nil
}

func (h *Heap) slotFor(id value.HeapId) (*slot, bool) {
	idx := id.Index()
	if int(idx) >= len(h.slots) {
		return nil, false
	}
	s := &h.slots[idx]
	if !s.live || s.gen != id.Generation() {
		return nil, false
	}
	return s, true
}

// Get returns an immutable view of id's data. A dangling or stale id does
// not panic: Get returns (HeapData{}, false).
func (h *Heap) Get(id value.HeapId) (HeapData, bool) {
	s, ok := h.slotFor(id)
	if !ok {
		return HeapData{}, false
	}
	return s.data, true
}

// GetIfLive returns data for id only if the slot is currently live; it is
// Get under the name of the weakref probe contract (spec.md §4.2
// `get_if_live`, §5's "weakref's get_if_live probe must detect the
// reclamation").
func (h *Heap) GetIfLive(id value.HeapId) (HeapData, bool) {
	return h.Get(id)
}

// GetMut returns a mutable pointer to id's stored data.
func (h *Heap) GetMut(id value.HeapId) (*HeapData, bool) {
	s, ok := h.slotFor(id)
	if !ok {
		return nil, false
	}
	return &s.data, true
}

// WithEntryMut invokes fn with a mutable reference to id's data while the
// rest of the heap stays reachable through h (spec.md §4.2 `with_entry_mut`).
func (h *Heap) WithEntryMut(id value.HeapId, fn func(h *Heap, data *HeapData)) bool {
	s, ok := h.slotFor(id)
	if !ok {
		return false
	}
	fn(h, &s.data)
	return true
}

// WithTwo invokes fn with mutable references to both a's and b's data.
// When a == b, both parameters alias the same pointer (spec.md §4.2/§5:
// "if a == b, falls back to a single borrow").
func (h *Heap) WithTwo(a, b value.HeapId, fn func(da, db *HeapData)) bool {
	if a == b {
		s, ok := h.slotFor(a)
		if !ok {
			return false
		}
		fn(&s.data, &s.data)
		return true
	}
	sa, ok := h.slotFor(a)
	if !ok {
		return false
	}
	sb, ok := h.slotFor(b)
	if !ok {
		return false
	}
	fn(&sa.data, &sb.data)
	return true
}

// IncRef increments id's refcount (spec.md §3.4 "share" idiom / §4.2
// `inc_ref`).
func (h *Heap) IncRef(id value.HeapId) {
	if s, ok := h.slotFor(id); ok {
		s.refcount++
	}
}

// Refcount reports id's current refcount, 0 if the slot isn't live. Used
// by tests verifying testable property 8.1.1.
func (h *Heap) Refcount(id value.HeapId) uint32 {
	if s, ok := h.slotFor(id); ok {
		return s.refcount
	}
	return 0
}

// DecRefValue decrements the refcount of v if v.IsRef(); on reaching zero
// it collects v's children into an iterative worklist and releases them
// without recursion, per spec.md §3.4/§4.2 ("avoiding recursive stack
// growth for deep structures").
func (h *Heap) DecRefValue(v value.Value) {
	if !v.IsRef() {
		return
	}
	h.release(v.Ref)
}

func (h *Heap) release(id value.HeapId) {
	worklist := []value.HeapId{id}
	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		s, ok := h.slotFor(cur)
		if !ok {
			continue
		}
		if s.refcount == 0 {
			continue
		}
		s.refcount--
		if s.refcount > 0 {
			continue
		}
		if ContainsRefs(s.data) {
			var children []value.HeapId
			CollectChildIDs(s.data, &children)
			worklist = append(worklist, children...)
		}
		h.free(cur)
	}
}

func (h *Heap) free(id value.HeapId) {
	idx := id.Index()
	h.slots[idx] = slot{live: false, gen: h.slots[idx].gen + 1}
	h.freeIdx = append(h.freeIdx, idx)
	h.live--
}

// MarkWeakValueDict tags id (which must hold a Dict) for weak-value
// copying semantics (spec.md §4.2 `mark_weak_value_dict`).
func (h *Heap) MarkWeakValueDict(id value.HeapId) {
	if s, ok := h.slotFor(id); ok {
		s.weakValueDict = true
	}
}

// MarkWeakKeyDict tags id for weak-key semantics (spec.md §4.2
// `mark_weak_key_dict`; also spec.md §3.6's "weak-key mode").
func (h *Heap) MarkWeakKeyDict(id value.HeapId) {
	if s, ok := h.slotFor(id); ok {
		s.weakKeyDict = true
	}
}

// IsWeakKeyDict reports whether id was marked weak-key.
func (h *Heap) IsWeakKeyDict(id value.HeapId) bool {
	s, ok := h.slotFor(id)
	return ok && s.weakKeyDict
}

// IsWeakValueDict reports whether id was marked weak-value.
func (h *Heap) IsWeakValueDict(id value.HeapId) bool {
	s, ok := h.slotFor(id)
	return ok && s.weakValueDict
}

// LiveSlots reports the number of currently live slots, for diagnostics
// and tests.
func (h *Heap) LiveSlots() int { return h.live }
