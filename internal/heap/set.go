package heap

import (
	"github.com/corvidlang/corvid/internal/runerr"
	"github.com/corvidlang/corvid/internal/value"
)

type setEntry struct {
	value   value.Value
	hash    uint64
	deleted bool
}

// SetData backs DataSet: a mutable Python set. Membership uses a plain
// hash index; the CPython-compatible probe order used for `repr` is
// computed separately by OrderedForRepr, since the spec only commits to
// matching CPython's *display* order, not its internal storage layout.
type SetData struct {
	entries      []setEntry
	index        map[uint64][]int
	deletedCount int
}

// NewSet constructs an empty set.
func NewSet() *SetData {
	return &SetData{index: make(map[uint64][]int)}
}

func (s *SetData) Len() int { return len(s.entries) - s.deletedCount }

func (s *SetData) find(hash uint64, eq func(value.Value) bool) (int, bool) {
	for _, idx := range s.index[hash] {
		e := &s.entries[idx]
		if e.deleted {
			continue
		}
		if eq(e.value) {
			return idx, true
		}
	}
	return -1, false
}

// Contains reports set membership.
func (s *SetData) Contains(hash uint64, eq func(value.Value) bool) bool {
	_, ok := s.find(hash, eq)
	return ok
}

// Add inserts v if not already present; reports whether it was newly
// added.
func (s *SetData) Add(v value.Value, hash uint64, eq func(value.Value) bool) bool {
	if _, ok := s.find(hash, eq); ok {
		return false
	}
	idx := len(s.entries)
	s.entries = append(s.entries, setEntry{value: v, hash: hash})
	s.index[hash] = append(s.index[hash], idx)
	return true
}

// Discard removes v if present; reports whether it was removed.
func (s *SetData) Discard(hash uint64, eq func(value.Value) bool) bool {
	idx, ok := s.find(hash, eq)
	if !ok {
		return false
	}
	s.entries[idx].deleted = true
	s.deletedCount++
	return true
}

// Values returns live values in insertion order (used by list(set_obj),
// matching spec.md §8.2.10's equivalence between direct iteration and
// list() conversion).
func (s *SetData) Values() []value.Value {
	out := make([]value.Value, 0, s.Len())
	for _, e := range s.entries {
		if !e.deleted {
			out = append(out, e.value)
		}
	}
	return out
}

// SetIterator snapshots s's length at creation, matching the dict
// iteration-guard contract (spec.md §3.6/§8.1.4).
type SetIterator struct {
	s        *SetData
	startLen int
	pos      int
}

func (s *SetData) NewIterator() *SetIterator {
	return &SetIterator{s: s, startLen: s.Len()}
}

func (it *SetIterator) Next() (value.Value, bool, error) {
	if it.s.Len() != it.startLen {
		return value.Value{}, false, runerr.Exc(runerr.RuntimeError, "Set changed size during iteration")
	}
	for it.pos < len(it.s.entries) {
		e := it.s.entries[it.pos]
		it.pos++
		if !e.deleted {
			return e.value, true, nil
		}
	}
	return value.Value{}, false, nil
}

// FrozenSetData backs DataFrozenSet: an immutable set, computed once.
type FrozenSetData struct {
	backing *SetData
}

// NewFrozenSet builds a FrozenSetData from already-deduplicated values.
func NewFrozenSet(s *SetData) *FrozenSetData {
	return &FrozenSetData{backing: s}
}

func (f *FrozenSetData) Values() []value.Value { return f.backing.Values() }

// --- CPython-compatible set repr ordering simulation (spec.md §3.6) ---
//
// Grounded on original_source/crates/ouros/src/types/set.rs, itself a
// faithful port of CPython's Objects/setobject.c set_add_entry probe
// sequence: a linear-probe window of LINEAR_PROBES slots before falling
// back to the perturbed jump, PERTURB_SHIFT-bit perturbation, table size
// a power of two, grown right after an insert leaves fill*5 >= mask*3
// (load factor about 3/5) to the smallest power of two above used*4
// (used*2 past 50000 elements).

const (
	setMinSize     = 8
	linearProbes   = 9
	perturbShift   = 5
)

type cpySlot struct {
	used bool
	val  value.Value
	hash uint64
}

type cpyTable struct {
	slots []cpySlot
	mask  uint64
	fill  int
}

func newCpyTable(size int) *cpyTable {
	return &cpyTable{slots: make([]cpySlot, size), mask: uint64(size - 1)}
}

func (t *cpyTable) insert(v value.Value, hash uint64) {
	mask := t.mask
	i := hash & mask
	perturb := hash
	for {
		probes := 0
		if i+linearProbes <= mask {
			probes = linearProbes
		}
		for p := 0; p <= probes; p++ {
			slot := &t.slots[i+uint64(p)]
			if !slot.used {
				slot.used = true
				slot.val = v
				slot.hash = hash
				t.fill++
				return
			}
		}
		perturb >>= perturbShift
		i = (i*5 + 1 + perturb) & mask
	}
}

func nextPow2(n int) int {
	size := setMinSize
	for size <= n {
		size *= 2
	}
	return size
}

// OrderedForRepr runs the CPython probe-sequence simulation over s's live
// elements (processed in insertion order, matching CPython's own
// incremental-insert history) and returns them in final table-slot
// traversal order — the order CPython's repr() would produce for the
// same insertion sequence.
func (s *SetData) OrderedForRepr() []value.Value {
	live := s.Values()
	// CPython grows the table as elements are added, not all at once
	// at the end; replay growth to match real iteration order exactly.
	t := newCpyTable(setMinSize)
	for _, v := range live {
		t.insert(v, hashOfValueForSetOrder(v))
		if t.fill*5 < int(t.mask)*3 {
			continue
		}
		minUsed := t.fill * 4
		if t.fill > 50000 {
			minUsed = t.fill * 2
		}
		grown := newCpyTable(nextPow2(minUsed))
		for _, sl := range t.slots {
			if sl.used {
				grown.insert(sl.val, sl.hash)
			}
		}
		t = grown
	}
	out := make([]value.Value, 0, len(live))
	for _, sl := range t.slots {
		if sl.used {
			out = append(out, sl.val)
		}
	}
	return out
}

// hashOfValueForSetOrder computes the hash the repr simulation probes
// with. Ints hash to their own value and bools to 0/1, as in CPython.
// Floats hash to their truncated integer part, interned strings to a
// multiple of their StringId, and every other value to its heap slot
// index; these three do not reproduce CPython's hash, so sets holding
// them can display in a different order than CPython would.
func hashOfValueForSetOrder(v value.Value) uint64 {
	switch v.Kind {
	case value.KindInt:
		return uint64(v.Int)
	case value.KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case value.KindFloat:
		return uint64(v.Float)
	case value.KindInternString:
		return uint64(v.Str) * 2654435761
	default:
		return uint64(v.Ref.Index())
	}
}
