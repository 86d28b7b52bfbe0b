package heap

import (
	"github.com/corvidlang/corvid/internal/runerr"
	"github.com/corvidlang/corvid/internal/value"
)

// dictEntry is one slot of a dict's dense, insertion-ordered entry
// vector. hash is cached so growth/rehash never has to re-hash every key
// (spec.md §3.6).
type dictEntry struct {
	key, value value.Value
	hash       uint64
	deleted    bool
}

// DictData backs DataDict: dense insertion-ordered entries plus an index
// from cached hash to entry positions. The index is a Go map holding a
// chain of positions per hash; it is not an open-addressed table.
type DictData struct {
	entries      []dictEntry
	index        map[uint64][]int // hash -> candidate entry indices (collision chain)
	deletedCount int
	weakKey      bool
}

// NewDict constructs an empty dict.
func NewDict() *DictData {
	return &DictData{index: make(map[uint64][]int)}
}

// Len reports the live (non-tombstoned) entry count.
func (d *DictData) Len() int { return len(d.entries) - d.deletedCount }

// find returns the entry index for a key with the given hash, using eq to
// compare candidates (candidates are pre-filtered by cached hash).
func (d *DictData) find(hash uint64, eq func(value.Value) bool) (int, bool) {
	for _, idx := range d.index[hash] {
		e := &d.entries[idx]
		if e.deleted {
			continue
		}
		if eq(e.key) {
			return idx, true
		}
	}
	return -1, false
}

// Get looks up a key by its precomputed hash and equality predicate.
func (d *DictData) Get(hash uint64, eq func(value.Value) bool) (value.Value, bool) {
	idx, ok := d.find(hash, eq)
	if !ok {
		return value.Value{}, false
	}
	return d.entries[idx].value, true
}

// Set inserts or updates a key. When the dict is in weak-key mode and the
// key already exists, the originally-inserted key object is preserved
// (spec.md §3.6: "an equal but distinct key preserves the first-inserted
// key object").
func (d *DictData) Set(key value.Value, hash uint64, eq func(value.Value) bool, newValue value.Value) {
	if idx, ok := d.find(hash, eq); ok {
		d.entries[idx].value = newValue
		return
	}
	idx := len(d.entries)
	d.entries = append(d.entries, dictEntry{key: key, value: newValue, hash: hash})
	d.index[hash] = append(d.index[hash], idx)
}

// Delete removes a key, tombstoning its slot so iteration offsets already
// captured by an in-flight iterator stay valid for length comparison.
func (d *DictData) Delete(hash uint64, eq func(value.Value) bool) bool {
	idx, ok := d.find(hash, eq)
	if !ok {
		return false
	}
	d.entries[idx].deleted = true
	d.deletedCount++
	return true
}

// PopItem removes and returns the last live entry (LIFO), per spec.md
// §3.6's "popitem LIFO" contract.
func (d *DictData) PopItem() (value.Value, value.Value, bool) {
	for i := len(d.entries) - 1; i >= 0; i-- {
		if !d.entries[i].deleted {
			e := d.entries[i]
			d.entries[i].deleted = true
			d.deletedCount++
			return e.key, e.value, true
		}
	}
	return value.Value{}, value.Value{}, false
}

// Items returns live entries in insertion order.
func (d *DictData) Items() []struct {
	Key, Value value.Value
} {
	out := make([]struct{ Key, Value value.Value }, 0, d.Len())
	for _, e := range d.entries {
		if e.deleted {
			continue
		}
		out = append(out, struct{ Key, Value value.Value }{e.key, e.value})
	}
	return out
}

// DictIterator is a length-snapshotting iterator over a dict's live
// entries, implementing spec.md §3.6/§8.1.4/§8.3.15's "changed size during
// iteration" RuntimeError contract.
type DictIterator struct {
	d          *DictData
	startLen   int
	pos        int
}

// NewIterator snapshots d's current length and starts an iteration.
func (d *DictData) NewIterator() *DictIterator {
	return &DictIterator{d: d, startLen: d.Len()}
}

// Next returns the next live (key, value) pair, or ok=false at the end.
// Returns a RunError if the dict's length has changed since the iterator
// was created.
func (it *DictIterator) Next() (key, val value.Value, ok bool, err error) {
	if it.d.Len() != it.startLen {
		return value.Value{}, value.Value{}, false, runerr.Exc(runerr.RuntimeError, "dictionary changed size during iteration")
	}
	for it.pos < len(it.d.entries) {
		e := it.d.entries[it.pos]
		it.pos++
		if e.deleted {
			continue
		}
		return e.key, e.value, true, nil
	}
	return value.Value{}, value.Value{}, false, nil
}

// SetWeakKey marks d as a weak-key dict (spec.md §3.6).
func (d *DictData) SetWeakKey() { d.weakKey = true }

// IsWeakKey reports weak-key mode.
func (d *DictData) IsWeakKey() bool { return d.weakKey }
