package heap

import (
	"strings"

	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/value"
)

// ListData backs DataList: a mutable Python list.
type ListData struct {
	Items        []value.Value
	containsRefs bool
}

// Append pushes v onto the list, transferring ownership of v (caller must
// not also decref it) and flipping containsRefs if v is the first Ref
// ever stored (spec.md §3.5/§9 monotone flag).
func (l *ListData) Append(v value.Value) {
	l.Items = append(l.Items, v)
	if v.IsRef() {
		l.containsRefs = true
	}
}

// TupleData backs DataTuple: an immutable Python tuple.
type TupleData struct {
	Items        []value.Value
	containsRefs bool
}

// NewTuple builds an immutable tuple HeapData, computing containsRefs
// once at construction since tuples never mutate afterward.
func NewTuple(items []value.Value) HeapData {
	cr := false
	for _, v := range items {
		if v.IsRef() {
			cr = true
			break
		}
	}
	return HeapData{Kind: DataTuple, Payload: &TupleData{Items: items, containsRefs: cr}}
}

// NamedTupleData backs DataNamedTuple: a tuple with named fields,
// additionally attribute-addressable by field name (e.g. os.stat_result).
type NamedTupleData struct {
	TypeName   string
	FieldNames []intern.StringId
	Items      []value.Value
}

// FieldIndex returns the position of a field name, or -1.
func (n *NamedTupleData) FieldIndex(name intern.StringId) int {
	for i, f := range n.FieldNames {
		if f == name {
			return i
		}
	}
	return -1
}

// RangeData backs DataRange: Python's range(), stored as start/stop/step
// rather than materialized.
type RangeData struct {
	Start, Stop, Step int64
}

func (r *RangeData) len() int {
	if r.Step == 0 {
		return 0
	}
	if r.Step > 0 {
		if r.Stop <= r.Start {
			return 0
		}
		return int((r.Stop - r.Start + r.Step - 1) / r.Step)
	}
	if r.Stop >= r.Start {
		return 0
	}
	return int((r.Start - r.Stop - r.Step - 1) / (-r.Step))
}

func reprDict(h *Heap, id value.HeapId, d *DictData, w *strings.Builder, vis *VisitedSet) {
	if !vis.Enter(id) {
		w.WriteString("{...}")
		return
	}
	defer vis.Leave(id)
	w.WriteString("{")
	first := true
	for _, e := range d.entries {
		if e.deleted {
			continue
		}
		if !first {
			w.WriteString(", ")
		}
		first = false
		writeValueRepr(h, e.key, w, vis)
		w.WriteString(": ")
		writeValueRepr(h, e.value, w, vis)
	}
	w.WriteString("}")
}

func reprSet(h *Heap, id value.HeapId, ordered []value.Value, open, close string, w *strings.Builder, vis *VisitedSet) {
	if !vis.Enter(id) {
		w.WriteString("...")
		return
	}
	defer vis.Leave(id)
	if len(ordered) == 0 {
		w.WriteString("set()")
		return
	}
	w.WriteString(open)
	for i, v := range ordered {
		if i > 0 {
			w.WriteString(", ")
		}
		writeValueRepr(h, v, w, vis)
	}
	w.WriteString(close)
}
