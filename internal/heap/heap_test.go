package heap

import (
	"strings"
	"testing"

	"github.com/corvidlang/corvid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRefcountSumInvariant exercises spec.md §8.1.1: releasing the last
// reference to a container recursively drops its children's refcounts too.
func TestRefcountSumInvariant(t *testing.T) {
	h := New(Limits{})

	innerID, err := h.Allocate(HeapData{Kind: DataStr, Payload: &StrData{Value: "inner"}})
	require.NoError(t, err)

	outer := &ListData{}
	outer.Append(value.Ref(innerID))
	outerID, err := h.Allocate(HeapData{Kind: DataList, Payload: outer})
	require.NoError(t, err)

	assert.Equal(t, uint32(1), h.Refcount(innerID))
	assert.Equal(t, uint32(1), h.Refcount(outerID))

	h.DecRefValue(value.Ref(outerID))

	assert.Equal(t, uint32(0), h.Refcount(outerID))
	assert.Equal(t, uint32(0), h.Refcount(innerID))
	assert.Equal(t, 0, h.LiveSlots())
}

// TestSlotReuseBumpsGeneration covers spec.md §5's stale-id detection via
// generation tags (supplemented from object.rs's slot-reuse discipline).
func TestSlotReuseBumpsGeneration(t *testing.T) {
	h := New(Limits{})

	firstID, err := h.Allocate(HeapData{Kind: DataStr, Payload: &StrData{Value: "first"}})
	require.NoError(t, err)
	h.DecRefValue(value.Ref(firstID))

	secondID, err := h.Allocate(HeapData{Kind: DataStr, Payload: &StrData{Value: "second"}})
	require.NoError(t, err)

	assert.Equal(t, firstID.Index(), secondID.Index(), "freed slot should be reused")
	assert.NotEqual(t, firstID.Generation(), secondID.Generation())

	_, ok := h.Get(firstID)
	assert.False(t, ok, "stale id from before reuse must not resolve to the new occupant")

	data, ok := h.Get(secondID)
	require.True(t, ok)
	assert.Equal(t, "second", data.Payload.(*StrData).Value)
}

// TestReprTerminatesOnCycle covers spec.md §8.1.6: a self-referencing list
// must produce a finite repr using the [...] placeholder, not loop forever.
func TestReprTerminatesOnCycle(t *testing.T) {
	h := New(Limits{})

	listID, err := h.Allocate(HeapData{Kind: DataList, Payload: &ListData{}})
	require.NoError(t, err)

	data, _ := h.Get(listID)
	l := data.Payload.(*ListData)
	l.Append(value.Ref(listID)) // self-reference
	l.containsRefs = true

	var w strings.Builder
	ReprWrite(h, listID, data, &w, NewVisitedSet())
	assert.Equal(t, "[[...]]", w.String())
}

// TestDictIterationGuardDetectsSizeChange covers spec.md §8.1.4/§4's
// "dictionary changed size during iteration" RuntimeError.
func TestDictIterationGuardDetectsSizeChange(t *testing.T) {
	d := NewDict()
	d.Set(value.Int(1), 1, func(v value.Value) bool { return v.Kind == value.KindInt && v.Int == 1 }, value.Int(10))
	d.Set(value.Int(2), 2, func(v value.Value) bool { return v.Kind == value.KindInt && v.Int == 2 }, value.Int(20))

	it := d.NewIterator()
	_, _, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)

	d.Set(value.Int(3), 3, func(v value.Value) bool { return v.Kind == value.KindInt && v.Int == 3 }, value.Int(30))

	_, _, _, err = it.Next()
	require.Error(t, err)
	assert.True(t, runErrIsRuntimeError(err))
}

// TestSetIterationGuardDetectsSizeChange mirrors the dict case for sets
// (spec.md §8.3.15).
func TestSetIterationGuardDetectsSizeChange(t *testing.T) {
	s := NewSet()
	s.Add(value.Int(1), 1, func(v value.Value) bool { return v.Kind == value.KindInt && v.Int == 1 })

	it := s.NewIterator()
	_, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)

	s.Add(value.Int(2), 2, func(v value.Value) bool { return v.Kind == value.KindInt && v.Int == 2 })

	_, _, err = it.Next()
	require.Error(t, err)
}

// TestWeakKeyDictPreservesFirstInsertedKey covers spec.md §3.6: re-setting
// an equal-but-distinct key in weak-key mode keeps the original key object.
func TestWeakKeyDictPreservesFirstInsertedKey(t *testing.T) {
	d := NewDict()
	d.SetWeakKey()

	firstKey := value.Int(42)
	eq := func(v value.Value) bool { return v.Kind == value.KindInt && v.Int == 42 }
	d.Set(firstKey, 42, eq, value.Int(1))

	secondKey := value.Int(42) // equal but distinct Go value
	d.Set(secondKey, 42, eq, value.Int(2))

	items := d.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Value.Int, "value updates")
	assert.Equal(t, firstKey, items[0].Key, "key object stays the first-inserted one")
}

// TestListVsSetOrderEquivalence covers spec.md §8.2.10: iterating a set
// directly and converting it with list() must yield the same order.
func TestListVsSetOrderEquivalence(t *testing.T) {
	s := NewSet()
	for i := int64(0); i < 20; i++ {
		v := value.Int(i)
		s.Add(v, uint64(i), func(o value.Value) bool { return o.Kind == value.KindInt && o.Int == i })
	}

	ordered := s.OrderedForRepr()
	viaList := s.Values()

	iterVals := []value.Value{}
	it := s.NewIterator()
	for {
		v, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		iterVals = append(iterVals, v)
	}

	assert.Equal(t, len(ordered), len(viaList))
	assert.Equal(t, viaList, iterVals)
}

func runErrIsRuntimeError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "RuntimeError")
}
