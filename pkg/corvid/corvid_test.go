package corvid

import (
	"testing"

	"github.com/corvidlang/corvid/internal/heap"
	"github.com/corvidlang/corvid/internal/runerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWiresCoreComponents(t *testing.T) {
	rt := New()
	require.NotNil(t, rt.Heap)
	require.NotNil(t, rt.Strings)
	require.NotNil(t, rt.Attr)
}

func TestMaxHeapSlotsEnforced(t *testing.T) {
	rt := New(WithMaxHeapSlots(1))
	_, err := rt.Heap.Allocate(heap.HeapData{Kind: heap.DataDict, Payload: heap.NewDict()})
	require.NoError(t, err)
	_, err = rt.Heap.Allocate(heap.HeapData{Kind: heap.DataDict, Payload: heap.NewDict()})
	require.Error(t, err)
}

type recordingSink struct{ messages []string }

func (r *recordingSink) LogInternal(msg string) { r.messages = append(r.messages, msg) }

func TestLogSinkReceivesInternalErrors(t *testing.T) {
	sink := &recordingSink{}
	New(WithLogSink(sink))
	defer runerr.SetSink(nil)

	_ = runerr.Internalf("boom")
	assert.Contains(t, sink.messages, "boom")
}

func TestRecoverReturnsErrorByDefault(t *testing.T) {
	rt := New()
	err := rt.Recover("panic value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic value")
}

func TestRecoverRepanicsWhenStrict(t *testing.T) {
	rt := New(WithStrict(true))
	assert.Panics(t, func() {
		rt.Recover("panic value")
	})
}
