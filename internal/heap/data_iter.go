package heap

import "github.com/corvidlang/corvid/internal/value"

// IterData backs DataIter: the generic iterator object most builtin
// iterables (list_iterator, dict_keyiterator, ...) return from
// `__iter__`. Source is the iterable being walked; Pos/Done track
// progress for the sequence-backed case, mirroring CPython's lightweight
// index-cursor iterator objects rather than a full coroutine frame.
type IterData struct {
	Source value.Value
	Pos    int
	Done   bool
}

// TeeData backs DataTee (itertools.tee): one of the N independent
// cursors tee() hands back, each walking the same underlying iterator
// at its own pace. Buffer holds items the underlying source has already
// produced but this cursor hasn't consumed yet; Source is the shared
// upstream iterator value all tee cursors pull from.
type TeeData struct {
	Source value.Value
	Buffer []value.Value
	Pos    int
}

// GeneratorData backs DataGenerator: a suspended generator frame plus
// its lifecycle flags. Frame is opaque to this package (owned by the
// frame/VM layer, spec.md §1's external collaborator boundary); this
// struct only carries the bookkeeping the heap needs for refcounting and
// repr.
type GeneratorData struct {
	Frame     value.Value
	Name      string
	Started   bool
	Finished  bool
	// SentValue is the value a pending `.send(v)` delivers to the next
	// resume; cleared once consumed.
	SentValue value.Value
}

// CoroutineData backs DataCoroutine: an `async def` frame, structurally
// identical bookkeeping to GeneratorData but kept as a distinct variant
// since coroutines reject the generator-only protocol methods
// (`__next__` on a bare coroutine is a TypeError in CPython).
type CoroutineData struct {
	Frame    value.Value
	Name     string
	Started  bool
	Finished bool
}

// GatherFutureData backs DataGatherFuture (asyncio.gather(...)): the set
// of child awaitables being driven to completion together, plus the
// collected results in child order once every child has resolved.
type GatherFutureData struct {
	Children []value.Value
	Results  []value.Value
	Done     bool
}
