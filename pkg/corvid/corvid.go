// Package corvid is the embedding surface for the core's heap, string
// tables, and attribute dispatcher (spec.md §1's "external collaborators"
// boundary, from the host's side): a single entry point a VM-loop
// implementation constructs once per isolated runtime instance. Grounded
// on pkg/rage.State's functional-option construction
// (NewStateWithModules(opts ...StateOption)), adapted from a full
// Python-execution state to the smaller embeddable unit this core
// actually owns — heap, interning tables, and the attribute dispatcher —
// since compilation, the VM loop, and stdlib modules are this core's own
// external collaborators, not bundled here.
package corvid

import (
	"github.com/corvidlang/corvid/internal/attr"
	"github.com/corvidlang/corvid/internal/heap"
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/runerr"
)

// Config holds resource limits and diagnostic options a host supplies at
// construction (spec.md §5's "external resource tracker" consulted on
// every allocation; SPEC_FULL.md §A.3).
type Config struct {
	// MaxHeapSlots bounds heap.Allocate; 0 means unbounded.
	MaxHeapSlots int
	// Strict makes Recover re-panic after recording an Internal error,
	// rather than returning it, so invariant violations fail loudly during
	// this project's own test suite instead of silently degrading
	// (SPEC_FULL.md §A.3).
	Strict bool
	// Log receives every Internal error this Runtime's operations
	// construct, via runerr.SetSink. Nil leaves the package's no-op
	// default in place.
	Log runerr.InternalSink
}

// Option configures a Config, following the functional-options idiom of
// pkg/rage.StateOption.
type Option func(*Config)

// WithMaxHeapSlots bounds the Runtime's heap to n live slots.
func WithMaxHeapSlots(n int) Option {
	return func(c *Config) { c.MaxHeapSlots = n }
}

// WithStrict enables re-panicking on Internal errors recovered via
// Runtime.Recover, for test builds that want invariant violations to fail
// loudly.
func WithStrict(strict bool) Option {
	return func(c *Config) { c.Strict = strict }
}

// WithLogSink installs sink as the destination for Internal-error
// diagnostics (see internal/runtimelog for a rotated-file implementation).
func WithLogSink(sink runerr.InternalSink) Option {
	return func(c *Config) { c.Log = sink }
}

// Runtime bundles one instance's heap, string tables, and attribute
// dispatcher — the unit spec.md §5 describes as exclusively owned, with
// "no concurrent access... possible by construction". A host embeds one
// Runtime per isolated interpreter instance.
type Runtime struct {
	Config  Config
	Heap    *heap.Heap
	Strings *intern.Tables
	Attr    *attr.Dispatcher
}

// New constructs a Runtime under opts.
func New(opts ...Option) *Runtime {
	cfg := Config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Log != nil {
		runerr.SetSink(cfg.Log)
	}
	h := heap.New(heap.Limits{MaxSlots: cfg.MaxHeapSlots})
	strings := intern.NewTables()
	return &Runtime{
		Config:  cfg,
		Heap:    h,
		Strings: strings,
		Attr:    attr.New(h, strings),
	}
}

// Recover converts a recovered panic into a RunError (spec.md §7:
// "errors never unwind past the core/host boundary as a native panic"),
// re-panicking instead when Config.Strict is set.
func (r *Runtime) Recover(recovered any) error {
	err := runerr.FromPanic(recovered)
	if r.Config.Strict {
		panic(err)
	}
	return err
}
