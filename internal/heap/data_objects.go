package heap

import "github.com/corvidlang/corvid/internal/value"

// ModuleData backs DataModule: a loaded module's namespace dict plus its
// dotted name, mirroring CPython's `ModuleType` minimally — this core
// treats module loading/import resolution as the external parser's
// concern (spec.md §1) and only stores the resulting namespace.
type ModuleData struct {
	Name      string
	Namespace value.HeapId // always a DataDict heap slot
}

// ExceptionData backs DataException: a raised-or-constructed exception
// instance. ExcType names which Python exception class this is (mapped
// to internal/runerr.ExcType at the raise/catch boundary); Args holds
// the positional constructor arguments CPython's BaseException stores
// verbatim for `str()`/`repr()` and `.args`.
type ExceptionData struct {
	ExcType string
	Args    []value.Value
	Cause   value.Value
	Context value.Value
}

// PathData backs DataPath (pathlib.Path): the textual path plus the
// platform-separator flag, since pathlib's PurePosixPath/PureWindowsPath
// split governs join/parent/suffix semantics independent of the host OS
// this interpreter core runs on.
type PathData struct {
	Raw      string
	IsWindows bool
}

// HashObjectData backs DataHashObject (spec.md §4.4's Hash Object Core):
// the accumulated-bytes design means this stores the full message seen
// so far rather than a live hasher's internal state, so `copy()` is a
// cheap slice clone and digest/hexdigest can be computed fresh (and
// re-computed after further update() calls) without reaching into a
// library's opaque hasher.
type HashObjectData struct {
	Algorithm  string
	Buffer     []byte
	DigestSize int // -1 for variable-length (SHAKE) algorithms
	BlockSize  int
}
