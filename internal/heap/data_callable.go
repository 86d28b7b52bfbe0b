package heap

import (
	"github.com/corvidlang/corvid/internal/bytecode"
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/value"
)

// ClosureData backs DataClosure: a user-defined function together with
// its captured free variables and default-argument values.
type ClosureData struct {
	Name      intern.StringId
	Code      *bytecode.Code
	FreeVars  []value.Value
	Defaults  []value.Value
	KwDefault map[intern.StringId]value.Value
}

// BoundMethodData backs DataBoundMethod: a function bound to a `self`.
type BoundMethodData struct {
	Self value.Value
	Func value.Value
}

// StaticMethodData backs DataStaticMethod: a @staticmethod wrapper, which
// unwraps to its inner function for both class- and instance-level access
// (spec.md §4.3.4).
type StaticMethodData struct {
	Func value.Value
}

// ClassMethodData backs DataClassMethod: a @classmethod wrapper, which
// binds the owning class (not the instance) as the first argument.
type ClassMethodData struct {
	Func value.Value
}

// PartialData backs DataPartial: functools.partial(func, *args, **kwargs).
type PartialData struct {
	Func    value.Value
	Args    []value.Value
	Kwargs  map[intern.StringId]value.Value
}

// CmpToKeyData backs DataCmpToKey: functools.cmp_to_key(cmp_func).
type CmpToKeyData struct {
	CmpFunc value.Value
}

// SingleDispatchMethodData backs DataSingleDispatchMethod
// (functools.singledispatchmethod): per spec.md §4.3's descriptor-kind
// table, on instance access this returns a partial binding `instance` as
// the first argument of Dispatcher.
type SingleDispatchMethodData struct {
	Dispatcher value.Value
}

// PartialMethodData backs DataPartialMethod (functools.partialmethod):
// per spec.md §4.3, if Func has `__get__`, the descriptor protocol is
// applied and a partial is built on the bound result; otherwise `instance`
// is prepended to Args and a partial is built directly.
type PartialMethodData struct {
	Func   value.Value
	Args   []value.Value
	Kwargs map[intern.StringId]value.Value
}
