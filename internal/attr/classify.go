package attr

import (
	"github.com/corvidlang/corvid/internal/heap"
	"github.com/corvidlang/corvid/internal/value"
)

// isDataDescriptor reports whether candidate is a data descriptor: a class
// attribute whose class defines `__set__` or `__delete__`, which takes
// precedence over instance `__dict__` (spec.md §4.3, GLOSSARY).
func (d *Dispatcher) isDataDescriptor(candidate value.Value) bool {
	if candidate.Kind != value.KindRef {
		return false
	}
	data, ok := d.Heap.Get(candidate.Ref)
	if !ok {
		return false
	}
	switch data.Kind {
	case heap.DataSlotDescriptor:
		// Auto-generated `__slots__` members always support direct write
		// (or rejection for `__weakref__`), so they're always data
		// descriptors, matching CPython's member_descriptor.
		return true
	case heap.DataUserProperty:
		// `property` always defines `__set__`/`__delete__` at the type
		// level even when fset/fdel are absent (they then raise
		// AttributeError internally rather than not existing).
		return true
	case heap.DataInstance:
		inst := data.Payload.(*heap.InstanceData)
		cls, ok := d.classOf(inst.Class)
		if !ok {
			return false
		}
		_, hasSet := d.findDunder(cls.MRO, d.Strings.Intern("__set__"))
		_, hasDel := d.findDunder(cls.MRO, d.Strings.Intern("__delete__"))
		return hasSet || hasDel
	default:
		return false
	}
}

// hasGet reports whether candidate participates in the descriptor protocol
// at all (a non-data descriptor needs at least `__get__`).
func (d *Dispatcher) hasGet(candidate value.Value) bool {
	if candidate.Kind != value.KindRef {
		return false
	}
	data, ok := d.Heap.Get(candidate.Ref)
	if !ok {
		return false
	}
	switch data.Kind {
	case heap.DataClosure, heap.DataStaticMethod, heap.DataClassMethod,
		heap.DataCachedProperty, heap.DataSingleDispatchMethod,
		heap.DataPartialMethod, heap.DataUserProperty, heap.DataSlotDescriptor:
		return true
	case heap.DataInstance:
		inst := data.Payload.(*heap.InstanceData)
		cls, ok := d.classOf(inst.Class)
		if !ok {
			return false
		}
		_, ok = d.findDunder(cls.MRO, d.Strings.Intern("__get__"))
		return ok
	default:
		return false
	}
}

// bindMethod allocates a BoundMethodData binding self to fn and returns a
// Push of the new Ref, the common "produce a bound callable" tail shared by
// several descriptor kinds below.
func (d *Dispatcher) bindMethod(self, fn value.Value) (Result, error) {
	id, err := d.Heap.Allocate(heap.HeapData{Kind: heap.DataBoundMethod, Payload: &heap.BoundMethodData{Self: self, Func: fn}})
	if err != nil {
		return Result{}, err
	}
	return push(value.Ref(id)), nil
}

// invokeGetDescriptor applies the descriptor protocol's `__get__` step for
// candidate, found in ownerClass's namespace, being read through instance
// (value.None when accessed at the class level). handled=false means
// candidate is a plain value with no `__get__` — return it as-is.
func (d *Dispatcher) invokeGetDescriptor(instance value.Value, ownerClass value.HeapId, candidate value.Value) (res Result, handled bool, err error) {
	if candidate.Kind != value.KindRef {
		return Result{}, false, nil
	}
	data, ok := d.Heap.Get(candidate.Ref)
	if !ok {
		return Result{}, false, nil
	}
	switch data.Kind {
	case heap.DataUserProperty:
		prop := data.Payload.(*heap.UserPropertyData)
		if prop.Getter.Kind == value.KindNone {
			return Result{}, true, unreadableAttributeErr
		}
		return framePushed(prop.Getter, []value.Value{instance}, Pending{Kind: PendingPlain}), true, nil
	case heap.DataClosure, heap.DataBoundMethod:
		if instance.Kind == value.KindNone {
			// Class-level access: unbound function, returned as-is.
			return push(candidate), true, nil
		}
		r, err := d.bindMethod(instance, candidate)
		return r, true, err
	case heap.DataStaticMethod:
		sm := data.Payload.(*heap.StaticMethodData)
		return push(sm.Func), true, nil
	case heap.DataClassMethod:
		cm := data.Payload.(*heap.ClassMethodData)
		r, err := d.bindMethod(value.Ref(ownerClass), cm.Func)
		return r, true, err
	case heap.DataSingleDispatchMethod:
		sdm := data.Payload.(*heap.SingleDispatchMethodData)
		id, perr := d.Heap.Allocate(heap.HeapData{Kind: heap.DataPartial, Payload: &heap.PartialData{
			Func: sdm.Dispatcher,
			Args: []value.Value{instance},
		}})
		if perr != nil {
			return Result{}, true, perr
		}
		return push(value.Ref(id)), true, nil
	case heap.DataPartialMethod:
		pm := data.Payload.(*heap.PartialMethodData)
		if d.hasGet(pm.Func) {
			bound, _, berr := d.invokeGetDescriptor(instance, ownerClass, pm.Func)
			if berr != nil {
				return Result{}, true, berr
			}
			// bound is necessarily an immediate Push here: every
			// descriptor kind reachable from a PartialMethodData's Func
			// (plain functions, classmethods, staticmethods) resolves
			// synchronously rather than scheduling a frame.
			id, perr := d.Heap.Allocate(heap.HeapData{Kind: heap.DataPartial, Payload: &heap.PartialData{
				Func: bound.Value, Args: pm.Args, Kwargs: pm.Kwargs,
			}})
			if perr != nil {
				return Result{}, true, perr
			}
			return push(value.Ref(id)), true, nil
		}
		args := append([]value.Value{instance}, pm.Args...)
		id, perr := d.Heap.Allocate(heap.HeapData{Kind: heap.DataPartial, Payload: &heap.PartialData{
			Func: pm.Func, Args: args, Kwargs: pm.Kwargs,
		}})
		if perr != nil {
			return Result{}, true, perr
		}
		return push(value.Ref(id)), true, nil
	case heap.DataInstance:
		inst := data.Payload.(*heap.InstanceData)
		cls, ok := d.classOf(inst.Class)
		if !ok {
			return Result{}, false, nil
		}
		getFn, ok := d.findDunder(cls.MRO, d.Strings.Intern("__get__"))
		if !ok {
			return Result{}, false, nil
		}
		return framePushed(getFn, []value.Value{candidate, instance, value.Ref(ownerClass)}, Pending{Kind: PendingPlain}), true, nil
	case heap.DataCachedProperty:
		cp := data.Payload.(*heap.CachedPropertyData)
		if instance.Kind != value.KindRef {
			// Class-level access (`Cls.prop`): CPython returns the
			// descriptor object itself.
			return push(candidate), true, nil
		}
		instData, ok := d.Heap.Get(instance.Ref)
		if !ok || instData.Kind != heap.DataInstance {
			return Result{}, false, nil
		}
		targetInst := instData.Payload.(*heap.InstanceData)
		if targetInst.AttrsDict == (value.HeapId{}) {
			return Result{}, true, typeErrorCachedPropertyNoDict(d.typeName(instance), d.name(cp.Name))
		}
		if cached, found := d.Heap.LookupName(targetInst.AttrsDict, cp.Name); found {
			return push(cached), true, nil
		}
		return framePushed(cp.Func, []value.Value{instance}, Pending{
			Kind: PendingCachedProperty, InstanceID: instance.Ref, Name: cp.Name,
		}), true, nil
	default:
		return Result{}, false, nil
	}
}

