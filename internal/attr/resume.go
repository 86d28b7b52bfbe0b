package attr

import (
	"github.com/corvidlang/corvid/internal/heap"
	"github.com/corvidlang/corvid/internal/runerr"
	"github.com/corvidlang/corvid/internal/value"
)

// Resume completes an attribute operation that scheduled a FramePushed
// call, once the VM has driven that call's frame to completion (spec.md §5
// "pending continuation records"). raised is the RunError the callee
// raised, or nil if it returned normally with returned.
func (d *Dispatcher) Resume(pending Pending, returned value.Value, raised error) (Result, error) {
	switch pending.Kind {
	case PendingPlain:
		if raised != nil {
			return Result{}, raised
		}
		return push(returned), nil

	case PendingDiscardReturn:
		if raised != nil {
			return Result{}, raised
		}
		return push(value.None), nil

	case PendingCachedProperty:
		if raised != nil {
			return Result{}, raised
		}
		data, ok := d.Heap.Get(pending.InstanceID)
		if !ok || data.Kind != heap.DataInstance {
			return Result{}, internalErrf("cached_property target instance no longer live")
		}
		inst := data.Payload.(*heap.InstanceData)
		if returned.IsRef() {
			d.Heap.IncRef(returned.Ref)
		}
		d.Heap.SetName(inst.AttrsDict, pending.Name, returned)
		return push(returned), nil

	case PendingGetattrFallback:
		if raised == nil {
			return push(returned), nil
		}
		if !runerr.IsExc(raised, runerr.AttributeError) {
			return Result{}, raised
		}
		return d.resumeGetattrFallback(pending, raised)

	default:
		return Result{}, internalErrf("Resume called with no pending continuation")
	}
}

// resumeGetattrFallback invokes `__getattr__(name)` on pending.Obj after its
// `__getattribute__` (or default lookup) raised AttributeError, per spec.md
// §4.3 steps 2/5f. If no `__getattr__` is defined, the original
// AttributeError propagates unchanged.
func (d *Dispatcher) resumeGetattrFallback(pending Pending, original error) (Result, error) {
	obj := pending.Obj
	if obj.Kind != value.KindRef {
		return Result{}, original
	}
	data, ok := d.Heap.Get(obj.Ref)
	if !ok {
		return Result{}, original
	}

	var mro []value.HeapId
	switch data.Kind {
	case heap.DataInstance:
		cls, ok := d.classOf(data.Payload.(*heap.InstanceData).Class)
		if !ok {
			return Result{}, original
		}
		mro = cls.MRO
	case heap.DataClassObject:
		mro = d.metaclassMRO(data.Payload.(*heap.ClassObjectData))
	default:
		return Result{}, original
	}

	getattr, found := d.findDunder(mro, d.Strings.Intern("__getattr__"))
	if !found {
		return Result{}, original
	}
	return framePushed(getattr, []value.Value{obj, value.InternString(pending.Name)}, Pending{Kind: PendingPlain}), nil
}
