package attr

import (
	"github.com/corvidlang/corvid/internal/heap"
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/value"
)

// DeleteAttr implements delete_attr(obj, name): symmetrical with
// `__delattr__`, descriptor `__delete__`, and `UserProperty.fdel`
// (spec.md §4.3).
func (d *Dispatcher) DeleteAttr(obj value.Value, name intern.StringId) (Result, error) {
	if obj.Kind == value.KindProxy {
		return Result{Kind: KindProxy, ProxyID: obj.Tag, ProxyMethod: name}, nil
	}
	if obj.Kind != value.KindRef {
		return Result{}, d.instanceAttributeError(d.typeName(obj), name)
	}
	data, ok := d.Heap.Get(obj.Ref)
	if !ok {
		return Result{}, internalErrf("delete_attr on a dead heap id")
	}
	switch data.Kind {
	case heap.DataInstance:
		return d.deleteAttrInstance(obj, data.Payload.(*heap.InstanceData), name)
	case heap.DataClassObject:
		return d.deleteAttrClass(obj, data.Payload.(*heap.ClassObjectData), name)
	default:
		return Result{}, d.instanceAttributeError(heap.TypeName(data), name)
	}
}

func (d *Dispatcher) deleteAttrInstance(obj value.Value, inst *heap.InstanceData, name intern.StringId) (Result, error) {
	cls, ok := d.classOf(inst.Class)
	if !ok {
		return Result{}, internalErrf("instance references a dead class")
	}
	typeName := d.name(cls.Name)

	if delattr, found := d.findDunder(cls.MRO, d.Strings.Intern("__delattr__")); found {
		return framePushed(delattr, []value.Value{obj, value.InternString(name)}, Pending{Kind: PendingDiscardReturn}), nil
	}

	if candidate, _, found := d.lookupMRO(cls.MRO, name); found {
		if slotDesc, ok := d.asSlotDescriptor(candidate); ok {
			if err := d.deleteSlot(inst, typeName, slotDesc); err != nil {
				return Result{}, err
			}
			return push(value.None), nil
		}
		if candidate.Kind == value.KindRef {
			if cdata, ok := d.Heap.Get(candidate.Ref); ok {
				switch cdata.Kind {
				case heap.DataUserProperty:
					prop := cdata.Payload.(*heap.UserPropertyData)
					if prop.Deleter.Kind == value.KindNone {
						return Result{}, d.noDeleterError()
					}
					return framePushed(prop.Deleter, []value.Value{obj}, Pending{Kind: PendingDiscardReturn}), nil
				case heap.DataInstance:
					descInst := cdata.Payload.(*heap.InstanceData)
					descCls, ok := d.classOf(descInst.Class)
					if ok {
						if delFn, ok := d.findDunder(descCls.MRO, d.Strings.Intern("__delete__")); ok {
							return framePushed(delFn, []value.Value{candidate, obj}, Pending{Kind: PendingDiscardReturn}), nil
						}
					}
				}
			}
		}
	}

	if inst.AttrsDict != (value.HeapId{}) {
		if old, existed := d.Heap.LookupName(inst.AttrsDict, name); existed {
			d.Heap.DeleteName(inst.AttrsDict, name)
			d.Heap.DecRefValue(old)
			return push(value.None), nil
		}
	}
	return Result{}, d.instanceAttributeError(typeName, name)
}

func (d *Dispatcher) deleteAttrClass(obj value.Value, cls *heap.ClassObjectData, name intern.StringId) (Result, error) {
	metaMRO := d.metaclassMRO(cls)

	if delattr, found := d.findDunder(metaMRO, d.Strings.Intern("__delattr__")); found {
		return framePushed(delattr, []value.Value{obj, value.InternString(name)}, Pending{Kind: PendingDiscardReturn}), nil
	}

	if old, existed := d.Heap.LookupName(cls.Namespace, name); existed {
		d.Heap.DeleteName(cls.Namespace, name)
		d.Heap.DecRefValue(old)
		return push(value.None), nil
	}
	return Result{}, d.classAttributeError(d.name(cls.Name), name)
}
