package attr

import (
	"github.com/corvidlang/corvid/internal/heap"
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/value"
)

// StoreAttr implements store_attr(obj, name, value) (spec.md §4.3
// "Store/delete with setter/deleter").
func (d *Dispatcher) StoreAttr(obj value.Value, name intern.StringId, v value.Value) (Result, error) {
	if obj.Kind == value.KindProxy {
		return Result{Kind: KindProxy, ProxyID: obj.Tag, ProxyMethod: name, ProxyArgs: []value.Value{v}}, nil
	}
	if obj.Kind != value.KindRef {
		return Result{}, d.instanceAttributeError(d.typeName(obj), name)
	}
	data, ok := d.Heap.Get(obj.Ref)
	if !ok {
		return Result{}, internalErrf("store_attr on a dead heap id")
	}
	switch data.Kind {
	case heap.DataInstance:
		return d.storeAttrInstance(obj, data.Payload.(*heap.InstanceData), name, v)
	case heap.DataClassObject:
		return d.storeAttrClass(obj, data.Payload.(*heap.ClassObjectData), name, v)
	default:
		return Result{}, d.instanceAttributeError(heap.TypeName(data), name)
	}
}

func (d *Dispatcher) storeAttrInstance(obj value.Value, inst *heap.InstanceData, name intern.StringId, v value.Value) (Result, error) {
	cls, ok := d.classOf(inst.Class)
	if !ok {
		return Result{}, internalErrf("instance references a dead class")
	}
	typeName := d.name(cls.Name)

	setattrName := d.Strings.Intern("__setattr__")
	if setattr, found := d.findDunder(cls.MRO, setattrName); found {
		return framePushed(setattr, []value.Value{obj, value.InternString(name), v}, Pending{Kind: PendingDiscardReturn}), nil
	}

	if candidate, _, found := d.lookupMRO(cls.MRO, name); found {
		if slotDesc, ok := d.asSlotDescriptor(candidate); ok {
			if err := d.writeSlot(inst, typeName, slotDesc, v); err != nil {
				return Result{}, err
			}
			return push(value.None), nil
		}
		if candidate.Kind == value.KindRef {
			if cdata, ok := d.Heap.Get(candidate.Ref); ok {
				switch cdata.Kind {
				case heap.DataUserProperty:
					prop := cdata.Payload.(*heap.UserPropertyData)
					if prop.Setter.Kind == value.KindNone {
						return Result{}, d.readOnlyPropertyError()
					}
					return framePushed(prop.Setter, []value.Value{obj, v}, Pending{Kind: PendingDiscardReturn}), nil
				case heap.DataInstance:
					descInst := cdata.Payload.(*heap.InstanceData)
					descCls, ok := d.classOf(descInst.Class)
					if ok {
						if setFn, ok := d.findDunder(descCls.MRO, d.Strings.Intern("__set__")); ok {
							return framePushed(setFn, []value.Value{candidate, obj, v}, Pending{Kind: PendingDiscardReturn}), nil
						}
					}
				}
			}
		}
	}

	if inst.AttrsDict == (value.HeapId{}) {
		return Result{}, d.instanceAttributeError(typeName, name)
	}
	if v.IsRef() {
		d.Heap.IncRef(v.Ref)
	}
	if old, existed := d.Heap.LookupName(inst.AttrsDict, name); existed {
		d.Heap.DecRefValue(old)
	}
	d.Heap.SetName(inst.AttrsDict, name, v)
	return push(value.None), nil
}

func (d *Dispatcher) storeAttrClass(obj value.Value, cls *heap.ClassObjectData, name intern.StringId, v value.Value) (Result, error) {
	metaMRO := d.metaclassMRO(cls)

	setattrName := d.Strings.Intern("__setattr__")
	if setattr, found := d.findDunder(metaMRO, setattrName); found {
		return framePushed(setattr, []value.Value{obj, value.InternString(name), v}, Pending{Kind: PendingDiscardReturn}), nil
	}

	if candidate, _, found := d.lookupMRO(metaMRO, name); found && d.isDataDescriptor(candidate) {
		if cdata, ok := d.Heap.Get(candidate.Ref); ok {
			if cdata.Kind == heap.DataUserProperty {
				prop := cdata.Payload.(*heap.UserPropertyData)
				if prop.Setter.Kind == value.KindNone {
					return Result{}, d.readOnlyPropertyError()
				}
				return framePushed(prop.Setter, []value.Value{obj, v}, Pending{Kind: PendingDiscardReturn}), nil
			}
		}
	}

	if v.IsRef() {
		d.Heap.IncRef(v.Ref)
	}
	if old, existed := d.Heap.LookupName(cls.Namespace, name); existed {
		d.Heap.DecRefValue(old)
	}
	d.Heap.SetName(cls.Namespace, name, v)
	return push(value.None), nil
}
