package attr

import (
	"github.com/corvidlang/corvid/internal/heap"
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/value"
)

// slotName resolves the declared name for a member SlotDescriptor, read
// back out of its owning class's flattened slot layout (the descriptor
// itself only stores the index, spec.md §3.7).
func (d *Dispatcher) slotName(desc *heap.SlotDescriptorData) intern.StringId {
	cls, ok := d.classOf(desc.OwnerClass)
	if !ok || desc.SlotIndex < 0 || desc.SlotIndex >= len(cls.SlotLayout) {
		return 0
	}
	return cls.SlotLayout[desc.SlotIndex]
}

// readSlot implements the SlotDescriptor load path of spec.md §4.3's
// descriptor-kind table: direct read of slot storage, `__dict__` id, or
// first live weakref.
func (d *Dispatcher) readSlot(inst *heap.InstanceData, instTypeName string, desc *heap.SlotDescriptorData) (Result, error) {
	switch desc.Kind {
	case heap.SlotMember:
		v := inst.Slots[desc.SlotIndex]
		if v.IsUndefined() {
			return Result{}, d.instanceAttributeError(instTypeName, d.slotName(desc))
		}
		return push(v), nil
	case heap.SlotDictMember:
		if inst.AttrsDict == (value.HeapId{}) {
			return push(value.None), nil
		}
		return push(value.Ref(inst.AttrsDict)), nil
	case heap.SlotWeakrefMember:
		for _, wrID := range inst.WeakRefs {
			if _, ok := d.Heap.GetIfLive(wrID); ok {
				return push(value.Ref(wrID)), nil
			}
		}
		return push(value.None), nil
	default:
		return Result{}, internalErrf("unknown slot descriptor kind")
	}
}

// writeSlot implements the SlotDescriptor store path: direct write, with
// type validation for `__dict__` and outright rejection for `__weakref__`.
func (d *Dispatcher) writeSlot(inst *heap.InstanceData, instTypeName string, desc *heap.SlotDescriptorData, v value.Value) error {
	switch desc.Kind {
	case heap.SlotMember:
		old := inst.Slots[desc.SlotIndex]
		if v.IsRef() {
			d.Heap.IncRef(v.Ref)
		}
		inst.Slots[desc.SlotIndex] = v
		d.Heap.DecRefValue(old)
		return nil
	case heap.SlotDictMember:
		if v.Kind != value.KindRef {
			return d.dictMustBeDictError(d.typeName(v))
		}
		data, ok := d.Heap.Get(v.Ref)
		if !ok || data.Kind != heap.DataDict {
			return d.dictMustBeDictError(d.typeName(v))
		}
		old := inst.AttrsDict
		d.Heap.IncRef(v.Ref)
		inst.AttrsDict = v.Ref
		if old != (value.HeapId{}) {
			d.Heap.DecRefValue(value.Ref(old))
		}
		return nil
	case heap.SlotWeakrefMember:
		return d.weakrefNotWritableError(instTypeName)
	default:
		return internalErrf("unknown slot descriptor kind")
	}
}

// deleteSlot implements the SlotDescriptor delete path: clear back to
// Undefined, reset `__dict__` to a fresh empty dict, or reject
// `__weakref__`.
func (d *Dispatcher) deleteSlot(inst *heap.InstanceData, instTypeName string, desc *heap.SlotDescriptorData) error {
	switch desc.Kind {
	case heap.SlotMember:
		old := inst.Slots[desc.SlotIndex]
		if old.IsUndefined() {
			return d.instanceAttributeError(instTypeName, d.slotName(desc))
		}
		inst.Slots[desc.SlotIndex] = value.Undefined
		d.Heap.DecRefValue(old)
		return nil
	case heap.SlotDictMember:
		newID, err := d.Heap.Allocate(heap.HeapData{Kind: heap.DataDict, Payload: heap.NewDict()})
		if err != nil {
			return err
		}
		old := inst.AttrsDict
		inst.AttrsDict = newID
		if old != (value.HeapId{}) {
			d.Heap.DecRefValue(value.Ref(old))
		}
		return nil
	case heap.SlotWeakrefMember:
		return d.weakrefNotWritableError(instTypeName)
	default:
		return internalErrf("unknown slot descriptor kind")
	}
}
