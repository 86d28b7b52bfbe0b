package attr

import (
	"github.com/corvidlang/corvid/internal/heap"
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/value"
)

// LoadAttr implements load_attr(obj, name): spec.md §4.3's full lookup
// order across proxies, `__getattribute__`/`__getattr__` overrides,
// metaclass dispatch, and the instance/class default paths.
func (d *Dispatcher) LoadAttr(obj value.Value, name intern.StringId) (Result, error) {
	// 1. Proxy short-circuit.
	if obj.Kind == value.KindProxy {
		return Result{Kind: KindProxy, ProxyID: obj.Tag, ProxyMethod: name}, nil
	}

	if obj.Kind != value.KindRef {
		return d.loadAttrImmediate(obj, name)
	}

	data, ok := d.Heap.Get(obj.Ref)
	if !ok {
		return Result{}, internalErrf("load_attr on a dead heap id")
	}

	switch data.Kind {
	case heap.DataClassObject:
		return d.loadAttrClass(obj, data.Payload.(*heap.ClassObjectData), name)
	case heap.DataInstance:
		return d.loadAttrInstance(obj, data.Payload.(*heap.InstanceData), name)
	default:
		return d.loadAttrBuiltinHeapValue(obj, data, name)
	}
}

// loadAttrImmediate covers attribute access on an immediate (non-Ref)
// value: None/bool/int/float/interned str/bytes have no user-level
// override protocol in this core (spec.md §1 treats their method-table
// surface as an external stdlib/builtin concern), so any access not
// satisfied by a caller-supplied builtin table is an AttributeError.
func (d *Dispatcher) loadAttrImmediate(obj value.Value, name intern.StringId) (Result, error) {
	return Result{}, d.instanceAttributeError(d.typeName(obj), name)
}

// loadAttrBuiltinHeapValue covers heap variants that aren't user classes or
// instances (str/list/dict/... builtin containers): their method surfaces
// are exposed through the VM's builtin dispatch table, outside this core's
// scope, so a plain AttributeError is the right closed-form answer here.
func (d *Dispatcher) loadAttrBuiltinHeapValue(obj value.Value, data heap.HeapData, name intern.StringId) (Result, error) {
	return Result{}, d.instanceAttributeError(heap.TypeName(data), name)
}

// loadAttrInstance implements spec.md §4.3 step 2 + step 5 (the instance
// default path).
func (d *Dispatcher) loadAttrInstance(obj value.Value, inst *heap.InstanceData, name intern.StringId) (Result, error) {
	cls, ok := d.classOf(inst.Class)
	if !ok {
		return Result{}, internalErrf("instance references a dead class")
	}

	// Step 2: `__getattribute__` override.
	getattributeName := d.Strings.Intern("__getattribute__")
	if getattribute, found := d.findDunder(cls.MRO, getattributeName); found && name != getattributeName {
		return framePushed(getattribute, []value.Value{obj, value.InternString(name)}, Pending{
			Kind: PendingGetattrFallback, Obj: obj, Name: name,
		}), nil
	}

	return d.defaultInstanceLoad(obj, inst, cls, name)
}

// defaultInstanceLoad is spec.md §4.3 step 5's instance default path,
// invoked directly when there is no `__getattribute__` override.
func (d *Dispatcher) defaultInstanceLoad(obj value.Value, inst *heap.InstanceData, cls *heap.ClassObjectData, name intern.StringId) (Result, error) {
	typeName := d.name(cls.Name)

	candidate, ownerClass, found := d.lookupMRO(cls.MRO, name)

	if found {
		if slotDesc, ok := d.asSlotDescriptor(candidate); ok {
			return d.readSlot(inst, typeName, slotDesc)
		}
		if d.isDataDescriptor(candidate) {
			res, handled, err := d.invokeGetDescriptor(obj, ownerClass, candidate)
			if handled {
				return res, err
			}
		}
	}

	// 5c: consult the instance's own `__dict__`.
	if inst.AttrsDict != (value.HeapId{}) {
		if v, ok := d.Heap.LookupName(inst.AttrsDict, name); ok {
			return push(v), nil
		}
	}

	if found {
		if d.hasGet(candidate) {
			res, handled, err := d.invokeGetDescriptor(obj, ownerClass, candidate)
			if handled {
				return res, err
			}
		}
		return push(candidate), nil
	}

	// 5f: AttributeError, with `__getattr__` fallback.
	getattrName := d.Strings.Intern("__getattr__")
	if getattr, ok := d.findDunder(cls.MRO, getattrName); ok {
		return framePushed(getattr, []value.Value{obj, value.InternString(name)}, Pending{Kind: PendingPlain}), nil
	}
	return Result{}, d.instanceAttributeError(typeName, name)
}

func (d *Dispatcher) asSlotDescriptor(candidate value.Value) (*heap.SlotDescriptorData, bool) {
	if candidate.Kind != value.KindRef {
		return nil, false
	}
	data, ok := d.Heap.Get(candidate.Ref)
	if !ok || data.Kind != heap.DataSlotDescriptor {
		return nil, false
	}
	return data.Payload.(*heap.SlotDescriptorData), true
}

// loadAttrClass implements spec.md §4.3 step 3 + step 4 (metaclass
// `__getattribute__` override and the class-object default path).
func (d *Dispatcher) loadAttrClass(obj value.Value, cls *heap.ClassObjectData, name intern.StringId) (Result, error) {
	metaMRO := d.metaclassMRO(cls)

	getattributeName := d.Strings.Intern("__getattribute__")
	if getattribute, found := d.findDunder(metaMRO, getattributeName); found {
		return framePushed(getattribute, []value.Value{obj, value.InternString(name)}, Pending{
			Kind: PendingGetattrFallback, Obj: obj, Name: name,
		}), nil
	}

	return d.defaultClassLoad(obj, cls, metaMRO, name)
}

func (d *Dispatcher) defaultClassLoad(obj value.Value, cls *heap.ClassObjectData, metaMRO []value.HeapId, name intern.StringId) (Result, error) {
	// 4a: metaclass MRO search, data descriptor takes precedence.
	metaCandidate, metaOwner, metaFound := d.lookupMRO(metaMRO, name)
	if metaFound && d.isDataDescriptor(metaCandidate) {
		res, handled, err := d.invokeGetDescriptor(obj, metaOwner, metaCandidate)
		if handled {
			return res, err
		}
	}

	// 4b: the class's own MRO (own namespace chain).
	if candidate, ownerClass, found := d.lookupMRO(cls.MRO, name); found {
		res, handled, err := d.invokeGetDescriptor(value.None, ownerClass, candidate)
		if handled {
			return res, err
		}
		return push(candidate), nil
	}

	// 4c: non-data descriptor or plain value from the metaclass search.
	if metaFound {
		res, handled, err := d.invokeGetDescriptor(obj, metaOwner, metaCandidate)
		if handled {
			return res, err
		}
		return push(metaCandidate), nil
	}

	// 4d: `__new__` default fallback.
	if name == d.Strings.Intern("__new__") {
		return push(value.Builtin(BuiltinDefaultNew)), nil
	}

	// 4e: AttributeError, optionally via the metaclass's `__getattr__`.
	getattrName := d.Strings.Intern("__getattr__")
	if getattr, ok := d.findDunder(metaMRO, getattrName); ok {
		return framePushed(getattr, []value.Value{obj, value.InternString(name)}, Pending{Kind: PendingPlain}), nil
	}
	return Result{}, d.classAttributeError(d.name(cls.Name), name)
}

// BuiltinDefaultNew is the Builtin tag representing `object.__new__`,
// returned by the class-object default path when nothing in the MRO
// supplies its own `__new__` (spec.md §4.3 step 4d). The concrete
// allocation behavior behind this tag belongs to the VM/builtins module,
// outside this core's scope (spec.md §1).
const BuiltinDefaultNew uint32 = 0
