package attr

import (
	"testing"

	"github.com/corvidlang/corvid/internal/heap"
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/runerr"
	"github.com/corvidlang/corvid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv bundles a heap + string table + dispatcher, the fixture every
// test in this file builds against.
type testEnv struct {
	h *heap.Heap
	t *intern.Tables
	d *Dispatcher
}

func newEnv() *testEnv {
	h := heap.New(heap.Limits{})
	tables := intern.NewTables()
	return &testEnv{h: h, t: tables, d: New(h, tables)}
}

func (e *testEnv) intern(s string) intern.StringId { return e.t.Intern(s) }

func (e *testEnv) newDict(t *testing.T) value.HeapId {
	id, err := e.h.Allocate(heap.HeapData{Kind: heap.DataDict, Payload: heap.NewDict()})
	require.NoError(t, err)
	return id
}

// newClass allocates a class object with an empty namespace and the given
// MRO (self always included as mro[0] by convention of the caller).
func (e *testEnv) newClass(t *testing.T, name string, mro []value.HeapId) value.HeapId {
	ns := e.newDict(t)
	id, err := e.h.Allocate(heap.HeapData{Kind: heap.DataClassObject, Payload: &heap.ClassObjectData{
		Name:            e.intern(name),
		Namespace:       ns,
		MRO:             mro,
		InstanceHasDict: true,
	}})
	require.NoError(t, err)
	// Patch MRO[0] == self for classes created without an explicit self
	// reference in their own MRO slice.
	data, _ := e.h.Get(id)
	cls := data.Payload.(*heap.ClassObjectData)
	if len(cls.MRO) == 0 {
		cls.MRO = []value.HeapId{id}
	}
	return id
}

func (e *testEnv) setNamespace(t *testing.T, classID value.HeapId, name string, v value.Value) {
	data, ok := e.h.Get(classID)
	require.True(t, ok)
	cls := data.Payload.(*heap.ClassObjectData)
	e.h.SetName(cls.Namespace, e.intern(name), v)
}

func (e *testEnv) newInstance(t *testing.T, classID value.HeapId, withDict bool) value.HeapId {
	var dictID value.HeapId
	if withDict {
		dictID = e.newDict(t)
	}
	id, err := e.h.Allocate(heap.HeapData{Kind: heap.DataInstance, Payload: &heap.InstanceData{
		Class:     classID,
		AttrsDict: dictID,
	}})
	require.NoError(t, err)
	return id
}

// TestDescriptorPrecedence is spec.md §8.4 scenario S6: a data descriptor
// wins over an instance `__dict__` entry of the same name.
func TestDescriptorPrecedence(t *testing.T) {
	e := newEnv()

	descClassID := e.newClass(t, "Descriptor", nil)
	getFn := value.Builtin(101)
	setFn := value.Builtin(102)
	e.setNamespace(t, descClassID, "__get__", getFn)
	e.setNamespace(t, descClassID, "__set__", setFn)
	descInstID := e.newInstance(t, descClassID, false)

	ownerClassID := e.newClass(t, "C", nil)
	e.setNamespace(t, ownerClassID, "x", value.Ref(descInstID))

	objID := e.newInstance(t, ownerClassID, true)
	objData, _ := e.h.Get(objID)
	inst := objData.Payload.(*heap.InstanceData)
	e.h.SetName(inst.AttrsDict, e.intern("x"), value.Int(1))

	res, err := e.d.LoadAttr(value.Ref(objID), e.intern("x"))
	require.NoError(t, err)
	require.Equal(t, KindFramePushed, res.Kind, "data descriptor must win over instance __dict__")
	assert.Equal(t, getFn, res.Call.Callable)
	assert.Equal(t, []value.Value{value.Ref(descInstID), value.Ref(objID), value.Ref(ownerClassID)}, res.Call.Args)
}

// TestCachedPropertyCaching is spec.md §8.4 scenario S7.
func TestCachedPropertyCaching(t *testing.T) {
	e := newEnv()

	cls := e.newClass(t, "C", nil)
	computeFn := value.Builtin(55)
	cpID, err := e.h.Allocate(heap.HeapData{Kind: heap.DataCachedProperty, Payload: &heap.CachedPropertyData{
		Func: computeFn, Name: e.intern("value"),
	}})
	require.NoError(t, err)
	e.setNamespace(t, cls, "value", value.Ref(cpID))

	objID := e.newInstance(t, cls, true)

	res, err := e.d.LoadAttr(value.Ref(objID), e.intern("value"))
	require.NoError(t, err)
	require.Equal(t, KindFramePushed, res.Kind, "first access must call the wrapped function")
	assert.Equal(t, computeFn, res.Call.Callable)
	require.Equal(t, PendingCachedProperty, res.Call.Pending.Kind)

	computed := value.Int(42)
	final, err := e.d.Resume(res.Call.Pending, computed, nil)
	require.NoError(t, err)
	assert.Equal(t, push(computed), final)

	// Second access must not re-invoke the function: it's now satisfied by
	// the plain instance-dict lookup.
	res2, err := e.d.LoadAttr(value.Ref(objID), e.intern("value"))
	require.NoError(t, err)
	assert.Equal(t, KindPush, res2.Kind)
	assert.Equal(t, computed, res2.Value)
}

// TestSlotsEnforcement is spec.md §8.4 scenario S8.
func TestSlotsEnforcement(t *testing.T) {
	e := newEnv()

	clsID := e.newClass(t, "Point", nil)
	data, _ := e.h.Get(clsID)
	cls := data.Payload.(*heap.ClassObjectData)
	cls.OwnSlots = []intern.StringId{e.intern("x")}
	cls.SlotLayout = []intern.StringId{e.intern("x")}
	cls.SlotIndex = map[intern.StringId]int{e.intern("x"): 0}
	cls.InstanceHasDict = false

	slotDescID, err := e.h.Allocate(heap.HeapData{Kind: heap.DataSlotDescriptor, Payload: &heap.SlotDescriptorData{
		Kind: heap.SlotMember, OwnerClass: clsID, SlotIndex: 0,
	}})
	require.NoError(t, err)
	e.setNamespace(t, clsID, "x", value.Ref(slotDescID))

	objID, err := e.h.Allocate(heap.HeapData{Kind: heap.DataInstance, Payload: &heap.InstanceData{
		Class: clsID,
		Slots: []value.Value{value.Undefined},
	}})
	require.NoError(t, err)

	_, err = e.d.StoreAttr(value.Ref(objID), e.intern("y"), value.Int(1))
	require.Error(t, err)
	assert.True(t, runerr.IsExc(err, runerr.AttributeError), "no __dict__ and no matching slot must raise AttributeError")

	res, err := e.d.StoreAttr(value.Ref(objID), e.intern("x"), value.Int(7))
	require.NoError(t, err)
	assert.Equal(t, KindPush, res.Kind)

	loaded, err := e.d.LoadAttr(value.Ref(objID), e.intern("x"))
	require.NoError(t, err)
	assert.Equal(t, value.Int(7), loaded.Value)
}

// TestWeakrefSlotNotWritable is spec.md §8.3.14.
func TestWeakrefSlotNotWritable(t *testing.T) {
	e := newEnv()
	clsID := e.newClass(t, "C", nil)
	data, _ := e.h.Get(clsID)
	cls := data.Payload.(*heap.ClassObjectData)
	cls.InstanceHasWeakref = true

	wrDescID, err := e.h.Allocate(heap.HeapData{Kind: heap.DataSlotDescriptor, Payload: &heap.SlotDescriptorData{
		Kind: heap.SlotWeakrefMember, OwnerClass: clsID,
	}})
	require.NoError(t, err)
	e.setNamespace(t, clsID, "__weakref__", value.Ref(wrDescID))

	objID := e.newInstance(t, clsID, false)

	_, err = e.d.StoreAttr(value.Ref(objID), e.intern("__weakref__"), value.Int(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not writable")

	_, err = e.d.DeleteAttr(value.Ref(objID), e.intern("__weakref__"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not writable")
}

// TestReadOnlyPropertySetterRaises covers spec.md §4.3's "Store/delete with
// setter/deleter": a property without a setter raises on assignment.
func TestReadOnlyPropertySetterRaises(t *testing.T) {
	e := newEnv()
	clsID := e.newClass(t, "C", nil)
	propID, err := e.h.Allocate(heap.HeapData{Kind: heap.DataUserProperty, Payload: &heap.UserPropertyData{
		Getter: value.Builtin(1),
	}})
	require.NoError(t, err)
	e.setNamespace(t, clsID, "x", value.Ref(propID))
	objID := e.newInstance(t, clsID, true)

	_, err = e.d.StoreAttr(value.Ref(objID), e.intern("x"), value.Int(5))
	require.Error(t, err)
	assert.True(t, runerr.IsExc(err, runerr.AttributeError))
}

// TestGetattrFallbackAfterAttributeError covers spec.md §4.3 step 5f: a
// missing attribute falls back to `__getattr__` when the class defines one.
func TestGetattrFallbackAfterAttributeError(t *testing.T) {
	e := newEnv()
	clsID := e.newClass(t, "C", nil)
	getattrFn := value.Builtin(9)
	e.setNamespace(t, clsID, "__getattr__", getattrFn)
	objID := e.newInstance(t, clsID, true)

	res, err := e.d.LoadAttr(value.Ref(objID), e.intern("missing"))
	require.NoError(t, err)
	require.Equal(t, KindFramePushed, res.Kind)
	assert.Equal(t, getattrFn, res.Call.Callable)

	// Without __getattr__, the plain AttributeError propagates.
	e2 := newEnv()
	bareClsID := e2.newClass(t, "Bare", nil)
	bareObjID := e2.newInstance(t, bareClsID, true)
	_, err = e2.d.LoadAttr(value.Ref(bareObjID), e2.intern("missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'Bare' object has no attribute 'missing'")
}

// TestClassAttributeErrorMessage covers the class-object error message
// variant (spec.md §4.3 error schema).
func TestClassAttributeErrorMessage(t *testing.T) {
	e := newEnv()
	clsID := e.newClass(t, "Widget", nil)
	_, err := e.d.LoadAttr(value.Ref(clsID), e.intern("missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type object 'Widget' has no attribute 'missing'")
}

// TestInstanceMethodBinding covers the plain-function descriptor path: a
// Closure found via MRO binds into a BoundMethod on instance access.
func TestInstanceMethodBinding(t *testing.T) {
	e := newEnv()
	clsID := e.newClass(t, "C", nil)
	fnID, err := e.h.Allocate(heap.HeapData{Kind: heap.DataClosure, Payload: &heap.ClosureData{Name: e.intern("greet")}})
	require.NoError(t, err)
	e.setNamespace(t, clsID, "greet", value.Ref(fnID))
	objID := e.newInstance(t, clsID, true)

	res, err := e.d.LoadAttr(value.Ref(objID), e.intern("greet"))
	require.NoError(t, err)
	require.Equal(t, KindPush, res.Kind)
	require.True(t, res.Value.IsRef())
	bound, ok := e.h.Get(res.Value.Ref)
	require.True(t, ok)
	require.Equal(t, heap.DataBoundMethod, bound.Kind)
	bm := bound.Payload.(*heap.BoundMethodData)
	assert.Equal(t, value.Ref(objID), bm.Self)
	assert.Equal(t, value.Ref(fnID), bm.Func)
}
