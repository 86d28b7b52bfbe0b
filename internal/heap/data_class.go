package heap

import (
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/value"
)

// ClassObjectData backs DataClassObject (spec.md §3.7), grounded on
// original_source/types/class.rs's ClassObject: name/UID, metaclass,
// namespace dict, bases, a C3-linearized MRO, an own-vs-flattened slot
// layout, instance dict/weakref flags, and a weak subclass registry.
type ClassObjectData struct {
	Name      intern.StringId
	UID       uint64
	Metaclass value.Value
	Namespace value.HeapId // always a DataDict heap slot
	Bases     []value.Value

	// MRO is the full C3-linearized method resolution order, including
	// self as mro[0] (class.rs's `mro()` contract).
	MRO []value.HeapId

	// OwnSlots holds `__slots__` defined directly on this class, nil if
	// the class didn't declare any (class.rs distinguishes "not declared"
	// from "declared empty").
	OwnSlots []intern.StringId

	// SlotLayout is the flattened slot list across the whole MRO
	// (excluding `__dict__`/`__weakref__`); SlotIndex maps a slot name to
	// its position in SlotLayout and in every Instance's Slots vector.
	SlotLayout []intern.StringId
	SlotIndex  map[intern.StringId]int

	InstanceHasDict     bool
	InstanceHasWeakref  bool

	// Subclasses is the weak registry of direct subclasses: a HeapId plus
	// the UID it was registered with, so a stale slot (reused after the
	// subclass was freed and its index recycled) can be detected by UID
	// mismatch rather than trusting the HeapId alone (spec.md §3.7, §9
	// open question 1; original_source's SubclassEntry{class_id,class_uid}).
	Subclasses []SubclassEntry
}

// SubclassEntry is one weak-registry row: the subclass's heap slot plus
// the class UID it had when registered.
type SubclassEntry struct {
	ClassID  value.HeapId
	ClassUID uint64
}

// HasSlot reports whether name is part of the flattened slot layout and
// returns its index.
func (c *ClassObjectData) HasSlot(name intern.StringId) (int, bool) {
	idx, ok := c.SlotIndex[name]
	return idx, ok
}

// IsSubclassOf reports whether otherID appears anywhere in c's MRO.
func (c *ClassObjectData) IsSubclassOf(otherID value.HeapId) bool {
	for _, id := range c.MRO {
		if id == otherID {
			return true
		}
	}
	return false
}

// InstanceData backs DataInstance (spec.md §3.7): a class reference, an
// optional attrs-dict slot (present only if the class's MRO grants
// `__dict__`), a dense slot-value vector (value.Undefined marks an
// unset slot), and weakrefs tracked without a refcount bump.
type InstanceData struct {
	Class     value.HeapId
	AttrsDict value.HeapId // zero value.HeapId{} if the class has no instance dict
	Slots     []value.Value
	WeakRefs  []value.HeapId
}

// SlotDescriptorData backs DataSlotDescriptor: a `__slots__`-member
// descriptor bound to a fixed index in the owning class's slot layout
// (CPython's member_descriptor). Kind distinguishes the three descriptor
// flavors spec.md §4.3 names: plain slot member, `__dict__` member, and
// `__weakref__` member.
type SlotDescriptorData struct {
	Kind       SlotDescriptorKind
	OwnerClass value.HeapId
	SlotIndex  int // meaningful only when Kind == SlotMember
}

type SlotDescriptorKind uint8

const (
	SlotMember SlotDescriptorKind = iota
	SlotDictMember
	SlotWeakrefMember
)

// UserPropertyData backs DataUserProperty (the `property` builtin): the
// three callables a `property(fget, fset, fdel)` call installs. Any may
// be value.None.
type UserPropertyData struct {
	Getter value.Value
	Setter value.Value
	Deleter value.Value
	Doc    string
}

// CachedPropertyData backs DataCachedProperty (functools.cached_property).
// The descriptor holds no cache of its own: as in CPython, the computed
// value is stored directly into the instance's `__dict__` under Name, and
// an instance with no `__dict__` gets a TypeError instead.
type CachedPropertyData struct {
	Func value.Value
	Name intern.StringId
}

// MappingProxyData backs DataMappingProxy: a read-only view over another
// dict (spec.md §4.3's `types.MappingProxyType`), commonly exposing a
// class's namespace or `__dict__` without allowing mutation.
type MappingProxyData struct {
	Target value.HeapId // always a DataDict heap slot
}

// SuperProxyData backs DataSuperProxy (the `super()` proxy): the bound
// instance plus the class in the MRO chain attribute lookups should start
// searching *after*.
type SuperProxyData struct {
	Instance   value.Value
	StartClass value.Value
}

// WeakRefData backs DataWeakRef: a weak reference to a heap object,
// tracked via Target, whose HeapId carries the slot generation, so staleness after the referent's slot
// is reused for something else can be detected (spec.md §3.7 open
// question; generation discipline supplemented from object.rs).
type WeakRefData struct {
	Target    value.HeapId
	Callback  value.Value
}

// ClassSubclassesData backs DataClassSubclasses, the result of a
// `cls.__subclasses__()` call. It stores only the owning class's HeapId;
// no tuple or copy of the weak subclass registry is kept here.
type ClassSubclassesData struct {
	Owner value.HeapId
}
