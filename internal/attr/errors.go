package attr

import (
	"github.com/corvidlang/corvid/internal/intern"
	"github.com/corvidlang/corvid/internal/runerr"
)

// Message schema from spec.md §4.3 "Error semantics": stable, CPython-
// flavored wording so host-side test suites can match on exact text.

func (d *Dispatcher) instanceAttributeError(typeName string, name intern.StringId) *runerr.Error {
	return runerr.Exc(runerr.AttributeError, "'%s' object has no attribute '%s'", typeName, d.name(name))
}

func (d *Dispatcher) classAttributeError(className string, name intern.StringId) *runerr.Error {
	return runerr.Exc(runerr.AttributeError, "type object '%s' has no attribute '%s'", className, d.name(name))
}

func (d *Dispatcher) dictMustBeDictError(typeName string) *runerr.Error {
	return runerr.Exc(runerr.AttributeError, "__dict__ must be set to a dictionary, not a '%s'", typeName)
}

func (d *Dispatcher) weakrefNotWritableError(typeName string) *runerr.Error {
	return runerr.Exc(runerr.AttributeError, "attribute '__weakref__' of '%s' objects is not writable", typeName)
}

func (d *Dispatcher) importError(name intern.StringId, moduleName string) *runerr.Error {
	return runerr.Exc(runerr.ImportError, "cannot import name '%s' from '%s'", d.name(name), moduleName)
}

func (d *Dispatcher) readOnlyPropertyError() *runerr.Error {
	return runerr.Exc(runerr.AttributeError, "property: setter")
}

func (d *Dispatcher) noDeleterError() *runerr.Error {
	return runerr.Exc(runerr.AttributeError, "can't delete attribute")
}

// unreadableAttributeErr is returned when a property's getter slot is
// absent (a write-only property, e.g. `property(fset=setter)`).
var unreadableAttributeErr = runerr.Exc(runerr.AttributeError, "unreadable attribute")

// internalErrf wraps a defensive invariant violation (spec.md §7 "Internal").
func internalErrf(format string, args ...any) error {
	return runerr.Internalf(format, args...)
}

// typeErrorCachedPropertyNoDict matches CPython's exact wording for
// accessing a cached_property on an instance with no `__dict__` (spec.md §9
// open question 4).
func typeErrorCachedPropertyNoDict(typeName, propName string) *runerr.Error {
	return runerr.Exc(runerr.TypeError, "No '__dict__' attribute on '%s' instance to cache '%s' property.", typeName, propName)
}
