package ecs

import (
	"fmt"
	"time"
)

// ECSError carries structured context for an ECS failure, whether it is
// returned as an error or raised by fatal/Fatalf as a panic value; grounded
// on the teacher's error type but trimmed to the fields this engine
// actually populates.
type ECSError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Component string    `json:"component,omitempty"`
	Entity    Entity    `json:"entity,omitempty"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *ECSError) Error() string {
	switch {
	case e.Entity != Invalid && e.Component != "":
		return fmt.Sprintf("[%s] %s (entity: %+v, component: %s)", e.Code, e.Message, e.Entity, e.Component)
	case e.Entity != Invalid:
		return fmt.Sprintf("[%s] %s (entity: %+v)", e.Code, e.Message, e.Entity)
	case e.Component != "":
		return fmt.Sprintf("[%s] %s (component: %s)", e.Code, e.Message, e.Component)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// WithEntity attaches entity context and returns e for chaining.
func (e *ECSError) WithEntity(entity Entity) *ECSError {
	e.Entity = entity
	return e
}

// WithComponent attaches component-type context and returns e for chaining.
func (e *ECSError) WithComponent(component string) *ECSError {
	e.Component = component
	return e
}

// WithDetails attaches free-form details and returns e for chaining.
func (e *ECSError) WithDetails(details string) *ECSError {
	e.Details = details
	return e
}

// Error codes carried by ECSError, both for returned errors and for the
// fatal panics raised on programmer errors.
const (
	ErrCodeInvalidHandle     = "INVALID_HANDLE"
	ErrCodeComponentNotFound = "COMPONENT_NOT_FOUND"
	ErrCodeComponentExists   = "COMPONENT_EXISTS"
	ErrCodeUnregisteredType  = "UNREGISTERED_COMPONENT_TYPE"
)

func newECSError(code, message string) *ECSError {
	return &ECSError{Code: code, Message: message, Timestamp: time.Now()}
}

// ErrInvalidHandle is returned when an Entity handle is stale or out of
// range (double-free, freed-then-reused, or never allocated).
var ErrInvalidHandle = newECSError(ErrCodeInvalidHandle, "invalid or stale entity handle")

// ErrComponentNotFound reports a recoverable absence: a component lookup
// that legitimately may miss, as opposed to the programmer errors below.
func ErrComponentNotFound(entity Entity, component string) *ECSError {
	return newECSError(ErrCodeComponentNotFound, "component not found on entity").
		WithEntity(entity).WithComponent(component)
}

// ErrComponentExists reports an attempt to add a component type the entity
// already carries. storage.Store.Add panics with this, since a double-add
// is a programmer error rather than a recoverable overwrite.
func ErrComponentExists(entity Entity, component string) *ECSError {
	return newECSError(ErrCodeComponentExists, "component already present on entity").
		WithEntity(entity).WithComponent(component)
}

// fatal panics with an ECSError for conditions spec.md §7 classifies as
// programmer errors: an unregistered component type, a double-add where the
// caller used the strict path, a stale handle reaching component storage
// after world-level validation should have caught it, or overlapping
// read/write sets within one query. These represent bugs in calling code,
// not recoverable runtime states, so they abort instead of returning an
// error value — mirroring the assert() panic idiom used for Chipmunk-style
// invariant checks in the pack's physics reference code.
func fatal(code, message string, entity Entity, component string) {
	err := newECSError(code, message)
	if entity != Invalid {
		err.WithEntity(entity)
	}
	if component != "" {
		err.WithComponent(component)
	}
	panic(err)
}

// Fatalf is the exported form of fatal for higher-layer packages (storage,
// query, world) that need to raise the same class of programmer error
// without duplicating the panic/ECSError wiring.
func Fatalf(code, component string, entity Entity, format string, args ...any) {
	fatal(code, fmt.Sprintf(format, args...), entity, component)
}
