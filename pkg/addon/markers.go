// SPDX-License-Identifier: MPL-2.0

package addon

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

const (
	// PriorityUnset is reported for classes without an explicit priority.
	// Unset and non-positive priorities register after every positive one.
	PriorityUnset = -1

	// MarkerDisabled names the disable marker in DuplicateMarkerError.
	MarkerDisabled = "disabled"
	// MarkerPriority names the priority marker in DuplicateMarkerError.
	MarkerPriority = "priority"
)

// ErrDuplicateMarker is the sentinel error wrapped by DuplicateMarkerError.
var ErrDuplicateMarker = errors.New("duplicate marker")

type (
	// Markers is a side table of per-class registration metadata keyed by
	// class type identity. It is safe for concurrent use.
	Markers struct {
		mu       sync.RWMutex
		disabled map[reflect.Type]struct{}
		priority map[reflect.Type]int
	}

	// DuplicateMarkerError is returned when a marker is applied twice to the
	// same class. It signals a programming error in the addon.
	DuplicateMarkerError struct {
		Marker string
		Class  string
	}
)

// Error implements the error interface.
func (e *DuplicateMarkerError) Error() string {
	return fmt.Sprintf("the %q marker is already set on %s", e.Marker, e.Class)
}

// Unwrap returns ErrDuplicateMarker so callers can use errors.Is.
func (e *DuplicateMarkerError) Unwrap() error { return ErrDuplicateMarker }

// NewMarkers creates an empty marker table.
func NewMarkers() *Markers {
	return &Markers{
		disabled: make(map[reflect.Type]struct{}),
		priority: make(map[reflect.Type]int),
	}
}

// Disable excludes cls from class collection.
func (m *Markers) Disable(cls any) error {
	t := TypeOf(cls)
	if t == nil {
		return fmt.Errorf("%w: cannot mark a nil class", ErrInvalidModule)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.disabled[t]; ok {
		return &DuplicateMarkerError{Marker: MarkerDisabled, Class: NameOf(cls)}
	}
	m.disabled[t] = struct{}{}
	return nil
}

// SetPriority assigns the registration priority of cls. Lower positive values
// register earlier.
func (m *Markers) SetPriority(cls any, priority int) error {
	t := TypeOf(cls)
	if t == nil {
		return fmt.Errorf("%w: cannot mark a nil class", ErrInvalidModule)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.priority[t]; ok {
		return &DuplicateMarkerError{Marker: MarkerPriority, Class: NameOf(cls)}
	}
	m.priority[t] = priority
	return nil
}

// Disabled reports whether cls carries the disable marker.
func (m *Markers) Disabled(cls any) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.disabled[TypeOf(cls)]
	return ok
}

// Priority returns the priority of cls, or PriorityUnset and false when none
// was assigned.
func (m *Markers) Priority(cls any) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.priority[TypeOf(cls)]
	if !ok {
		return PriorityUnset, false
	}
	return p, true
}

// Disable marks cls as disabled in the Default catalog.
func Disable(cls any) error {
	return Default.Markers().Disable(cls)
}

// SetPriority sets the priority of cls in the Default catalog.
func SetPriority(cls any, priority int) error {
	return Default.Markers().SetPriority(cls, priority)
}

// MustDisable is like Disable but panics on error. Use it from init functions.
func MustDisable(cls any) {
	if err := Disable(cls); err != nil {
		panic("addon: " + err.Error())
	}
}

// MustSetPriority is like SetPriority but panics on error. Use it from init
// functions.
func MustSetPriority(cls any, priority int) {
	if err := SetPriority(cls, priority); err != nil {
		panic("addon: " + err.Error())
	}
}
