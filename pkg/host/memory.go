// SPDX-License-Identifier: MPL-2.0

package host

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/addonproc/addonproc/pkg/addon"
)

var (
	// ErrAlreadyRegistered is returned when a class is registered twice.
	ErrAlreadyRegistered = errors.New("class already registered")
	// ErrNotRegistered is returned when unregistering an unknown class.
	ErrNotRegistered = errors.New("class not registered")
)

type (
	// Call is one recorded collaborator call.
	Call struct {
		// Op is the operation, e.g. "register_class" or "set_name".
		Op string
		// Arg is the class name, addon name or empty.
		Arg string
	}

	// Memory implements every collaborator interface in process. Class
	// identity follows addon.NameOf. It is safe for concurrent use.
	Memory struct {
		mu           sync.Mutex
		classes      []string
		translations map[string]TranslationTable
		name         string
		calls        []Call
	}
)

// Call operations recorded by Memory.
const (
	OpRegisterClass          = "register_class"
	OpUnregisterClass        = "unregister_class"
	OpRegisterTranslations   = "register_translations"
	OpUnregisterTranslations = "unregister_translations"
	OpUnregisterKeymaps      = "unregister_keymaps"
	OpSetName                = "set_name"
	OpUnregisterProperties   = "unregister_properties"
)

// NewMemory creates an empty in-memory host.
func NewMemory() *Memory {
	return &Memory{translations: make(map[string]TranslationTable)}
}

// RegisterClass implements Registry.
func (m *Memory) RegisterClass(cls any) error {
	name := addon.NameOf(cls)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Op: OpRegisterClass, Arg: name})
	if slices.Contains(m.classes, name) {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	m.classes = append(m.classes, name)
	return nil
}

// UnregisterClass implements Registry.
func (m *Memory) UnregisterClass(cls any) error {
	name := addon.NameOf(cls)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Op: OpUnregisterClass, Arg: name})
	i := slices.Index(m.classes, name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	m.classes = slices.Delete(m.classes, i, i+1)
	return nil
}

// Register implements Translations.
func (m *Memory) Register(name string, table TranslationTable) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Op: OpRegisterTranslations, Arg: name})
	m.translations[name] = table
	return nil
}

// Unregister implements Translations.
func (m *Memory) Unregister(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Op: OpUnregisterTranslations, Arg: name})
	delete(m.translations, name)
	return nil
}

// SetName implements PropertiesManager.
func (m *Memory) SetName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Op: OpSetName, Arg: name})
	m.name = name
}

// Keymaps returns a KeymapManager that records into m.
func (m *Memory) Keymaps() KeymapManager {
	return memoryKeymaps{m}
}

// Properties returns a PropertiesManager that records into m.
func (m *Memory) Properties() PropertiesManager {
	return memoryProperties{m}
}

// Registered returns the names of the currently registered classes in
// registration order.
func (m *Memory) Registered() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.classes)
}

// Translations returns the table registered under name.
func (m *Memory) Translations(name string) (TranslationTable, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.translations[name]
	return t, ok
}

// Name returns the name last passed to SetName.
func (m *Memory) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// Calls returns every recorded call in order.
func (m *Memory) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

func (m *Memory) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: op})
}

type (
	memoryKeymaps    struct{ m *Memory }
	memoryProperties struct{ m *Memory }
)

func (k memoryKeymaps) Unregister() error {
	k.m.record(OpUnregisterKeymaps)
	return nil
}

func (p memoryProperties) SetName(name string) { p.m.SetName(name) }

func (p memoryProperties) Unregister() error {
	p.m.record(OpUnregisterProperties)
	return nil
}
