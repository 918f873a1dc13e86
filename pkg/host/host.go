// SPDX-License-Identifier: MPL-2.0

// Package host defines the collaborators an addon manager talks to: the host
// class registry, the translation service and the keymap and properties
// managers. Only the interfaces live here; the host application supplies the
// implementations. Memory is an in-process implementation that records every
// call, used for dry runs and tests.
package host

type (
	// Registry registers addon classes with the host runtime.
	Registry interface {
		RegisterClass(cls any) error
		UnregisterClass(cls any) error
	}

	// Translations registers translation tables under an addon name.
	Translations interface {
		Register(name string, table TranslationTable) error
		Unregister(name string) error
	}

	// KeymapManager owns the keymaps an addon added during its lifetime.
	KeymapManager interface {
		Unregister() error
	}

	// PropertiesManager owns the properties an addon added during its lifetime.
	PropertiesManager interface {
		SetName(name string)
		Unregister() error
	}

	// TranslationKey identifies a message in a given context. The context "*"
	// applies to every context.
	TranslationKey struct {
		Context string
		Message string
	}

	// TranslationTable maps a locale (e.g. "ja_JP") to its translated
	// messages.
	TranslationTable map[string]map[TranslationKey]string

	nopKeymaps      struct{}
	nopProperties   struct{}
	nopTranslations struct{}
)

// AnyContext is the translation context matching every context.
const AnyContext = "*"

// Len returns the total number of translated messages across locales.
func (t TranslationTable) Len() int {
	n := 0
	for _, msgs := range t {
		n += len(msgs)
	}
	return n
}

// NopKeymaps returns a KeymapManager that does nothing.
func NopKeymaps() KeymapManager { return nopKeymaps{} }

// NopProperties returns a PropertiesManager that does nothing.
func NopProperties() PropertiesManager { return nopProperties{} }

// NopTranslations returns a Translations service that does nothing.
func NopTranslations() Translations { return nopTranslations{} }

func (nopKeymaps) Unregister() error { return nil }

func (nopProperties) SetName(string)    {}
func (nopProperties) Unregister() error { return nil }

func (nopTranslations) Register(string, TranslationTable) error { return nil }
func (nopTranslations) Unregister(string) error                 { return nil }
