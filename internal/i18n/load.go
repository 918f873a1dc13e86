// SPDX-License-Identifier: MPL-2.0

package i18n

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/addonproc/addonproc/pkg/cueutil"
	"github.com/addonproc/addonproc/pkg/host"
)

var (
	// ErrUnsupportedFormat is returned for files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported translation file format")
	// ErrDuplicateMessage is returned when a locale defines the same
	// context and message twice.
	ErrDuplicateMessage = errors.New("duplicate translation")
	// ErrEmptyMessage is returned for an entry without a message.
	ErrEmptyMessage = errors.New("empty translation message")

	//go:embed translations_schema.cue
	schema []byte
)

type (
	// Message is one translation entry.
	Message struct {
		Context     string `json:"context,omitempty" yaml:"context,omitempty" toml:"context,omitempty"`
		Message     string `json:"message" yaml:"message" toml:"message"`
		Translation string `json:"translation" yaml:"translation" toml:"translation"`
	}

	// Document is the decoded form of a translation file.
	Document map[string][]Message
)

// Formats lists the supported file extensions.
func Formats() []string {
	return []string{".cue", ".yaml", ".yml", ".toml"}
}

// Load reads the translation file at path, choosing the decoder by extension.
func Load(path string) (host.TranslationTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read translations: %w", err)
	}
	return Parse(data, filepath.Ext(path), path)
}

// Parse decodes data in the format named by ext (".cue", ".yaml", ".yml" or
// ".toml"). filename is used in error messages.
func Parse(data []byte, ext, filename string) (host.TranslationTable, error) {
	var doc Document

	switch strings.ToLower(ext) {
	case ".cue":
		res, err := cueutil.ParseAndDecode[Document](schema, data, "#Translations", cueutil.WithFilename(filename))
		if err != nil {
			return nil, err
		}
		doc = *res.Value
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	table, err := doc.Table()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return table, nil
}

// Table converts the document into a host translation table.
func (d Document) Table() (host.TranslationTable, error) {
	table := make(host.TranslationTable, len(d))
	for locale, msgs := range d {
		entries := make(map[host.TranslationKey]string, len(msgs))
		for i, m := range msgs {
			if m.Message == "" {
				return nil, fmt.Errorf("%s[%d]: %w", locale, i, ErrEmptyMessage)
			}
			key := host.TranslationKey{Context: m.Context, Message: m.Message}
			if key.Context == "" {
				key.Context = host.AnyContext
			}
			if _, dup := entries[key]; dup {
				return nil, fmt.Errorf("%s[%d]: %w: %q in context %q", locale, i, ErrDuplicateMessage, key.Message, key.Context)
			}
			entries[key] = m.Translation
		}
		table[locale] = entries
	}
	return table, nil
}
