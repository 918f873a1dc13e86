// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSchema = `
#Doc: {
	name:   string
	count:  int
	tags?: [...string]
	...
}
`

type testDoc struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()

		data := []byte(`
name:  "hello"
count: 2
tags: ["a", "b"]
`)
		res, err := ParseAndDecode[testDoc]([]byte(testSchema), data, "#Doc")
		if err != nil {
			t.Fatalf("ParseAndDecode() returned error: %v", err)
		}
		if res.Value.Name != "hello" || res.Value.Count != 2 {
			t.Errorf("decoded %+v", res.Value)
		}
		if len(res.Value.Tags) != 2 {
			t.Errorf("expected 2 tags, got %v", res.Value.Tags)
		}
	})

	t.Run("optional field omitted", func(t *testing.T) {
		t.Parallel()

		res, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "x", count: 1`), "#Doc")
		if err != nil {
			t.Fatalf("ParseAndDecode() returned error: %v", err)
		}
		if res.Value.Tags != nil {
			t.Errorf("expected nil tags, got %v", res.Value.Tags)
		}
	})

	t.Run("type mismatch reports file and path", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "x", count: "two"`), "#Doc", WithFilename("doc.cue"))
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "doc.cue") {
			t.Errorf("error should mention the file name: %v", err)
		}
		if !strings.Contains(err.Error(), "count") {
			t.Errorf("error should mention the field: %v", err)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: [`), "#Doc"); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("size limit", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "x", count: 1`), "#Doc", WithMaxFileSize(4))
		if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
			t.Fatalf("expected size error, got %v", err)
		}
	})

	t.Run("missing definition", func(t *testing.T) {
		t.Parallel()

		_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "x", count: 1`), "#Missing")
		if err == nil || !strings.Contains(err.Error(), "internal error") {
			t.Fatalf("expected internal error, got %v", err)
		}
	})
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doc.cue")
	if err := os.WriteFile(path, []byte(`name: "file", count: 3`), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	res, err := ParseFile[testDoc]([]byte(testSchema), path, "#Doc")
	if err != nil {
		t.Fatalf("ParseFile() returned error: %v", err)
	}
	if res.Value.Name != "file" {
		t.Errorf("Name = %q, want %q", res.Value.Name, "file")
	}

	if _, err := ParseFile[testDoc]([]byte(testSchema), filepath.Join(t.TempDir(), "missing.cue"), "#Doc"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecodeMap(t *testing.T) {
	t.Parallel()

	m, err := DecodeMap([]byte(testSchema), []byte(`name: "partial"`), "#Doc", "partial.cue")
	if err != nil {
		t.Fatalf("DecodeMap() returned error: %v", err)
	}
	if m["name"] != "partial" {
		t.Errorf("name = %v, want %q", m["name"], "partial")
	}
}
