// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/addonproc/addonproc/pkg/modpath"
)

// CheckInitializers parses every initializer file under the targets. Unlike
// Discover it does not stop at the first malformed file: each failure is
// reported as an error diagnostic, and ignore entries that name neither a
// directory nor a source file are reported as warnings. Ignore lists are not
// applied, so initializers in ignored directories are checked too.
//
// Missing targets are still returned as errors.
func (d *Discovery) CheckInitializers(ctx context.Context, targets []string) ([]Diagnostic, error) {
	var diags []Diagnostic

	for _, target := range targets {
		dir, err := d.targetDir(target)
		if err != nil {
			return nil, err
		}

		err = filepath.WalkDir(dir, func(path string, entry os.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if walkErr != nil {
				diags = append(diags, Diagnostic{
					Severity: SeverityWarning,
					Code:     CodeDirectoryUnreadable,
					Message:  "directory could not be read",
					Path:     path,
					Cause:    walkErr,
				})
				if entry != nil && entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !entry.IsDir() {
				return nil
			}
			if path != dir && d.layout.IsSkipDir(entry.Name()) {
				return filepath.SkipDir
			}

			diags = append(diags, d.checkDir(path)...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return diags, nil
}

func (d *Discovery) checkDir(dir string) []Diagnostic {
	set, err := d.reader.Read(dir)
	if err != nil {
		diag := Diagnostic{
			Severity: SeverityError,
			Code:     CodeInitializerInvalid,
			Message:  err.Error(),
			Path:     filepath.Join(dir, d.layout.InitFile),
			Cause:    err,
		}
		var ie *InitializerError
		if errors.As(err, &ie) {
			diag.Path = ie.Path
			diag.Message = ie.Cause.Error()
		}
		return []Diagnostic{diag}
	}

	var diags []Diagnostic
	for _, entry := range set.Sorted() {
		if d.entryExists(dir, entry) {
			continue
		}
		diags = append(diags, warning(CodeIgnoreEntryUnmatched, filepath.Join(dir, d.layout.InitFile),
			"ignore entry %q matches no directory or %s file", entry, d.layout.SourceExt))
	}
	return diags
}

func (d *Discovery) entryExists(dir, entry string) bool {
	base := filepath.Join(dir, modpath.DotToSep(entry))
	if info, err := os.Stat(base); err == nil && info.IsDir() {
		return true
	}
	info, err := os.Stat(base + d.layout.SourceExt)
	return err == nil && info.Mode().IsRegular()
}
