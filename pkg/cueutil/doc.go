// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the shared CUE decoding path used for addon
// initializer files, translation tables and the tool configuration.
//
// Every document goes through the same three steps:
//
//  1. Compile the embedded schema
//  2. Compile the document and unify it with the schema definition
//  3. Validate and decode into a Go value
//
// # Usage
//
//	//go:embed initializer_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseFile[initializer](schema, "/addon/operators/addon.cue", "#Initializer")
//	if err != nil {
//	    return err // includes the file and CUE path of the offending field
//	}
//	ignore := res.Value.Ignore
package cueutil
