// SPDX-License-Identifier: MPL-2.0

// Package i18n loads addon translation tables from CUE, YAML or TOML files.
//
// All formats share one shape: a map from locale to a list of messages.
//
//	ja_JP:
//	  - context: "*"
//	    message: "Greet"
//	    translation: "挨拶"
//
// An omitted context defaults to "*", which matches every context.
package i18n
