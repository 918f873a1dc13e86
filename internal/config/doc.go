// SPDX-License-Identifier: MPL-2.0

// Package config handles addonproc configuration using Viper with CUE as the
// file format.
//
// Configuration is layered, later layers winning:
//
//  1. Built-in defaults (DefaultConfig)
//  2. The user file, config.cue in ConfigDir()
//  3. The project file, addonproc.cue in the base directory
//  4. ADDONPROC_* environment variables
//
// Every file is validated against the embedded config_schema.cue before it is
// merged.
package config
