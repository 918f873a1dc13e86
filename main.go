// SPDX-License-Identifier: MPL-2.0

// Command addonproc discovers and registers addon modules.
package main

import (
	cmd "github.com/addonproc/addonproc/cmd/addonproc"

	_ "github.com/addonproc/addonproc/examples/hello"
)

func main() {
	cmd.Execute()
}
