// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/requireplus/cmd/requireplus"

func main() {
	cmd.Execute()
}
