// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/launchgate/launchgate/cmd/launchgate"

func main() {
	cmd.Execute()
}
