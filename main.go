// SPDX-License-Identifier: MPL-2.0

// Command keyguard inspects the configuration consumed by the keyguard
// authentication module.
package main

import cmd "github.com/keyguard/keyguard/cmd/keyguard"

func main() {
	cmd.Execute()
}
