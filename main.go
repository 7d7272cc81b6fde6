// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/depshed/depshed/cmd/depshed"

func main() {
	cmd.Execute()
}
