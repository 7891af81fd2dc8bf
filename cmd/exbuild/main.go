// SPDX-License-Identifier: MPL-2.0

// exbuild assembles the exercise dataset build from an ordered
// changeset of compiled-in change units.
package main

import (
	// arm the change unit registry
	_ "exbuild/changes"
)

func main() {
	Execute()
}
