// The main package for the lacuene executable.
package main

import (
	"github.com/lacuene/lacuene/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
