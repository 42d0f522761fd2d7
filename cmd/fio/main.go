// Package main provides the fio command-line interface: file reading and
// writing in explicit encodings, directory management, and scripted batches.
// Errors no command handles end the process with a report of their kind,
// lineage and causal chain.
package main

import (
	"os"
)

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := a.execute(os.Args[1:]); err != nil {
		a.terminator().Terminate(err)
	}
}
