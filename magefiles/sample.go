//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const sampleFile = "testdata/sample_genes.csv"

// Sample annotates the bundled sample sheet with the freshly built binary.
func Sample() error {
	mg.Deps(Build)
	fmt.Printf("[sample] Annotating %s\n", sampleFile)
	return sh.RunV(binDir+"/"+binName, "annotate", "--file", sampleFile, "--column", "Gene")
}

// Providers lists the providers the current configuration enables.
func Providers() error {
	mg.Deps(Build)
	return sh.RunV(binDir+"/"+binName, "providers")
}
