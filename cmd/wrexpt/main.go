// Command wrexpt exports a WebReplay store to an XML document.
package main

import (
	"os"

	"github.com/roach88/wrexpt/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
