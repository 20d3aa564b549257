// Package main is the entry point for the splunk-catalog binary.
package main

import (
	"os"

	"github.com/hugr-lab/airport-splunk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
