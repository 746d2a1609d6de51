package main

import (
	"fmt"
	"os"

	"github.com/tinovyatkin/nuspec-lsp/cmd/nuspec-lsp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
