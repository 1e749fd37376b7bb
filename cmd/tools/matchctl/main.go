// cmd/tools/matchctl/main.go
package main

import (
	"fmt"
	"os"
)

// Version information (set by build flags)
var Version = "dev"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
