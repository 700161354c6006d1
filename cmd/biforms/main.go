// Command biforms drives expression forms against a running language
// service from the terminal.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newApp(os.Stdout, os.Stderr)).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "biforms:", err)
		os.Exit(1)
	}
}
