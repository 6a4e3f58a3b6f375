// ABOUTME: Entry point for the activitychart command line tool.
// ABOUTME: Executes the cobra root command and exits non-zero on error.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
