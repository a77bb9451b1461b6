// Command nivesh runs the startup analysis pipeline from the terminal
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
