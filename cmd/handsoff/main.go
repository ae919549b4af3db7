// Package main provides the handsoff command.
//
// Usage:
//
//	handsoff [flags]            run the detector (tray + local web UI)
//	handsoff episodes           list recorded touch episodes
//	handsoff config             print the effective configuration
//	handsoff version            print the version
//
// Configuration:
//
//	The configuration file lives in os.UserConfigDir()/handsoff/config.yaml.
//	A missing file means defaults.
package main

import (
	"fmt"
	"os"

	"github.com/ayusman/handsoff/cmd/handsoff/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
