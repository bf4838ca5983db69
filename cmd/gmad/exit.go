//go:build !windows

package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

// exit terminates with status 1 if err is non-nil and is not the result of printing help.
func exit(err error) {
	if err != nil && !flags.WroteHelp(err) {
		os.Exit(1)
	}
}
