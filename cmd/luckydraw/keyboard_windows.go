//go:build windows
// +build windows

package main

import (
	"os"

	"golang.org/x/term"
)

// listenForKeyboard switches the console to raw input when possible and dispatches key presses
func listenForKeyboard(c *console) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		if oldState, err := term.MakeRaw(fd); err == nil {
			defer term.Restore(fd, oldState)
		}
	}
	c.readKeys(os.Stdin)
}
