//go:build linux
// +build linux

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// listenForKeyboard puts the terminal in character mode and dispatches key presses
func listenForKeyboard(c *console) {
	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		// Not a terminal
		return
	}

	newState := *oldState
	// Keep OPOST so \n still returns the carriage
	newState.Lflag &^= unix.ICANON | unix.ECHO | unix.ISIG
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &newState); err != nil {
		return
	}
	defer unix.IoctlSetTermios(fd, unix.TCSETS, oldState)

	c.readKeys(os.Stdin)
}
