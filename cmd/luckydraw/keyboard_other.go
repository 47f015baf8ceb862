//go:build !linux && !darwin && !windows
// +build !linux,!darwin,!windows

package main

import "os"

// listenForKeyboard reads keys line by line; commands take effect after Enter
func listenForKeyboard(c *console) {
	c.readKeys(os.Stdin)
}
