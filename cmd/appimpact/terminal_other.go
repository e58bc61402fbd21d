//go:build !linux

package main

// disableInputEcho is a no-op where the termios ioctls differ; input may echo
// over the view.
func disableInputEcho(int) (func(), error) {
	return nil, nil
}
