// Terminal raw-mode handling, based on golang.org/x/term term_unix.go
// (BSD-3-Clause). Only echo and canonical mode are disabled so single
// keypresses arrive without a newline; signal keys keep working.
package tui

import (
	"log"

	"golang.org/x/sys/unix"
)

type termState struct {
	termios unix.Termios
}

// rawMode switches fd to non-canonical input. A nil state with a nil
// error means fd is not a terminal; shortcuts are then disabled.
func rawMode(fd int) (*termState, error) {
	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		log.Println("Not a terminal. Shortcuts will be disabled.")
		return nil, nil
	}
	saved := termState{termios: *termios}

	termios.Lflag &^= unix.ECHO | unix.ICANON
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		return nil, err
	}
	return &saved, nil
}

func restoreMode(fd int, saved *termState) error {
	if saved == nil {
		return nil
	}
	return unix.IoctlSetTermios(fd, unix.TCSETS, &saved.termios)
}
