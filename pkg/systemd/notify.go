// Package systemd implements the sd_notify readiness protocol used by
// the serve and run commands when managed as a unit.
package systemd

import (
	"errors"
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// Notify sends one sd_notify message. Without NOTIFY_SOCKET in the
// environment it is a no-op, so callers need no systemd detection.
func Notify(message string) error {
	if message == "" {
		return errors.New("requires a message")
	}
	name := os.Getenv("NOTIFY_SOCKET")
	if name == "" {
		return nil
	}
	switch name[0] {
	case '@':
		// Abstract socket namespace.
		name = "\x00" + name[1:]
	case '/':
	default:
		return errors.New("unsupported socket type")
	}

	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: name, Net: "unixgram"})
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Write([]byte(message))
	return err
}

func NotifyReady() error {
	return Notify("READY=1")
}

// NotifyReloading includes the monotonic timestamp systemd requires to
// pair the reload with the following READY=1.
func NotifyReloading() error {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return err
	}
	usec := uint64(ts.Sec)*1e6 + uint64(ts.Nsec)/1e3
	return Notify(fmt.Sprintf("RELOADING=1\nRELOAD_TIMESTAMP=%d", usec))
}

func MustNotifyReady() {
	if err := NotifyReady(); err != nil {
		panic(err)
	}
}

func MustNotifyReloading() {
	if err := NotifyReloading(); err != nil {
		panic(err)
	}
}
