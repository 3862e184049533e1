//go:build unix

package server

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlReuseAddr lets a restarted server bind while old connections
// linger in TIME_WAIT.
func controlReuseAddr(network, address string, c syscall.RawConn) error {
	var serr error
	err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return serr
}
