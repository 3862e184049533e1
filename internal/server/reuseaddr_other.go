//go:build !unix

package server

import "syscall"

func controlReuseAddr(network, address string, c syscall.RawConn) error {
	return nil
}
