//go:build !linux
// +build !linux

package network

import "net"

// DefaultTFOQueueLen is a length of the queue of pending TCP Fast Open
// connections on a listener.
const DefaultTFOQueueLen = 256

// IsTFOServerEnabled is always false outside of Linux.
func IsTFOServerEnabled() bool {
	return false
}

// ListenTFO returns an ordinary listener outside of Linux.
func ListenTFO(network, address string, _ int) (net.Listener, error) {
	return net.Listen(network, address) //nolint: wrapcheck
}
