//go:build linux
// +build linux

package network

import (
	"context"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// DefaultTFOQueueLen is a length of the queue of pending TCP Fast Open
// connections on a listener.
const DefaultTFOQueueLen = 256

const (
	tfoProcPath  = "/proc/sys/net/ipv4/tcp_fastopen"
	tfoServerBit = 0x2
)

var (
	tfoServerOnce    sync.Once
	tfoServerEnabled bool
)

// IsTFOServerEnabled tells if kernel accepts TCP Fast Open on server
// sockets. The value is read once.
func IsTFOServerEnabled() bool {
	tfoServerOnce.Do(func() {
		data, err := os.ReadFile(tfoProcPath)
		if err != nil {
			return
		}

		mode, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			return
		}

		tfoServerEnabled = mode&tfoServerBit != 0
	})

	return tfoServerEnabled
}

// ListenTFO creates a TCP listener with TCP Fast Open. If kernel does
// not support it, an ordinary listener is returned.
func ListenTFO(network, address string, queueLen int) (net.Listener, error) {
	if !IsTFOServerEnabled() {
		return net.Listen(network, address) //nolint: wrapcheck
	}

	if queueLen <= 0 {
		queueLen = DefaultTFOQueueLen
	}

	config := net.ListenConfig{
		Control: func(_, _ string, conn syscall.RawConn) error {
			return conn.Control(func(fd uintptr) {
				// Ошибка не фатальна: сокет просто работает без TFO.
				unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_FASTOPEN, queueLen) //nolint: errcheck
			})
		},
	}

	return config.Listen(context.Background(), network, address) //nolint: wrapcheck
}
