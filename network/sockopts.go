package network

import (
	"fmt"
	"net"
)

// SetClientSocketOptions tunes a TCP socket accepted from a collector.
func SetClientSocketOptions(conn net.Conn) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	return setCommonSocketOptions(tcpConn)
}

// SetServerSocketOptions tunes a TCP socket that represents a connection
// to upstream like InfluxDB.
func SetServerSocketOptions(conn net.Conn) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	return setCommonSocketOptions(tcpConn)
}

func setCommonSocketOptions(conn *net.TCPConn) error {
	if err := conn.SetNoDelay(true); err != nil {
		return fmt.Errorf("cannot set TCP_NODELAY: %w", err)
	}

	if err := conn.SetKeepAlive(true); err != nil {
		return fmt.Errorf("cannot enable TCP keepalive: %w", err)
	}

	if err := conn.SetKeepAlivePeriod(DefaultTCPKeepAlivePeriod); err != nil {
		return fmt.Errorf("cannot set time period of TCP keepalive probes: %w", err)
	}

	rawConn, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("cannot get underlying raw connection: %w", err)
	}

	if err := setSocketReuseAddrPort(rawConn); err != nil {
		return fmt.Errorf("cannot setup SO_REUSEADDR/PORT: %w", err)
	}

	return nil
}
