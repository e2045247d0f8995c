package utils

import (
	"fmt"
	"net"

	"github.com/influxgate/influxgate/gatelib"
	"github.com/influxgate/influxgate/logger"
	"github.com/influxgate/influxgate/network"
)

type Listener struct {
	net.Listener
	tfoEnabled bool
	log        gatelib.Logger
	setOptions func(net.Conn) error
}

// Accept возвращает следующее соединение. Если сокет не удалось
// настроить, соединение закрывается и listener продолжает работу:
// одна плохая сессия не должна останавливать http.Server.
func (l Listener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			return nil, err //nolint: wrapcheck
		}

		if err := l.setOptions(conn); err != nil {
			l.log.BindStr("remote_addr", conn.RemoteAddr().String()).
				WarningError("cannot set TCP options", err)
			conn.Close()

			continue
		}

		return conn, nil
	}
}

// IsTFOEnabled возвращает true если TFO включен на listener.
func (l Listener) IsTFOEnabled() bool {
	return l.tfoEnabled
}

// NewListener создаёт TCP listener.
// Если enableTFO=true и ядро это поддерживает, включает TCP Fast Open;
// иначе listener работает как обычно. log может быть nil.
func NewListener(bindTo string, enableTFO bool, log gatelib.Logger) (Listener, error) {
	if log == nil {
		log = logger.NewNoopLogger()
	}

	rv := Listener{
		log:        log.Named("listener"),
		setOptions: network.SetClientSocketOptions,
	}

	if enableTFO {
		base, err := network.ListenTFO("tcp", bindTo, network.DefaultTFOQueueLen)
		if err != nil {
			return Listener{}, fmt.Errorf("cannot build TFO listener: %w", err)
		}

		rv.Listener = base
		rv.tfoEnabled = network.IsTFOServerEnabled()

		return rv, nil
	}

	base, err := net.Listen("tcp", bindTo)
	if err != nil {
		return Listener{}, fmt.Errorf("cannot build a base listener: %w", err)
	}

	rv.Listener = base

	return rv, nil
}
