package cli

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/influxgate/influxgate/internal/config"
)

// SimpleRun mirrors environment of collectors: the same variables
// configure both sides.
type SimpleRun struct { //nolint: lll
	Secret         string        `kong:"required,env='INFLUX_SKEY',help='Base64 encoded shared secret key.',name='secret',short='s'"`
	BindTo         string        `kong:"default='0.0.0.0:8080',env='INFLUX_BIND_TO',help='Host:port to bind the gate to.',name='bind-to',short='b'"`
	InfluxAddr     string        `kong:"env='INFLUX_ADDR',help='Hostname of InfluxDB. Records are logged if empty.',name='influx-addr'"`
	InfluxPort     uint16        `kong:"default='8086',env='INFLUX_PORT',help='Port of InfluxDB.',name='influx-port'"`
	InfluxDB       string        `kong:"default='telemetry',env='INFLUX_DB',help='Database of InfluxDB.',name='influx-db'"`
	InfluxUser     string        `kong:"env='INFLUX_USER',help='Username of InfluxDB.',name='influx-user'"`
	InfluxPassword string        `kong:"env='INFLUX_PASSWORD',help='Password of InfluxDB.',name='influx-password'"`
	MaxExpiration  uint          `kong:"default='60',env='INFLUX_MAX_EXPIRATION',help='Maximal validity of a message in seconds.',name='max-expiration'"`
	Debug          bool          `kong:"help='Run in debug mode.',short='d'"`
	PrometheusBind string        `kong:"help='Host:port to serve Prometheus metrics on.',name='prometheus-bind-to'"`
	RateLimit      float64       `kong:"help='Maximal number of requests per second per IP. 0 disables limiting.',name='rate-limit'"`
	FlushInterval  time.Duration `kong:"default='1s',help='How often collected records are written.',name='flush-interval'"`
}

func (s SimpleRun) Run(cli *CLI, version string) error {
	conf, err := s.makeConfig()
	if err != nil {
		return fmt.Errorf("incorrect settings: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	return runGate(conf, version)
}

func (s SimpleRun) makeConfig() (*config.Config, error) { //nolint: cyclop
	conf := &config.Config{}

	if err := conf.Secret.Set(s.Secret); err != nil {
		return nil, fmt.Errorf("incorrect secret: %w", err)
	}

	if err := conf.BindTo.Set(s.BindTo); err != nil {
		return nil, fmt.Errorf("incorrect bind-to parameter: %w", err)
	}

	if err := conf.MaxValidity.Set((time.Duration(s.MaxExpiration) * time.Second).String()); err != nil {
		return nil, fmt.Errorf("incorrect max-expiration: %w", err)
	}

	conf.Debug.Value = s.Debug

	if s.InfluxAddr != "" {
		hostPort := net.JoinHostPort(s.InfluxAddr, strconv.Itoa(int(s.InfluxPort)))
		if err := conf.Sink.Influx.URL.Set("http://" + hostPort); err != nil {
			return nil, fmt.Errorf("incorrect influx-addr: %w", err)
		}

		conf.Sink.Influx.Enabled.Value = true
		conf.Sink.Influx.Database = s.InfluxDB
		conf.Sink.Influx.Username = s.InfluxUser
		conf.Sink.Influx.Password = s.InfluxPassword

		if err := conf.Sink.Influx.FlushInterval.Set(s.FlushInterval.String()); err != nil {
			return nil, fmt.Errorf("incorrect flush-interval: %w", err)
		}
	}

	if s.PrometheusBind != "" {
		if err := conf.Stats.Prometheus.BindTo.Set(s.PrometheusBind); err != nil {
			return nil, fmt.Errorf("incorrect prometheus-bind-to: %w", err)
		}

		conf.Stats.Prometheus.Enabled.Value = true
	}

	if s.RateLimit > 0 {
		conf.Defense.RateLimit.Enabled.Value = true
		conf.Defense.RateLimit.PerSecond.Value = s.RateLimit
	}

	return conf, nil
}
