package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/influxgate/influxgate/gatelib"
)

var ErrReplayWindowTooShort = errors.New("anti-replay window is shorter than max validity")

type Optional struct {
	Enabled TypeBool `json:"enabled"`
}

type ListConfig struct {
	Optional

	CIDRs []TypeCIDR     `json:"cidrs"`
	Files []TypeListFile `json:"files"`
}

// Strings returns all inline networks of the list.
func (l ListConfig) Strings() []string {
	rv := make([]string, 0, len(l.CIDRs))

	for _, v := range l.CIDRs {
		rv = append(rv, v.Value)
	}

	return rv
}

// Paths returns all files of the list.
func (l ListConfig) Paths() []string {
	rv := make([]string, 0, len(l.Files))

	for _, v := range l.Files {
		rv = append(rv, v.Value)
	}

	return rv
}

type Config struct {
	Debug        TypeBool         `json:"debug"`
	Secret       TypeSecretKey    `json:"secret"`
	MACAlgorithm TypeMACAlgorithm `json:"macAlgorithm"`
	BindTo       TypeHostPort     `json:"bindTo"`
	MaxValidity  TypeDuration     `json:"maxValidity"`
	MaxBodySize  TypeBytes        `json:"maxBodySize"`
	Defense      struct {
		AntiReplay struct {
			Kind       TypeReplayKind      `json:"kind"`
			Rotation   TypeRotationPolicy  `json:"rotation"`
			Duplicates TypeDuplicatePolicy `json:"duplicates"`
			Window     TypeDuration        `json:"window"`
			MaxSize    TypeBytes           `json:"maxSize"`
			ErrorRate  TypeErrorRate       `json:"errorRate"`
		} `json:"antiReplay"`
		Freshness struct {
			// ReportLongValidity отделяет «слишком долгий срок» от
			// «просрочено» в ответах и метриках.
			ReportLongValidity TypeBool `json:"reportLongValidity"`
		} `json:"freshness"`
		// RateLimit — ограничение количества запросов на IP.
		RateLimit struct {
			Optional

			// PerSecond — максимальное количество запросов в секунду на IP.
			// Default: 0 (отключено)
			PerSecond TypeRateLimit `json:"perSecond"`

			// Burst — максимальный burst для rate limiter.
			// Default: 20
			Burst TypeConcurrency `json:"burst"`
		} `json:"rateLimit"`
		Blocklist ListConfig `json:"blocklist"`
		Allowlist ListConfig `json:"allowlist"`
	} `json:"defense"`
	Sink struct {
		Influx struct {
			Optional

			URL             TypeURL         `json:"url"`
			Database        string          `json:"database"`
			RetentionPolicy string          `json:"retentionPolicy"`
			Username        string          `json:"username"`
			Password        string          `json:"password"`
			Timeout         TypeDuration    `json:"timeout"`
			BatchSize       TypeConcurrency `json:"batchSize"`
			FlushInterval   TypeDuration    `json:"flushInterval"`
			Concurrency     TypeConcurrency `json:"concurrency"`
		} `json:"influx"`
	} `json:"sink"`
	Network struct {
		Timeout struct {
			TCP  TypeDuration `json:"tcp"`
			HTTP TypeDuration `json:"http"`
			Idle TypeDuration `json:"idle"`
		} `json:"timeout"`
		DOHIP   TypeIP      `json:"dohIp"`
		DNSMode TypeDNSMode `json:"dnsMode"`
		// TCPFastOpen включает TCP Fast Open на listener.
		// Требует поддержки ядром (net.ipv4.tcp_fastopen & 2).
		TCPFastOpen    TypeBool `json:"tcpFastOpen"`
		CircuitBreaker struct {
			Threshold TypeConcurrency `json:"threshold"`
			Cooldown  TypeDuration    `json:"cooldown"`
		} `json:"circuitBreaker"`
	} `json:"network"`
	Stats struct {
		StatsD struct {
			Optional

			Address      TypeHostPort        `json:"address"`
			MetricPrefix TypeMetricPrefix    `json:"metricPrefix"`
			TagFormat    TypeStatsdTagFormat `json:"tagFormat"`
		} `json:"statsd"`
		Prometheus struct {
			Optional

			BindTo       TypeHostPort     `json:"bindTo"`
			HTTPPath     TypeHTTPPath     `json:"httpPath"`
			MetricPrefix TypeMetricPrefix `json:"metricPrefix"`
		} `json:"prometheus"`
	} `json:"stats"`
}

func (c *Config) Validate() error {
	if !c.Secret.Value.Valid() {
		return fmt.Errorf("invalid secret")
	}

	if c.BindTo.Get("") == "" {
		return fmt.Errorf("incorrect bind-to parameter %s", c.BindTo.String())
	}

	// Окно обязано покрывать весь срок жизни сообщения, иначе
	// повтор после ротации пройдёт незамеченным.
	if c.Defense.AntiReplay.Kind.Get(TypeReplayKindGenerational) == TypeReplayKindGenerational {
		maxValidity := c.MaxValidity.Get(gatelib.DefaultMaxValidity)

		if window := c.Defense.AntiReplay.Window.Get(maxValidity); window < maxValidity {
			return fmt.Errorf("%w: %s < %s", ErrReplayWindowTooShort, window, maxValidity)
		}
	}

	if c.Sink.Influx.Enabled.Get(false) {
		if c.Sink.Influx.URL.Get("") == "" {
			return fmt.Errorf("sink.influx.url is required when influx sink is enabled")
		}

		if c.Sink.Influx.Database == "" {
			return fmt.Errorf("sink.influx.database is required when influx sink is enabled")
		}
	}

	// Prometheus: bindTo обязателен если включён
	if c.Stats.Prometheus.Enabled.Get(false) {
		if c.Stats.Prometheus.BindTo.Get("") == "" {
			return fmt.Errorf("prometheus.bindTo is required when prometheus is enabled")
		}
	}

	// StatsD: address обязателен если включён
	if c.Stats.StatsD.Enabled.Get(false) {
		if c.Stats.StatsD.Address.Get("") == "" {
			return fmt.Errorf("statsd.address is required when statsd is enabled")
		}
	}

	return nil
}

func (c *Config) String() string {
	// Секрет маскируется самим TypeSecretKey, пароль — здесь.
	safe := *c
	if safe.Sink.Influx.Password != "" {
		safe.Sink.Influx.Password = "***"
	}

	buf := &bytes.Buffer{}
	encoder := json.NewEncoder(buf)

	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(safe); err != nil {
		return "{}"
	}

	return buf.String()
}
