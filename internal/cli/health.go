package cli

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/influxgate/influxgate/gatelib"
	"github.com/influxgate/influxgate/internal/utils"
)

// healthCheckTimeout — максимальное время ожидания ответа.
// 5 секунд достаточно для проверки доступности, при этом docker не считает
// контейнер unhealthy из-за случайных задержек.
const healthCheckTimeout = 5 * time.Second

// Health проверяет работоспособность gate.
// Используется в Dockerfile HEALTHCHECK.
//
// Алгоритм:
// 1. Парсит конфиг для определения адресов
// 2. Если Prometheus включён — HTTP GET metrics endpoint, ожидает 200
// 3. Иначе GET /update самого gate — живой gate отвечает 405
type Health struct {
	ConfigPath string `kong:"arg,required,type='existingfile',help='Path to config file.',name='config-path'"` //nolint: lll
}

func (h Health) Run(cli *CLI, version string) error {
	conf, err := utils.ReadConfig(h.ConfigPath)
	if err != nil {
		return fmt.Errorf("cannot parse config: %w", err)
	}

	if conf.Stats.Prometheus.Enabled.Get(false) {
		url, err := localURL(conf.Stats.Prometheus.BindTo.Get(""), conf.Stats.Prometheus.HTTPPath.Get("/"))
		if err != nil {
			return err
		}

		return checkHTTP(url, http.StatusOK)
	}

	url, err := localURL(conf.BindTo.Get(""), gatelib.UpdatePath)
	if err != nil {
		return err
	}

	return checkHTTP(url, http.StatusMethodNotAllowed)
}

// localURL — для healthcheck всегда подключаемся к localhost.
func localURL(bindTo, path string) (string, error) {
	_, port, err := net.SplitHostPort(bindTo)
	if err != nil || port == "" {
		return "", fmt.Errorf("incorrect bind address %q", bindTo)
	}

	return "http://" + net.JoinHostPort("127.0.0.1", port) + path, nil
}

// checkHTTP проверяет HTTP endpoint — ожидает заданный статус.
func checkHTTP(url string, expectedStatus int) error {
	client := &http.Client{
		Timeout: healthCheckTimeout,
	}

	resp, err := client.Get(url) //nolint: noctx
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain body для корректного закрытия соединения
	io.Copy(io.Discard, resp.Body) //nolint: errcheck

	if resp.StatusCode != expectedStatus {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}

	return nil
}
