package config

import (
	"fmt"
	"net/url"
)

// TypeURL is an http(s) URL. Credentials in URL are not allowed: they
// have their own settings and are masked in logs.
type TypeURL struct {
	Value string
}

func (t *TypeURL) Set(value string) error {
	parsedURL, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("incorrect url (%s): %w", value, err)
	}

	switch parsedURL.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("unknown schema %s (%s)", parsedURL.Scheme, value)
	}

	if parsedURL.Hostname() == "" {
		return fmt.Errorf("incorrect host in url %s", value)
	}

	if parsedURL.User != nil {
		return fmt.Errorf("credentials in url are not allowed (%s)", parsedURL.Redacted())
	}

	t.Value = parsedURL.String()

	return nil
}

func (t TypeURL) Get(defaultValue string) string {
	if t.Value == "" {
		return defaultValue
	}

	return t.Value
}

func (t *TypeURL) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeURL) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeURL) String() string {
	return t.Value
}
