package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml"
)

// Parse reads TOML config. Keys are kebab-case: bind-to, max-validity,
// anti-replay and so on.
func Parse(rawData []byte) (*Config, error) {
	tree, err := toml.LoadBytes(rawData)
	if err != nil {
		return nil, fmt.Errorf("cannot parse toml config: %w", err)
	}

	jsonData, err := json.Marshal(camelizeKeys(tree.ToMap()))
	if err != nil {
		return nil, fmt.Errorf("cannot convert config to json: %w", err)
	}

	conf := &Config{}
	decoder := json.NewDecoder(bytes.NewReader(jsonData))

	decoder.DisallowUnknownFields()

	if err := decoder.Decode(conf); err != nil {
		return nil, fmt.Errorf("cannot parse config: %w", err)
	}

	return conf, nil
}

func camelizeKeys(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		rv := make(map[string]any, len(typed))

		for k, v := range typed {
			rv[camelize(k)] = camelizeKeys(v)
		}

		return rv
	case []any:
		rv := make([]any, len(typed))

		for i, v := range typed {
			rv[i] = camelizeKeys(v)
		}

		return rv
	case []map[string]any:
		rv := make([]any, len(typed))

		for i, v := range typed {
			rv[i] = camelizeKeys(v)
		}

		return rv
	}

	return value
}

func camelize(key string) string {
	parts := strings.Split(key, "-")

	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}

	return strings.Join(parts, "")
}
