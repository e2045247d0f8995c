package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// TypeListFile is a path to a readable file with a list of networks.
type TypeListFile struct {
	Value string
}

func (t *TypeListFile) Set(value string) error {
	stat, err := os.Stat(value)
	if err != nil {
		return fmt.Errorf("incorrect filepath (%s): %w", value, err)
	}

	switch {
	case stat.IsDir():
		return fmt.Errorf("value is correct filepath but directory")
	case stat.Mode().Perm()&0o400 == 0:
		return fmt.Errorf("value is correct filepath but not readable")
	}

	value, err = filepath.Abs(value)
	if err != nil {
		return fmt.Errorf(
			"value is correct filepath but cannot resolve absolute (%s): %w",
			value, err)
	}

	t.Value = value

	return nil
}

func (t *TypeListFile) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeListFile) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeListFile) String() string {
	return t.Value
}
