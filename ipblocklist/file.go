package ipblocklist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadCIDRs reads networks from a FireHOL-like list: one network or IP
// per line, # starts a comment.
func ReadCIDRs(reader io.Reader) ([]string, error) {
	rv := []string{}
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := scanner.Text()

		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if _, err := parseNetwork(line); err != nil {
			return nil, err
		}

		rv = append(rv, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read a list: %w", err)
	}

	return rv, nil
}

// NewCIDRFromFiles builds a list from inline networks and files.
func NewCIDRFromFiles(cidrs []string, paths []string) (CIDR, error) {
	all := append([]string{}, cidrs...)

	for _, path := range paths {
		networks, err := readFile(path)
		if err != nil {
			return CIDR{}, fmt.Errorf("cannot read %s: %w", path, err)
		}

		all = append(all, networks...)
	}

	return NewCIDR(all)
}

func readFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	defer file.Close()

	return ReadCIDRs(file)
}
