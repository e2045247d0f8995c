package cli

import (
	"fmt"

	"github.com/influxgate/influxgate/gatelib"
)

type GenerateKey struct{}

func (g GenerateKey) Run(cli *CLI, _ string) error {
	fmt.Println(gatelib.GenerateSecretKey().Base64()) //nolint: forbidigo

	return nil
}
