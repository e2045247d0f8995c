package cli

import "github.com/alecthomas/kong"

type CLI struct {
	GenerateKey GenerateKey      `kong:"cmd,help='Generate new shared secret key.'"`
	Sign        Sign             `kong:"cmd,help='Sign a telemetry record the same way collectors do.'"`
	Run         Run              `kong:"cmd,help='Run gate.'"`
	SimpleRun   SimpleRun        `kong:"cmd,help='Run gate without config file.'"`
	Health      Health           `kong:"cmd,help='Check gate health.'"`
	Version     kong.VersionFlag `kong:"help='Print version.',short='v'"`
}
