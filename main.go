// influxgate is an ingestion checkpoint for signed telemetry.
//
// Collectors sign their observations with a shared key and post them to
// /update. The gate authenticates each assertion, rejects stale and
// replayed messages and writes the rest to InfluxDB.
package main

import (
	"fmt"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/influxgate/influxgate/internal/cli"
)

var version = "dev" // has to be set by ldflags

func main() {
	cli := &cli.CLI{}
	ctx := kong.Parse(cli, kong.Vars{
		"version": getVersion(),
	})

	ctx.FatalIfErrorf(ctx.Run(cli, version))
}

func getVersion() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}

	date := time.Now()
	commit := ""
	goVersion := buildInfo.GoVersion
	dirtySuffix := ""

	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.time":
			date, _ = time.Parse(time.RFC3339, setting.Value)
		case "vcs.revision":
			commit = setting.Value
		case "vcs.modified":
			if dirty, _ := strconv.ParseBool(setting.Value); dirty {
				dirtySuffix = " [dirty]"
			}
		}
	}

	return fmt.Sprintf("%s (%s: %s on %s%s)",
		version,
		goVersion,
		date.Format(time.RFC3339),
		commit,
		dirtySuffix)
}
