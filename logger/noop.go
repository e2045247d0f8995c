package logger

import "github.com/influxgate/influxgate/gatelib"

type noopLogger struct{}

func (n noopLogger) Named(_ string) gatelib.Logger { return n }
func (n noopLogger) BindInt(_ string, _ int) gatelib.Logger { return n }
func (n noopLogger) BindStr(_, _ string) gatelib.Logger { return n }
func (n noopLogger) BindJSON(_, _ string) gatelib.Logger { return n }
func (n noopLogger) Printf(_ string, _ ...interface{}) {}
func (n noopLogger) Info(_ string) {}
func (n noopLogger) InfoError(_ string, _ error) {}
func (n noopLogger) Warning(_ string) {}
func (n noopLogger) WarningError(_ string, _ error) {}
func (n noopLogger) Debug(_ string) {}
func (n noopLogger) DebugError(_ string, _ error) {}

// NewNoopLogger returns a logger which discards all events.
func NewNoopLogger() gatelib.Logger {
	return noopLogger{}
}
