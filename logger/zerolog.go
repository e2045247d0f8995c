package logger

import (
	"fmt"

	"github.com/influxgate/influxgate/gatelib"
	"github.com/rs/zerolog"
)

type zeroLogContext struct {
	log        *zerolog.Logger
	name       string
	fieldsInt  map[string]int
	fieldsStr  map[string]string
	fieldsJSON map[string]string
}

func (z *zeroLogContext) Named(name string) gatelib.Logger {
	newName := name

	if z.name != "" {
		newName = z.name + "." + name
	}

	ctx := z.clone()
	ctx.name = newName

	return ctx
}

func (z *zeroLogContext) BindInt(name string, value int) gatelib.Logger {
	ctx := z.clone()
	ctx.fieldsInt[name] = value

	return ctx
}

func (z *zeroLogContext) BindStr(name, value string) gatelib.Logger {
	ctx := z.clone()
	ctx.fieldsStr[name] = value

	return ctx
}

func (z *zeroLogContext) BindJSON(name, value string) gatelib.Logger {
	ctx := z.clone()
	ctx.fieldsJSON[name] = value

	return ctx
}

func (z *zeroLogContext) Printf(format string, args ...interface{}) {
	z.Debug(fmt.Sprintf(format, args...))
}

func (z *zeroLogContext) Info(msg string) {
	z.InfoError(msg, nil)
}

func (z *zeroLogContext) Warning(msg string) {
	z.WarningError(msg, nil)
}

func (z *zeroLogContext) Debug(msg string) {
	z.DebugError(msg, nil)
}

func (z *zeroLogContext) InfoError(msg string, err error) {
	z.emitLog(z.log.Info(), msg, err)
}

func (z *zeroLogContext) WarningError(msg string, err error) {
	z.emitLog(z.log.Warn(), msg, err)
}

func (z *zeroLogContext) DebugError(msg string, err error) {
	z.emitLog(z.log.Debug(), msg, err)
}

func (z *zeroLogContext) emitLog(evt *zerolog.Event, msg string, err error) {
	// уровень отключён: не тратим время на поля
	if evt == nil {
		return
	}

	evt = evt.Str("logger", z.name)

	for k, v := range z.fieldsStr {
		evt = evt.Str(k, v)
	}

	for k, v := range z.fieldsInt {
		evt = evt.Int(k, v)
	}

	for k, v := range z.fieldsJSON {
		evt = evt.RawJSON(k, []byte(v))
	}

	if err != nil {
		evt = evt.Err(err)
	}

	evt.Msg(msg)
}

func (z *zeroLogContext) clone() *zeroLogContext {
	rv := &zeroLogContext{
		log:        z.log,
		name:       z.name,
		fieldsInt:  make(map[string]int, len(z.fieldsInt)),
		fieldsStr:  make(map[string]string, len(z.fieldsStr)),
		fieldsJSON: make(map[string]string, len(z.fieldsJSON)),
	}

	for k, v := range z.fieldsInt {
		rv.fieldsInt[k] = v
	}

	for k, v := range z.fieldsStr {
		rv.fieldsStr[k] = v
	}

	for k, v := range z.fieldsJSON {
		rv.fieldsJSON[k] = v
	}

	return rv
}

// NewZeroLogger returns a logger which is using rs/zerolog library.
func NewZeroLogger(log zerolog.Logger) gatelib.Logger {
	return &zeroLogContext{
		log:        &log,
		fieldsInt:  map[string]int{},
		fieldsStr:  map[string]string{},
		fieldsJSON: map[string]string{},
	}
}
