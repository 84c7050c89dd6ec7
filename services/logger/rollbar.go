package logsvc

import (
	"fmt"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/coursebox/backend/core"
)

// RollbarLogger reports to Rollbar and writes every entry to a zap logger.
type RollbarLogger struct {
	zl *zap.SugaredLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(zl *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Address)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{zl: zl.Sugar()}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Named returns a logger whose entries are tagged with component (e.g. "API", "STORE").
func (l RollbarLogger) Named(component string) *RollbarLogger {
	return &RollbarLogger{zl: l.zl.Named(component)}
}

// Sync flushes both sinks.
func (l RollbarLogger) Sync() {
	rollbar.Wait()
	_ = l.zl.Sync()
}

type entry struct {
	err    error
	extras map[string]interface{}
	caller *core.Caller
}

// parse splits args into an error, extra fields and the caller.
// expected args: error | map[string]interface{} | core.Caller | key/value pairs
func parse(args []interface{}) entry {
	e := entry{extras: make(map[string]interface{})}
	for i := 0; i < len(args); i++ {
		switch arg := args[i].(type) {
		case error:
			e.err = arg
		case map[string]interface{}:
			for k, v := range arg {
				e.extras[k] = v
			}
		case core.Caller:
			c := arg
			e.caller = &c
		case string:
			if i+1 < len(args) {
				e.extras[arg] = args[i+1]
				i++
			} else {
				e.extras["arg"] = arg
			}
		default:
			e.extras[fmt.Sprintf("arg%d", i)] = arg
		}
	}
	return e
}

// rollbarArgs builds the item arguments. The caller travels as custom data of the item; the
// process-wide rollbar person is never set.
func (e entry) rollbarArgs(msg string) []interface{} {
	args := []interface{}{msg}
	if e.err != nil {
		args = append(args, e.err)
	}
	custom := make(map[string]interface{}, len(e.extras)+1)
	for k, v := range e.extras {
		custom[k] = v
	}
	if e.caller != nil {
		custom["person"] = map[string]string{"id": e.caller.Email, "email": e.caller.Email}
	}
	if len(custom) > 0 {
		args = append(args, custom)
	}
	return args
}

func (e entry) zapArgs() []interface{} {
	kv := make([]interface{}, 0, 2*len(e.extras)+4)
	if e.err != nil {
		kv = append(kv, "error", fmt.Sprintf("%+v", e.err))
	}
	if e.caller != nil {
		kv = append(kv, "caller_email", e.caller.Email)
	}
	for k, v := range e.extras {
		kv = append(kv, k, v)
	}
	return kv
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	e := parse(args)
	rollbar.Debug(e.rollbarArgs(msg)...)
	l.zl.Debugw(msg, e.zapArgs()...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	e := parse(args)
	rollbar.Info(e.rollbarArgs(msg)...)
	l.zl.Infow(msg, e.zapArgs()...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	e := parse(args)
	rollbar.Warning(e.rollbarArgs(msg)...)
	l.zl.Warnw(msg, e.zapArgs()...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	e := parse(args)
	rollbar.Error(e.rollbarArgs(msg)...)
	l.zl.Errorw(msg, e.zapArgs()...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	e := parse(args)
	rollbar.Critical(e.rollbarArgs(msg)...)
	rollbar.Wait()
	l.zl.Fatalw(msg, e.zapArgs()...)
}
