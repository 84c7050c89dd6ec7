package logsvc

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coursebox/backend/core"
)

// NewZap builds the zap logger behind RollbarLogger: human-readable in debug, JSON otherwise.
func NewZap(conf *core.Config) (*zap.Logger, error) {
	var zc zap.Config
	if conf.Debug {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "ts"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if conf.TestMode {
		zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	zl, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return zl.With(zap.String("app", conf.AppName), zap.String("build", conf.Build)), nil
}
