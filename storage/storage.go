// Package storage opens the DocumentStore driver selected by the configuration.
package storage

import (
	"context"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/store"
	"github.com/coursebox/backend/storage/jsonfile"
	"github.com/coursebox/backend/storage/memory"
	"github.com/coursebox/backend/storage/redisdoc"
)

// drivers
const (
	DriverFile   = "file"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

var (
	ErrUnknownDriver = errors.New("unknown storage driver")

	redisAttempts = 10 // mockable
)

// Open returns the configured DocumentStore and a func releasing its resources.
func Open(ctx context.Context, conf *core.Config, logger core.Logger) (store.DocumentStore, func() error, error) {
	noop := func() error { return nil }

	switch conf.Storage.Driver {
	case "", DriverFile:
		dir := conf.Storage.DataDir
		if !filepath.IsAbs(dir) && conf.WorkDir != "" {
			dir = filepath.Join(conf.WorkDir, dir)
		}
		docs, err := jsonfile.Open(dir, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using json file storage", "dir", docs.Dir())
		return docs, noop, nil

	case DriverMemory:
		logger.Warn("using in-memory storage: data is lost on exit")
		return memory.New(), noop, nil

	case DriverRedis:
		docs, err := openRedis(ctx, conf.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis storage", "addr", conf.Redis.Addr, "prefix", conf.Redis.Prefix)
		return docs, docs.Close, nil

	default:
		return nil, nil, errors.Wrapf(ErrUnknownDriver, "%q", conf.Storage.Driver)
	}
}

// openRedis waits for the server to be ready. Waits 100ms longer between each attempt.
func openRedis(ctx context.Context, conf core.RedisConfig) (*redisdoc.Store, error) {
	var err error
	for attempts := 1; attempts <= redisAttempts; attempts++ {
		var docs *redisdoc.Store
		if docs, err = redisdoc.Open(ctx, conf); err == nil {
			return docs, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return nil, errors.Wrap(err, "redis ping timeout")
}
