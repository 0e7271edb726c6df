package features

import (
	"fmt"
	"os"

	"github.com/zjrosen/mirrorkit/internal/bundle"
	"github.com/zjrosen/mirrorkit/internal/config"
	"github.com/zjrosen/mirrorkit/internal/flags"
	"github.com/zjrosen/mirrorkit/internal/infrastructure/sqlite"
	"github.com/zjrosen/mirrorkit/internal/log"
)

// OpenSource returns the payload source cfg.Assets selects and a function
// releasing it.
func OpenSource(assets config.AssetsConfig, cache config.CacheConfig, fl *flags.Registry) (bundle.Source, func() error, error) {
	var (
		src     bundle.Source
		closeFn = func() error { return nil }
	)

	switch assets.Source {
	case "", config.SourceFS:
		info, err := os.Stat(assets.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("assets dir: %w", err)
		}
		if !info.IsDir() {
			return nil, nil, fmt.Errorf("assets dir %s is not a directory", assets.Dir)
		}
		src = bundle.NewFSSource(os.DirFS(assets.Dir))
		log.Debug(log.CatBundle, "Using directory source", "dir", assets.Dir)

	case config.SourceSQLite:
		db, err := sqlite.NewDB(assets.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open payload store: %w", err)
		}
		src = db.PayloadStore()
		closeFn = db.Close
		log.Debug(log.CatBundle, "Using sqlite source", "path", assets.DBPath)

	default:
		return nil, nil, fmt.Errorf("unknown assets source %q", assets.Source)
	}

	if fl.Enabled(flags.FlagPayloadCache) {
		src = bundle.NewCached(src, cache.TTL)
		log.Debug(log.CatCache, "Payload cache enabled", "ttl", cache.TTL)
	}
	return src, closeFn, nil
}
