package cache

import (
	"context"
	"errors"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

var _ Cache = (*Local)(nil)

// Local is an in-process cache backed by freecache.
type Local struct {
	cache *freecache.Cache
}

func NewLocal(sizeMB int) *Local {
	megabyte := 1024 * 1024
	return &Local{
		cache: freecache.NewCache(sizeMB * megabyte),
	}
}

func (l *Local) Get(_ context.Context, key string) ([]byte, bool) {
	val, err := l.cache.Get([]byte(key))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("local cache get [%s]: %s", key, err)
		}
		return nil, false
	}
	return val, true
}

func (l *Local) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return l.cache.Set([]byte(key), value, int(ttl.Seconds()))
}
