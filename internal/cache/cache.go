package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache stores serialized values for a limited time.
// A miss is reported with ok == false; errors are logged by the implementations.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Backend string

const (
	BackendNone  Backend = ""
	BackendLocal Backend = "local"
	BackendRedis Backend = "redis"
)

func (b Backend) IsValid() bool {
	switch b {
	case BackendNone, BackendLocal, BackendRedis:
		return true
	}
	return false
}

func (b Backend) String() string {
	if b == BackendNone {
		return "none"
	}
	return string(b)
}

func ParseBackend(s string) (Backend, error) {
	b := Backend(s)
	if s == "none" {
		b = BackendNone
	}
	if !b.IsValid() {
		return BackendNone, fmt.Errorf("unknown cache backend: %s", s)
	}
	return b, nil
}
