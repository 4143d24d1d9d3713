// Package keystore provides the durable secure storage backends used to
// remember the signed-in identity.
package keystore

import (
	"fmt"

	"github.com/daylist/daylist/internal/session"
)

// ErrNotFound is returned by Get when a key is absent
var ErrNotFound = session.ErrKeyNotFound

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend
type Options struct {
	Backend string
	Path    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open returns the backend named in opts
func Open(opts Options) (session.KeyStore, error) {
	switch opts.Backend {
	case BackendFile, "":
		if opts.Path == "" {
			return nil, fmt.Errorf("file key store requires a path")
		}
		return NewFile(opts.Path), nil
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis key store requires an address")
		}
		return NewRedis(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisPrefix), nil
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown key store backend %q", opts.Backend)
	}
}
