package engine

import (
	"context"
	"os"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	macebridge "github.com/macebridge/mace-bridge"
	"github.com/macebridge/mace-bridge/errors"
)

// Context is the process-wide embedded runtime shared by every calculator.
// It is created when the first caller acquires it and destroyed when the
// last reference is released. Lifecycle transitions are serialized by an
// internal mutex, so concurrent Acquire and Release calls are safe.
type Context struct {
	runtime    wazero.Runtime
	searchPath []string
	home       string
}

var (
	mu       sync.Mutex
	shared   *Context
	refcount int
)

// Acquire returns the shared runtime context, starting the embedded runtime
// on the first call. The 0 -> 1 transition reads MACE_BRIDGE_HOME and
// assembles the module search path before the runtime is constructed;
// changing either environment variable afterwards has no effect until the
// context is fully torn down. A start failure leaves the reference count
// untouched, so a later Acquire retries from scratch.
func Acquire(ctx context.Context) (*Context, error) {
	mu.Lock()
	defer mu.Unlock()

	if refcount == 0 {
		home := os.Getenv(macebridge.EnvHome)
		path := buildSearchPath(home)

		r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig())
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
			_ = r.Close(ctx)
			return nil, errors.RuntimeStart(err)
		}

		shared = &Context{runtime: r, searchPath: path, home: home}
		Logger().Info("embedded runtime started",
			zap.String("home", home),
			zap.Strings("search_path", path))
	}

	refcount++
	return shared, nil
}

// Release decrements the reference count and shuts the runtime down when it
// reaches zero. Callers pair every successful Acquire with exactly one
// Release; the engine tolerates nothing else.
func (c *Context) Release(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if c == nil || shared != c || refcount == 0 {
		return errors.Wrap(errors.PhaseTeardown, errors.KindInvalidHandle, nil, "release of an inactive runtime context")
	}

	refcount--
	if refcount > 0 {
		return nil
	}

	r := c.runtime
	shared = nil
	c.runtime = nil

	if err := r.Close(ctx); err != nil {
		return errors.Wrap(errors.PhaseTeardown, errors.KindRuntimeStart, err, "shut down embedded runtime")
	}
	Logger().Info("embedded runtime stopped")
	return nil
}

// Refcount reports the number of outstanding references. Zero means the
// runtime is down and the next Acquire rebuilds it.
func Refcount() int {
	mu.Lock()
	defer mu.Unlock()
	return refcount
}

// SearchPath returns a copy of the module search path assembled when this
// context started.
func (c *Context) SearchPath() []string {
	out := make([]string, len(c.searchPath))
	copy(out, c.searchPath)
	return out
}
