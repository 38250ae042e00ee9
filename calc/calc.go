package calc

import (
	"context"
	"sync"

	macebridge "github.com/macebridge/mace-bridge"
	"github.com/macebridge/mace-bridge/engine"
	"github.com/macebridge/mace-bridge/errors"
)

// Defaults applied when Options fields are left zero.
const (
	DefaultModelType = "medium"
	DefaultDevice    = "cuda"
)

// Options configures calculator construction. A nil ModelPath selects the
// foreign module's pretrained model for ModelType.
type Options struct {
	ModelPath          *string
	ModelType          string
	Device             string
	EnableAcceleration bool
}

// Calculator is a handle to one loaded foreign module instance. All
// calculators in a process share the embedded runtime; each owns its module
// reference exclusively. Compute calls on one handle are serialized
// internally because the guest instance is a single execution context.
//
// A closed calculator stays safe to call: operations fail with an
// invalid-handle result instead of corrupting state.
type Calculator struct {
	mu      sync.Mutex
	module  macebridge.ForeignModule
	rctx    *engine.Context
	lastErr string
	closed  bool
}

// loadForeignModule is a seam for tests; production code always resolves
// through the runtime context.
var loadForeignModule = func(ctx context.Context, rctx *engine.Context, name string) (macebridge.ForeignModule, error) {
	return rctx.LoadForeignModule(ctx, name)
}

// New builds a calculator: it acquires the shared runtime (starting it on
// the first call), loads the foreign module by its fixed name, and runs the
// guest initializer. Any failure releases everything acquired so far and
// returns only an error; no handle exists to carry an error string, so the
// error value is the whole story.
func New(ctx context.Context, opts Options) (*Calculator, error) {
	if opts.ModelType == "" {
		opts.ModelType = DefaultModelType
	}
	if opts.Device == "" {
		opts.Device = DefaultDevice
	}

	rctx, err := engine.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	mod, err := loadForeignModule(ctx, rctx, macebridge.ModuleName)
	if err != nil {
		_ = rctx.Release(ctx)
		return nil, err
	}

	ok, err := mod.Initialize(ctx, macebridge.InitConfig{
		ModelPath:          opts.ModelPath,
		ModelType:          opts.ModelType,
		Device:             opts.Device,
		EnableAcceleration: opts.EnableAcceleration,
	})
	if err != nil || !ok {
		_ = mod.Close(ctx)
		_ = rctx.Release(ctx)
		if err == nil {
			err = errors.InitFailed("initializer returned false", nil)
		}
		return nil, err
	}

	return &Calculator{module: mod, rctx: rctx}, nil
}

// Close releases the module reference and then the shared runtime context.
// It is idempotent and a nil receiver is a no-op; operations after Close
// report an invalid handle rather than misbehaving.
func (c *Calculator) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var first error
	if c.module != nil {
		first = c.module.Close(ctx)
		c.module = nil
	}
	if c.rctx != nil {
		if err := c.rctx.Release(ctx); err != nil && first == nil {
			first = err
		}
		c.rctx = nil
	}
	return first
}

// LastError returns the handle's persistent error string: the message of
// the most recent failed calculate call, or "" after a success. It stays
// valid until the next mutating operation on the handle.
func (c *Calculator) LastError() string {
	if c == nil {
		return "invalid calculator handle"
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
