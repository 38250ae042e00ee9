package engine

import (
	"context"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	macebridge "github.com/macebridge/mace-bridge"
	"github.com/macebridge/mace-bridge/codec"
	"github.com/macebridge/mace-bridge/errors"
)

// GuestModule adapts one instantiated foreign module to the ForeignModule
// capability interface. Each calculator owns its own instance; the wazero
// instance underneath is not safe for concurrent calls, so callers serialize
// access (the calc package does this with a per-handle mutex).
type GuestModule struct {
	name       string
	mod        api.Module
	initialize api.Function
	compute    api.Function
	alloc      api.Function
	free       api.Function
}

var _ macebridge.ForeignModule = (*GuestModule)(nil)

// LoadForeignModule resolves name against the search path, compiles the
// module and instantiates it. The required entry points are bound eagerly so
// a malformed guest fails here instead of at the first calculate call.
func (c *Context) LoadForeignModule(ctx context.Context, name string) (*GuestModule, error) {
	path, err := locate(name, c.searchPath)
	if err != nil {
		return nil, err
	}

	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "read module file")
	}

	compiled, err := c.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "compile module")
	}

	cfg := wazero.NewModuleConfig().WithName("") // anonymous, one instance per handle
	if c.home != "" {
		cfg = cfg.WithFSConfig(wazero.NewFSConfig().WithReadOnlyDirMount(c.home, "/"))
	}

	mod, err := c.runtime.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "instantiate module")
	}

	g := &GuestModule{name: name, mod: mod}
	for _, b := range []struct {
		name string
		fn   *api.Function
	}{
		{macebridge.ExportInitialize, &g.initialize},
		{macebridge.ExportCompute, &g.compute},
		{macebridge.ExportAlloc, &g.alloc},
		{macebridge.ExportFree, &g.free},
	} {
		f := mod.ExportedFunction(b.name)
		if f == nil {
			_ = mod.Close(ctx)
			return nil, errors.ExportNotFound(b.name)
		}
		*b.fn = f
	}

	Logger().Debug("foreign module loaded",
		zap.String("module", name),
		zap.String("path", path))
	return g, nil
}

// Initialize calls the guest initializer. A false return without an error
// payload means the guest declined to build a model.
func (g *GuestModule) Initialize(ctx context.Context, cfg macebridge.InitConfig) (bool, error) {
	req, err := codec.EncodeInitRequest(cfg)
	if err != nil {
		return false, err
	}

	resp, err := g.invoke(ctx, errors.PhaseInit, macebridge.ExportInitialize, g.initialize, req)
	if err != nil {
		return false, err
	}

	return codec.DecodeInitResponse(resp)
}

// Compute calls the guest compute entry point with the fixed four-field
// request shape and decodes the keyed response.
func (g *GuestModule) Compute(ctx context.Context, req macebridge.ComputeRequest) (*macebridge.ComputeResult, error) {
	payload, err := codec.EncodeComputeRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := g.invoke(ctx, errors.PhaseCompute, macebridge.ExportCompute, g.compute, payload)
	if err != nil {
		return nil, err
	}

	return codec.DecodeComputeResponse(resp)
}

// Close releases the module instance. The shared runtime context is released
// separately by the handle owner.
func (g *GuestModule) Close(ctx context.Context) error {
	if g.mod == nil {
		return nil
	}
	err := g.mod.Close(ctx)
	g.mod = nil
	g.initialize, g.compute, g.alloc, g.free = nil, nil, nil, nil
	if err != nil {
		return errors.Wrap(errors.PhaseTeardown, errors.KindInvalidInput, err, "close module instance")
	}
	return nil
}

// invoke moves one request through guest memory: allocate, write, call,
// read back the packed ptr<<32|len response, copy it out, free both buffers.
// A trap inside the guest surfaces as a guest_trap error.
func (g *GuestModule) invoke(ctx context.Context, phase errors.Phase, entry string, fn api.Function, payload []byte) ([]byte, error) {
	if g.mod == nil {
		return nil, errors.InvalidHandle("module instance is closed")
	}

	size := uint64(len(payload))
	allocRes, err := g.alloc.Call(ctx, size)
	if err != nil || len(allocRes) == 0 || allocRes[0] == 0 {
		return nil, errors.Allocation(len(payload), err)
	}
	inPtr := allocRes[0]

	mem := g.mod.Memory()
	if !mem.Write(uint32(inPtr), payload) {
		_, _ = g.free.Call(ctx, inPtr, size)
		return nil, errors.OutOfBounds("write request payload")
	}

	callRes, err := fn.Call(ctx, inPtr, size)
	if err != nil {
		// The instance may be unusable after a trap; freeing is best effort.
		_, _ = g.free.Call(ctx, inPtr, size)
		return nil, errors.GuestTrap(phase, entry, err)
	}
	_, _ = g.free.Call(ctx, inPtr, size)

	if len(callRes) == 0 {
		return nil, errors.Decode(phase, "guest returned no response handle", nil)
	}

	outPtr := uint32(callRes[0] >> 32)
	outLen := uint32(callRes[0])
	view, ok := mem.Read(outPtr, outLen)
	if !ok {
		return nil, errors.OutOfBounds("read response payload")
	}

	resp := make([]byte, len(view))
	copy(resp, view) // the view aliases guest memory and dies with the free below
	_, _ = g.free.Call(ctx, uint64(outPtr), uint64(outLen))

	return resp, nil
}
