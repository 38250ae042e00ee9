// Package engine owns the embedded WebAssembly runtime and everything that
// touches it directly: the reference-counted process-wide runtime context,
// the module search path, and the adapter that turns an instantiated guest
// into a ForeignModule.
//
// # Lifecycle
//
// One runtime serves the whole process. Acquire starts it on the first call
// and Release shuts it down when the last reference goes away:
//
//	rctx, err := engine.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer rctx.Release(ctx)
//
//	mod, err := rctx.LoadForeignModule(ctx, macebridge.ModuleName)
//
// The refcount 0 -> 1 transition does the one-time environment preparation:
// MACE_BRIDGE_HOME is read and the module search path is assembled, both
// strictly before the runtime is constructed. After a full teardown a new
// Acquire repeats the preparation.
//
// # Search Path
//
// Foreign modules are resolved as <dir>/<name>.wasm against, in order: the
// running executable's ../modules directory, the sanitized entries of
// MACE_BRIDGE_MODULE_PATH (current-directory and empty entries removed), and
// <MACE_BRIDGE_HOME>/modules.
//
// # Guest ABI
//
// Requests and responses cross the boundary as JSON documents in guest
// linear memory. The guest exports alloc/free for buffer management; the two
// entry points take (ptr, len) and return ptr<<32|len of the response. The
// host copies the response out and frees both buffers.
package engine
