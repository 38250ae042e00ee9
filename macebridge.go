package macebridge

import "context"

// Fixed names of the foreign module contract. These are compatibility
// sensitive: the guest binary is built separately from this library.
const (
	// ModuleName is the foreign module's logical name. The locator appends
	// the .wasm suffix when searching the module path.
	ModuleName = "mace_calculator"

	// Guest entry points. initialize and compute take a (ptr, len) pair
	// addressing a JSON request in guest memory and return a packed
	// ptr<<32|len of the JSON response. alloc and free manage guest buffers.
	ExportInitialize = "initialize"
	ExportCompute    = "compute"
	ExportAlloc      = "alloc"
	ExportFree       = "free"

	// PrecisionTag is passed verbatim to the initializer.
	PrecisionTag = "float32"
)

// Environment variables read by the engine. Both are read once, on the
// refcount 0 -> 1 transition, before the runtime is constructed; changing
// them afterwards has no effect until a full teardown.
const (
	// EnvHome points at an isolated runtime distribution. When set, its
	// modules subdirectory joins the search path and the directory is
	// mounted read-only into the guest filesystem.
	EnvHome = "MACE_BRIDGE_HOME"

	// EnvModulePath seeds the module search path (OS path-list syntax).
	EnvModulePath = "MACE_BRIDGE_MODULE_PATH"
)

// InitConfig carries the initializer arguments. A nil ModelPath selects the
// guest's pretrained model for ModelType.
type InitConfig struct {
	ModelPath          *string
	ModelType          string
	Device             string
	EnableAcceleration bool
}

// ComputeRequest is an atomic configuration in the guest's container shape:
// positions grouped into ordered triples, parallel atomic numbers, and an
// optional periodic cell. Cell and PBC are nil for the non-periodic variant;
// they still cross the boundary as explicit nulls so the compute entry point
// always receives the same four-field shape.
type ComputeRequest struct {
	Positions     [][3]float64
	AtomicNumbers []int32
	Cell          *[3][3]float64
	PBC           *[3]bool
}

// ComputeResult is the guest's answer: total energy and per-atom force
// triples in input atom order. Values are not range-checked; NaN and Inf
// pass through.
type ComputeResult struct {
	Energy float64
	Forces [][3]float64
}

// ForeignModule is the capability surface of a loaded foreign module.
// Exactly two operations exist besides teardown; call sites bind to this
// interface instead of resolving guest exports by name.
//
// Initialize reports false when the guest declines to build a model without
// trapping. Compute either succeeds or returns an error; a guest trap is
// converted into an error before it reaches the caller.
type ForeignModule interface {
	Initialize(ctx context.Context, cfg InitConfig) (bool, error)
	Compute(ctx context.Context, req ComputeRequest) (*ComputeResult, error)
	Close(ctx context.Context) error
}
