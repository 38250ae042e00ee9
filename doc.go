// Package macebridge embeds a WebAssembly runtime in-process and exposes
// MACE-style energy/force calculations to host applications without making
// them link against the runtime directly.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	macebridge/          Root package with the ForeignModule capability interface
//	├── calc/            Calculator handles, the calculate protocol and results
//	├── codec/           Marshaling between flat buffers and guest containers
//	├── engine/          Runtime lifecycle, search path and wazero integration
//	├── errors/          Structured error types for boundary failures
//	├── capi/            C ABI exports for non-Go hosts (c-shared build)
//	└── cmd/macecalc/    CLI runner and interactive TUI
//
// # Quick Start
//
// Create a calculator and compute energy and forces:
//
//	c, err := calc.New(ctx, calc.Options{ModelType: "small", Device: "cpu"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close(ctx)
//
//	var res calc.Result
//	c.Calculate(ctx, positions, numbers, 3, &res)
//	if res.Success {
//	    fmt.Println(res.Energy, res.Forces) // forces has 3*N elements
//	}
//
// # Foreign Module
//
// The numerical model lives in a separate WebAssembly module named
// mace_calculator. It is resolved against the module search path
// (MACE_BRIDGE_MODULE_PATH, the executable's ../modules directory, and the
// isolated distribution under MACE_BRIDGE_HOME) and must export the fixed
// entry points named by the root package constants.
//
// # Lifecycle
//
// All calculators in a process share one embedded runtime. The runtime is
// started when the first calculator is created and shut down when the last
// one is closed; see the engine package for the reference counting rules.
//
// # Thread Safety
//
// A Calculator serializes its own compute calls. Creating and closing
// calculators concurrently is safe; sharing one Result across goroutines
// is not.
package macebridge
