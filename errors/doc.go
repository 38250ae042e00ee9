// Package errors provides structured error types for the mace-bridge library.
//
// Errors are categorized by Phase (where at the boundary the error occurred)
// and Kind (error category). The four failure classes of the boundary map
// onto kinds as follows: construction failures are runtime_start, not_found
// and init_failed; invalid-argument failures are invalid_handle and
// invalid_input; computation failures are guest_trap, guest_error, decode,
// allocation and count_mismatch; resource-misuse is made unrepresentable by
// the calc package and has no kind.
//
// Use the convenience constructors for common patterns:
//
//	err := errors.ModuleNotFound("mace_calculator", searchPath)
//	err := errors.GuestTrap(errors.PhaseCompute, "compute", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
