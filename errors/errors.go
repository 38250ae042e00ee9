package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where at the boundary the error occurred
type Phase string

const (
	PhaseAcquire  Phase = "acquire"  // runtime context startup
	PhaseSanitize Phase = "sanitize" // search path preparation
	PhaseLoad     Phase = "load"     // foreign module loading
	PhaseInit     Phase = "init"     // foreign initializer call
	PhaseMarshal  Phase = "marshal"  // native <-> guest conversion
	PhaseCompute  Phase = "compute"  // foreign compute call
	PhaseTeardown Phase = "teardown" // release and shutdown
)

// Kind categorizes the error
type Kind string

const (
	KindRuntimeStart  Kind = "runtime_start"
	KindNotFound      Kind = "not_found"
	KindInitFailed    Kind = "init_failed"
	KindInvalidHandle Kind = "invalid_handle"
	KindInvalidInput  Kind = "invalid_input"
	KindCountMismatch Kind = "count_mismatch"
	KindGuestTrap     Kind = "guest_trap"
	KindGuestError    Kind = "guest_error"
	KindAllocation    Kind = "allocation"
	KindDecode        Kind = "decode"
	KindOutOfBounds   Kind = "out_of_bounds"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for common boundary failures

// RuntimeStart wraps a failure to start the embedded runtime.
func RuntimeStart(cause error) *Error {
	return &Error{
		Phase:  PhaseAcquire,
		Kind:   KindRuntimeStart,
		Detail: "start embedded runtime",
		Cause:  cause,
	}
}

// ModuleNotFound reports an unresolvable foreign module name.
func ModuleNotFound(name string, searched []string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("module %q not found in search path %v", name, searched),
	}
}

// ExportNotFound reports a foreign module missing a required entry point.
func ExportNotFound(name string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("guest export %q not found", name),
	}
}

// InitFailed reports an initializer that declined or trapped.
func InitFailed(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseInit,
		Kind:   KindInitFailed,
		Detail: detail,
		Cause:  cause,
	}
}

// InvalidHandle reports an operation on a nil or destroyed handle.
func InvalidHandle(detail string) *Error {
	return &Error{
		Phase:  PhaseCompute,
		Kind:   KindInvalidHandle,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// CountMismatch reports a buffer whose length disagrees with the atom count.
func CountMismatch(what string, got, want int) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindCountMismatch,
		Detail: fmt.Sprintf("%s has %d elements, want %d", what, got, want),
	}
}

// GuestTrap wraps a trap raised inside the guest during a call.
func GuestTrap(phase Phase, entry string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindGuestTrap,
		Detail: fmt.Sprintf("guest entry point %q trapped", entry),
		Cause:  cause,
	}
}

// GuestError carries an error payload the guest returned without trapping.
func GuestError(phase Phase, msg string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindGuestError,
		Detail: msg,
	}
}

// Allocation reports a guest memory allocation failure.
func Allocation(size int, cause error) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("allocate %d bytes in guest memory", size),
		Cause:  cause,
	}
}

// Decode reports an unparseable guest response.
func Decode(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDecode,
		Detail: detail,
		Cause:  cause,
	}
}

// OutOfBounds reports a guest memory access outside linear memory.
func OutOfBounds(detail string) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindOutOfBounds,
		Detail: detail,
	}
}

// Wrap wraps an existing error with phase and kind context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
