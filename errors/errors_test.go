package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := &Error{
		Phase:  PhaseCompute,
		Kind:   KindGuestTrap,
		Detail: "guest entry point \"compute\" trapped",
		Cause:  fmt.Errorf("out of fuel"),
	}

	got := err.Error()
	for _, want := range []string{"[compute]", "guest_trap", "compute", "caused by: out of fuel"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
}

func TestErrorFormattingMinimal(t *testing.T) {
	err := &Error{Phase: PhaseAcquire, Kind: KindRuntimeStart}
	if got := err.Error(); got != "[acquire] runtime_start" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsMatchesPhaseAndKind(t *testing.T) {
	err := ModuleNotFound("mace_calculator", []string{"/opt/modules"})

	if !stderrors.Is(err, &Error{Phase: PhaseLoad, Kind: KindNotFound}) {
		t.Error("expected Is to match phase and kind")
	}
	if stderrors.Is(err, &Error{Phase: PhaseInit, Kind: KindNotFound}) {
		t.Error("expected Is to reject a different phase")
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := RuntimeStart(cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable via Unwrap")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err   *Error
		phase Phase
		kind  Kind
		want  string
	}{
		{ModuleNotFound("m", []string{"/a"}), PhaseLoad, KindNotFound, `module "m" not found`},
		{ExportNotFound("compute"), PhaseLoad, KindNotFound, `guest export "compute"`},
		{InitFailed("declined", nil), PhaseInit, KindInitFailed, "declined"},
		{InvalidHandle("closed"), PhaseCompute, KindInvalidHandle, "closed"},
		{CountMismatch("positions", 8, 9), PhaseMarshal, KindCountMismatch, "positions has 8 elements, want 9"},
		{GuestTrap(PhaseInit, "initialize", nil), PhaseInit, KindGuestTrap, `"initialize" trapped`},
		{GuestError(PhaseCompute, "not initialized"), PhaseCompute, KindGuestError, "not initialized"},
		{Allocation(64, nil), PhaseMarshal, KindAllocation, "allocate 64 bytes"},
		{Decode(PhaseCompute, "bad json", nil), PhaseCompute, KindDecode, "bad json"},
		{OutOfBounds("read response"), PhaseMarshal, KindOutOfBounds, "read response"},
	}

	for _, tt := range tests {
		if tt.err.Phase != tt.phase {
			t.Errorf("%v: phase = %q, want %q", tt.err, tt.err.Phase, tt.phase)
		}
		if tt.err.Kind != tt.kind {
			t.Errorf("%v: kind = %q, want %q", tt.err, tt.err.Kind, tt.kind)
		}
		if !strings.Contains(tt.err.Error(), tt.want) {
			t.Errorf("%v: missing %q", tt.err, tt.want)
		}
	}
}
