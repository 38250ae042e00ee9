package calc

import (
	"context"

	"github.com/macebridge/mace-bridge/codec"
)

// ErrMsgCap bounds the result error message, matching the fixed-size field
// of the C ABI record. Longer messages are truncated, never overflowed.
const ErrMsgCap = 512

const invalidHandleMsg = "invalid calculator handle"

// Result is the caller-allocated record every calculate call fills in. On
// success Forces holds a freshly allocated flat sequence of 3*NumAtoms
// doubles whose ownership transfers to the caller; on failure Forces is nil
// and ErrMsg carries a bounded diagnostic.
type Result struct {
	Energy   float64
	Forces   []float64
	NumAtoms int
	Success  bool
	ErrMsg   string
}

func (r *Result) fail(msg string) {
	r.Energy = 0
	r.Forces = nil
	r.Success = false
	r.ErrMsg = truncate(msg)
}

// Calculate computes energy and forces for a non-periodic configuration.
// positions holds 3*numAtoms doubles in [x0 y0 z0 x1 ...] order and numbers
// the parallel atomic numbers. A nil res is ignored; a nil or closed handle
// writes a diagnostic into res without touching the runtime.
func (c *Calculator) Calculate(ctx context.Context, positions []float64, numbers []int32, numAtoms int, res *Result) {
	c.calculate(ctx, positions, numbers, numAtoms, nil, nil, res)
}

// CalculatePeriodic computes energy and forces under periodic boundary
// conditions. cell is the row-major 3x3 matrix as 9 doubles and pbc flags
// periodicity along each cell vector.
func (c *Calculator) CalculatePeriodic(ctx context.Context, positions []float64, numbers []int32, numAtoms int, cell []float64, pbc [3]bool, res *Result) {
	c.calculate(ctx, positions, numbers, numAtoms, cell, &pbc, res)
}

// calculate is the shared path of both variants. The failure handling is
// symmetric: every failure updates both the result record and the handle's
// persistent error string.
func (c *Calculator) calculate(ctx context.Context, positions []float64, numbers []int32, numAtoms int, cell []float64, pbc *[3]bool, res *Result) {
	if res == nil {
		return
	}
	if c == nil {
		res.fail(invalidHandleMsg)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.module == nil {
		res.fail(invalidHandleMsg)
		return
	}

	req, err := codec.BuildComputeRequest(positions, numbers, numAtoms, cell, pbc)
	if err != nil {
		c.failLocked(res, err)
		return
	}

	out, err := c.module.Compute(ctx, req)
	if err != nil {
		c.failLocked(res, err)
		return
	}

	forces, err := codec.FlattenForces(out.Forces, numAtoms)
	if err != nil {
		c.failLocked(res, err)
		return
	}

	res.Energy = out.Energy
	res.Forces = forces
	res.NumAtoms = numAtoms
	res.Success = true
	res.ErrMsg = ""
	c.lastErr = ""
}

// failLocked records a failure in the result and the persistent error
// string. Callers hold c.mu.
func (c *Calculator) failLocked(res *Result, err error) {
	msg := truncate(err.Error())
	res.fail(msg)
	c.lastErr = msg
}

// truncate bounds a message to ErrMsgCap bytes.
func truncate(s string) string {
	if len(s) > ErrMsgCap {
		return s[:ErrMsgCap]
	}
	return s
}
