package codec

import (
	macebridge "github.com/macebridge/mace-bridge"
	"github.com/macebridge/mace-bridge/errors"
)

// Flat-buffer regrouping. The ABI hands positions and forces around as flat
// sequences of 3N doubles; the guest works with ordered triples. Atom index
// order is preserved in both directions. Lengths are the only thing checked
// here; values, including NaN and Inf, pass through untouched.

// GroupPositions regroups a flat [x0 y0 z0 x1 ...] sequence into numAtoms
// ordered triples.
func GroupPositions(flat []float64, numAtoms int) ([][3]float64, error) {
	if numAtoms < 0 {
		return nil, errors.InvalidInput(errors.PhaseMarshal, "negative atom count")
	}
	if len(flat) != 3*numAtoms {
		return nil, errors.CountMismatch("positions", len(flat), 3*numAtoms)
	}

	out := make([][3]float64, numAtoms)
	for i := 0; i < numAtoms; i++ {
		out[i] = [3]float64{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return out, nil
}

// CheckAtomicNumbers validates the parallel atomic-number sequence against
// the declared atom count.
func CheckAtomicNumbers(numbers []int32, numAtoms int) error {
	if len(numbers) != numAtoms {
		return errors.CountMismatch("atomic numbers", len(numbers), numAtoms)
	}
	return nil
}

// GroupCell regroups a flat row-major 9-element cell into three row triples.
func GroupCell(flat []float64) (*[3][3]float64, error) {
	if len(flat) != 9 {
		return nil, errors.CountMismatch("cell", len(flat), 9)
	}

	var cell [3][3]float64
	for i := 0; i < 3; i++ {
		cell[i] = [3]float64{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return &cell, nil
}

// FlattenForces unpacks numAtoms force triples into a freshly allocated flat
// sequence of 3N doubles in the same atom order. Ownership of the returned
// slice transfers to the caller.
func FlattenForces(rows [][3]float64, numAtoms int) ([]float64, error) {
	if len(rows) != numAtoms {
		return nil, errors.CountMismatch("forces", len(rows), numAtoms)
	}

	out := make([]float64, 3*numAtoms)
	for i, row := range rows {
		out[i*3] = row[0]
		out[i*3+1] = row[1]
		out[i*3+2] = row[2]
	}
	return out, nil
}

// BuildComputeRequest assembles the fixed four-field request from flat
// buffers. cell and pbc are nil for the non-periodic variant; they are still
// carried as explicit nulls on the wire.
func BuildComputeRequest(positions []float64, numbers []int32, numAtoms int, cell []float64, pbc *[3]bool) (macebridge.ComputeRequest, error) {
	var req macebridge.ComputeRequest

	grouped, err := GroupPositions(positions, numAtoms)
	if err != nil {
		return req, err
	}
	if err := CheckAtomicNumbers(numbers, numAtoms); err != nil {
		return req, err
	}

	req.Positions = grouped
	req.AtomicNumbers = numbers
	req.PBC = pbc

	if cell != nil {
		req.Cell, err = GroupCell(cell)
		if err != nil {
			return macebridge.ComputeRequest{}, err
		}
	}
	return req, nil
}
