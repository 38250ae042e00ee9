// Package main provides the C ABI exports for non-Go hosts.
// Build with: go build -buildmode=c-shared -o libmacebridge.so ./capi
package main

/*
#include <stdint.h>
#include <stdlib.h>
#include <string.h>

// Result record for energy/forces calculations. Layout is fixed and
// compatibility sensitive.
typedef struct {
	double energy;       // total energy in eV
	double* forces;      // [fx0,fy0,fz0,fx1,...] eV/A, library-allocated
	int num_atoms;       // number of atoms
	int success;         // 1=success, 0=failure
	char error_msg[512]; // NUL-terminated, truncated on overflow
} MACEResult;
*/
import "C"

import (
	"context"
	"unsafe"

	"github.com/macebridge/mace-bridge/calc"
)

var invalidHandleMsg = C.CString("invalid calculator handle")

//export mace_init
func mace_init(modelPath, modelType, device *C.char, enableAcceleration C.int) C.uintptr_t {
	opts := calc.Options{EnableAcceleration: enableAcceleration != 0}
	if modelPath != nil {
		p := C.GoString(modelPath)
		opts.ModelPath = &p
	}
	if modelType != nil {
		opts.ModelType = C.GoString(modelType)
	}
	if device != nil {
		opts.Device = C.GoString(device)
	}

	c, err := calc.New(context.Background(), opts)
	if err != nil {
		// No handle exists yet, so there is nowhere to store the message.
		return 0
	}

	return C.uintptr_t(register(&entry{calc: c}))
}

//export mace_calculate
func mace_calculate(h C.uintptr_t, positions *C.double, atomicNumbers *C.int, numAtoms C.int, result *C.MACEResult) {
	e := lookup(uintptr(h))
	if e == nil || result == nil || positions == nil || atomicNumbers == nil || numAtoms < 0 {
		failResult(result, "invalid handle or argument")
		return
	}

	n := int(numAtoms)
	var res calc.Result
	e.calc.Calculate(context.Background(),
		goFloats(positions, 3*n), goInts(atomicNumbers, n), n, &res)
	fillResult(result, &res)
}

//export mace_calculate_periodic
func mace_calculate_periodic(h C.uintptr_t, positions *C.double, atomicNumbers *C.int, numAtoms C.int, cell *C.double, pbc *C.int, result *C.MACEResult) {
	e := lookup(uintptr(h))
	if e == nil || result == nil || positions == nil || atomicNumbers == nil || cell == nil || pbc == nil || numAtoms < 0 {
		failResult(result, "invalid handle or argument")
		return
	}

	n := int(numAtoms)
	flags := goInts(pbc, 3)
	var res calc.Result
	e.calc.CalculatePeriodic(context.Background(),
		goFloats(positions, 3*n), goInts(atomicNumbers, n), n,
		goFloats(cell, 9),
		[3]bool{flags[0] != 0, flags[1] != 0, flags[2] != 0}, &res)
	fillResult(result, &res)
}

//export mace_free_forces
func mace_free_forces(forces *C.double) {
	C.free(unsafe.Pointer(forces))
}

//export mace_free_result
func mace_free_result(result *C.MACEResult) {
	if result != nil && result.forces != nil {
		mace_free_forces(result.forces)
		result.forces = nil
	}
}

//export mace_destroy
func mace_destroy(h C.uintptr_t) {
	e := remove(uintptr(h))
	if e == nil {
		return
	}
	_ = e.calc.Close(context.Background())
	e.releaseErr()
}

//export mace_get_error
func mace_get_error(h C.uintptr_t) *C.char {
	mu.Lock()
	defer mu.Unlock()
	e := handles[uintptr(h)]
	if e == nil {
		return invalidHandleMsg
	}
	return (*C.char)(e.refreshErr(e.calc.LastError()))
}

// refreshErr returns the handle's C error string, reallocating it only when
// the message changed. Repeated reads between mutating operations therefore
// hand back the same pointer, which stays valid until the next reallocation
// here or the handle's destruction. Callers hold mu or own the entry
// exclusively.
func (e *entry) refreshErr(msg string) unsafe.Pointer {
	if e.cerr != nil && msg == e.cerrMsg {
		return e.cerr
	}
	if e.cerr != nil {
		C.free(e.cerr)
	}
	e.cerr = unsafe.Pointer(C.CString(msg))
	e.cerrMsg = msg
	return e.cerr
}

// releaseErr frees the handle's C error string.
func (e *entry) releaseErr() {
	if e.cerr != nil {
		C.free(e.cerr)
		e.cerr = nil
		e.cerrMsg = ""
	}
}

func goFloats(p *C.double, n int) []float64 {
	return unsafe.Slice((*float64)(unsafe.Pointer(p)), n)
}

func goInts(p *C.int, n int) []int32 {
	return unsafe.Slice((*int32)(unsafe.Pointer(p)), n)
}

// fillResult copies a calc.Result into the fixed C record. On success the
// forces buffer is C-allocated and ownership transfers to the caller, to be
// released exactly once via mace_free_forces or mace_free_result. A zero-atom
// success carries no buffer.
func fillResult(out *C.MACEResult, res *calc.Result) {
	if !res.Success {
		failResult(out, res.ErrMsg)
		return
	}

	out.energy = C.double(res.Energy)
	out.num_atoms = C.int(res.NumAtoms)
	out.success = 1
	out.error_msg[0] = 0
	out.forces = nil

	if len(res.Forces) == 0 {
		return
	}
	buf := C.malloc(C.size_t(len(res.Forces)) * C.size_t(unsafe.Sizeof(C.double(0))))
	if buf == nil {
		failResult(out, "allocate forces buffer")
		return
	}
	copy(unsafe.Slice((*float64)(buf), len(res.Forces)), res.Forces)
	out.forces = (*C.double)(buf)
}

// failResult writes a failure into the record, truncating the message to
// the field capacity with a terminating NUL. A nil record is ignored.
func failResult(out *C.MACEResult, msg string) {
	if out == nil {
		return
	}
	out.energy = 0
	out.forces = nil
	out.num_atoms = 0
	out.success = 0
	writeErrMsg(unsafe.Slice((*byte)(unsafe.Pointer(&out.error_msg[0])), len(out.error_msg)), msg)
}

// In-process view of the C record. The package tests drive the record
// handling through these; C callers read the struct directly.

func newRecord() unsafe.Pointer {
	return C.calloc(1, C.size_t(unsafe.Sizeof(C.MACEResult{})))
}

func freeRecord(p unsafe.Pointer) {
	mace_free_result((*C.MACEResult)(p))
	C.free(p)
}

func fillRecord(p unsafe.Pointer, res *calc.Result) {
	fillResult((*C.MACEResult)(p), res)
}

func failRecord(p unsafe.Pointer, msg string) {
	failResult((*C.MACEResult)(p), msg)
}

func releaseRecordForces(p unsafe.Pointer) {
	mace_free_result((*C.MACEResult)(p))
}

func recordForcesPtr(p unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer((*C.MACEResult)(p).forces)
}

func readRecord(p unsafe.Pointer) calc.Result {
	r := (*C.MACEResult)(p)
	out := calc.Result{
		Energy:   float64(r.energy),
		NumAtoms: int(r.num_atoms),
		Success:  r.success != 0,
		ErrMsg:   C.GoString(&r.error_msg[0]),
	}
	if r.forces != nil {
		out.Forces = append([]float64(nil), goFloats(r.forces, 3*out.NumAtoms)...)
	}
	return out
}

func errPtrForHandle(h uintptr) unsafe.Pointer {
	return unsafe.Pointer(mace_get_error(C.uintptr_t(h)))
}

func goErr(p unsafe.Pointer) string {
	return C.GoString((*C.char)(p))
}

func main() {}
