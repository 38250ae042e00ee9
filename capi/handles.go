package main

import (
	"sync"
	"unsafe"

	"github.com/macebridge/mace-bridge/calc"
)

// Handles cross the C boundary as integer IDs, never Go pointers. The table
// keeps the calculator alive and owns the C copy of its persistent error
// string.
type entry struct {
	calc    *calc.Calculator
	cerr    unsafe.Pointer // C copy of cerrMsg, owned by the entry
	cerrMsg string
}

var (
	mu      sync.Mutex
	handles = make(map[uintptr]*entry)
	nextID  uintptr = 1
)

// register stores the entry and returns its ID. IDs start at 1; 0 is the
// failure sentinel of mace_init and never maps to an entry.
func register(e *entry) uintptr {
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	handles[id] = e
	return id
}

func lookup(id uintptr) *entry {
	mu.Lock()
	defer mu.Unlock()
	return handles[id]
}

// remove unregisters and returns the entry, or nil for an unknown ID.
func remove(id uintptr) *entry {
	mu.Lock()
	defer mu.Unlock()
	e := handles[id]
	delete(handles, id)
	return e
}

// writeErrMsg copies msg into a fixed-size message field, truncating so the
// terminating NUL always fits. It returns the number of message bytes
// written.
func writeErrMsg(buf []byte, msg string) int {
	n := copy(buf[:len(buf)-1], msg)
	buf[n] = 0
	return n
}
