package stratum

import (
	"unsafe"

	"github.com/stratumgo/stratum/internal/debug"
	"github.com/stratumgo/stratum/internal/osmem"
)

// largeHeader sits immediately before the user pointer of a large
// allocation, recording enough to recover the raw region passed to
// osmem.Free.
type largeHeader struct {
	size   uintptr
	offset uintptr // user pointer minus raw pointer
}

var largeHeaderSize = uintptr(unsafe.Sizeof(largeHeader{}))

// allocLarge obtains size bytes, plus header and alignment overhead, from
// the OS memory provider and returns a quantum-aligned user pointer with a
// largeHeader immediately before it.
func allocLarge(size int) *byte {
	total := size + int(largeHeaderSize) + Quantum

	raw := osmem.Alloc(total)
	if raw == nil {
		return nil
	}

	rawAddr := uintptr(unsafe.Pointer(raw))
	userAddr := roundUpUintptr(rawAddr+largeHeaderSize, Quantum)

	hdr := (*largeHeader)(unsafe.Pointer(userAddr - largeHeaderSize))
	hdr.size = uintptr(size)
	hdr.offset = userAddr - rawAddr

	return (*byte)(unsafe.Pointer(userAddr))
}

// freeLarge returns a large allocation's raw region to the OS memory
// provider.
func freeLarge(ptr *byte) {
	userAddr := uintptr(unsafe.Pointer(ptr))
	hdr := (*largeHeader)(unsafe.Pointer(userAddr - largeHeaderSize))

	rawAddr := userAddr - hdr.offset
	total := int(hdr.size) + int(largeHeaderSize) + Quantum

	osmem.Free((*byte)(unsafe.Pointer(rawAddr)), total)
}

// largeSize returns the user-requested size recorded in ptr's header.
func largeSize(ptr *byte) int {
	userAddr := uintptr(unsafe.Pointer(ptr))
	hdr := (*largeHeader)(unsafe.Pointer(userAddr - largeHeaderSize))

	return int(hdr.size)
}

func roundUpUintptr(v, align uintptr) uintptr {
	debug.Assert(align > 0, "roundUpUintptr: align must be positive")

	return (v + align - 1) &^ (align - 1)
}
