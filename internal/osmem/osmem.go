// Package osmem is the thin boundary between Stratum and the host operating
// system: it hands out whole pages of address space and gives them back.
// Stratum's arenas and large allocations are both backed by regions obtained
// from this package; nothing above it ever calls mmap or malloc directly.
package osmem

import (
	"unsafe"

	"github.com/stratumgo/stratum/pkg/xunsafe/layout"
)

// PageSize is the granularity pages are allocated and freed at. Stratum's
// own page size (see the stratum package) is compiled in as the same value.
const PageSize = 4096

func roundToPage(size int) int {
	return layout.RoundUp(size, PageSize)
}

// AllocAligned is like Alloc, but the returned region is additionally
// aligned to align bytes, which must be a power of two and a multiple of
// PageSize. It
// over-allocates and trims the unwanted leading and trailing pages, so the
// result can be released with a plain Free(p, size) once size and align are
// both page multiples.
func AllocAligned(size, align int) *byte {
	if align <= PageSize {
		return Alloc(size)
	}

	total := size + align - PageSize

	raw := Alloc(total)
	if raw == nil {
		return nil
	}

	rawAddr := uintptr(unsafe.Pointer(raw))
	alignedAddr := layout.RoundUp(rawAddr, uintptr(align))

	if lead := alignedAddr - rawAddr; lead > 0 {
		Free(raw, int(lead))
	}

	mappedEnd := rawAddr + uintptr(roundToPage(total))
	allocEnd := alignedAddr + uintptr(size)
	if trail := mappedEnd - allocEnd; trail > 0 {
		Free((*byte)(unsafe.Pointer(allocEnd)), int(trail))
	}

	return (*byte)(unsafe.Pointer(alignedAddr))
}
