//go:build unix

package osmem

import (
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/stratumgo/stratum/internal/debug"
)

// Alloc maps a fresh, zero-filled, anonymous region of at least size bytes
// and returns a pointer to its first byte, or nil on failure.
func Alloc(size int) *byte {
	n := roundToPage(size)

	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		debug.Log([]any{"%v", debug.Dict("mmap", "size", n)}, "osmem.alloc", "failed: %v", errors.Wrap(err, "mmap"))
		return nil
	}

	return &b[0]
}

// Free returns a region previously obtained from Alloc with the same size to
// the operating system.
func Free(p *byte, size int) {
	n := roundToPage(size)

	b := unsafe.Slice(p, n)
	if err := unix.Munmap(b); err != nil {
		debug.Log([]any{"%v", debug.Dict("munmap", "addr", p, "size", n)}, "osmem.free", "failed: %v", errors.Wrap(err, "munmap"))
	}
}
