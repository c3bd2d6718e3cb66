//go:build !unix

package osmem

import "github.com/stratumgo/stratum/internal/debug"

// Alloc always fails on platforms osmem does not know how to map memory on.
func Alloc(size int) *byte {
	debug.Log([]any{"%v", debug.Dict("alloc", "size", size)}, "osmem.alloc", "unsupported platform: %v", debug.Unsupported())
	return nil
}

// Free is a no-op on platforms osmem does not know how to map memory on.
func Free(p *byte, size int) {}
