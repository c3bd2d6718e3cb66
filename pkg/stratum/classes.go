package stratum

import "github.com/stratumgo/stratum/internal/debug"

// SizeToClass returns the size class serving requests of n bytes.
// n must be in [1, ClassMaxSize]; requests outside that range do not belong
// to the slab hierarchy.
func SizeToClass(n int) int {
	debug.Assert(n >= 1 && n <= ClassMaxSize, "SizeToClass: size out of range: %d", n)

	return (n+Quantum-1)/Quantum - 1
}

// ClassToSize returns the block size housed by size class c.
func ClassToSize(c int) int {
	debug.Assert(c >= 0 && c < NumClasses, "ClassToSize: class out of range: %d", c)

	return (c + 1) * Quantum
}
