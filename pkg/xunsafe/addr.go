//go:build go1.20

package xunsafe

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/stratumgo/stratum/pkg/xunsafe/layout"
)

// Addr is a typed address: the bit pattern of a *T, but not a pointer as far
// as the garbage collector is concerned.
//
// Storing values of type Addr instead of *T avoids write barriers and keeps
// the collector from tracing through the field, which matters when the
// memory the address refers to is not part of the Go heap (for example,
// memory obtained directly from the operating system). Unlike a plain
// uintptr, Addr carries the pointee type, so arithmetic on it is scaled the
// way pointer arithmetic on *T would be.
//
// The zero value is the null address.
type Addr[T any] int

// AddrOf returns the address of p.
func AddrOf[T any](p *T) Addr[T] {
	return Addr[T](uintptr(unsafe.Pointer(p)))
}

// EndOf returns the address just past the last element of s.
func EndOf[S ~[]E, E any](s S) Addr[E] {
	size := layout.Size[E]()
	base := uintptr(unsafe.Pointer(unsafe.SliceData(s)))
	return Addr[E](base + uintptr(len(s)*size))
}

// AssertValid reinterprets this address as a *T.
//
// The caller is responsible for knowing that the address is actually valid;
// this function performs no checks of its own.
func (a Addr[T]) AssertValid() *T {
	return (*T)(unsafe.Pointer(uintptr(a)))
}

// Add adds n to a, scaled by the size of T, as if a were a *T.
func (a Addr[T]) Add(n int) Addr[T] {
	return a + Addr[T](n*layout.Size[T]())
}

// ByteAdd adds n bytes to a, without scaling.
func (a Addr[T]) ByteAdd(n int) Addr[T] {
	return a + Addr[T](n)
}

// Sub computes the distance from b to a, scaled by the size of T.
func (a Addr[T]) Sub(b Addr[T]) int {
	return int(a-b) / layout.Size[T]()
}

// Padding returns the number of bytes that must be added to a to reach the
// next multiple of align.
func (a Addr[T]) Padding(align int) int {
	return layout.Padding(int(a), align)
}

// RoundUpTo rounds a up to the next multiple of align.
func (a Addr[T]) RoundUpTo(align int) Addr[T] {
	return Addr[T](layout.RoundUp(int(a), align))
}

// SignBit returns whether the top bit of a is set.
//
// This is mostly useful for checking whether an address looks like a
// userspace or kernel address on platforms that partition the address space
// that way.
func (a Addr[T]) SignBit() bool {
	return a&math.MinInt != 0
}

// SignBitMask returns an all-ones value if a's sign bit is set, and zero
// otherwise.
func (a Addr[T]) SignBitMask() Addr[T] {
	if a.SignBit() {
		return ^Addr[T](0)
	}
	return 0
}

// ClearSignBit returns a with its top bit cleared.
func (a Addr[T]) ClearSignBit() Addr[T] {
	return a &^ math.MinInt
}

// Format implements fmt.Formatter, printing the address in hexadecimal.
func (a Addr[T]) Format(f fmt.State, verb rune) {
	if verb == 'x' || verb == 'X' {
		fmt.Fprintf(f, fmt.FormatString(f, verb), uintptr(a))
		return
	}
	fmt.Fprintf(f, "0x%x", uintptr(a))
}
