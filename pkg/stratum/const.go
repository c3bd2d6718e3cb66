// Package stratum is a general-purpose heap allocator. Small requests are
// served from a segregated, size-class-indexed slab hierarchy backed by
// page-aligned memory obtained from the operating system; large requests
// are delegated to the same OS memory provider through a thin header-tagged
// path.
//
// The hierarchy has three levels. An Arena is a 256 KiB, page-aligned
// region holding one header page plus 63 pages that are carved into Pools
// on demand. A Pool is a single 4 KiB page dedicated to one size class,
// holding a header followed by equal-sized Blocks threaded on a free list.
// A Block is the unit returned to the caller, sized to a multiple of the
// 8-byte quantum, up to 1024 bytes (128 size classes).
//
// Use Initialize to bring up the process-wide default allocator, Alloc/
// Calloc/Realloc/Free to use it, and Finalize to tear it down. A Memory
// value can also be used directly as an independent instance.
package stratum

import "github.com/stratumgo/stratum/internal/osmem"

const (
	// PageSize is the granularity arenas are carved into.
	PageSize = osmem.PageSize

	// ArenaSize is the size of one arena: one header page plus
	// poolsPerArena candidate pool pages.
	ArenaSize = 256 * 1024

	// poolsPerArena is P in spec terms: the number of pages in an arena
	// available to become pools, one fewer than the page count because one
	// page holds the arena header.
	poolsPerArena = ArenaSize/PageSize - 1

	// Quantum is the minimum allocation granularity and alignment.
	Quantum = 8

	// ClassMaxSize is the largest size served by the slab hierarchy;
	// requests above this take the large-allocation path.
	ClassMaxSize = 1024

	// NumClasses is the number of size classes, 0..NumClasses-1.
	NumClasses = ClassMaxSize / Quantum

	// MinimumReserve is the arena count below which an empty arena is kept
	// rather than released to the OS.
	MinimumReserve = 16

	// ShrinkThreshold is the maximum size-class gap across which a small
	// Realloc shrink is silently ignored.
	ShrinkThreshold = 10
)
