package stratum

import (
	"unsafe"

	"github.com/stratumgo/stratum/internal/debug"
	"github.com/stratumgo/stratum/internal/list"
	"github.com/stratumgo/stratum/internal/osmem"
)

// arenaHeader occupies the first bytes of an arena's first page. The rest
// of that page is unused padding; it is never carved into a pool.
type arenaHeader struct {
	base     uintptr // the arena's own base address, for FreeArena and bounds checks
	pools    uint32  // total pool capacity, always poolsPerArena
	free     uint32  // count of raw pages not yet carved into a pool
	freeHead uintptr // head of the free raw-page list (0 if none)
	link     list.Link[arenaHeader]
}

// Key orders the arena list by ascending free count, fuller arenas first.
func (a *arenaHeader) Key() int { return int(a.free) }

func (a *arenaHeader) Link() *list.Link[arenaHeader] { return &a.link }

// allocArena maps a fresh, ArenaSize-aligned 256 KiB region from the OS,
// lays out its header in the first page, and threads the remaining
// poolsPerArena pages onto the free-pool list. Returns nil if the OS mapper
// is out of memory.
//
// Alignment matters: Memory.locateSmall recovers an arena's header by
// masking a block pointer down to its ArenaSize boundary and looking that
// address up in the registry, so every arena's base must actually sit on
// one.
func allocArena() *arenaHeader {
	raw := osmem.AllocAligned(ArenaSize, ArenaSize)
	if raw == nil {
		return nil
	}

	base := uintptr(unsafe.Pointer(raw))
	a := (*arenaHeader)(unsafe.Pointer(raw))
	a.base = base
	a.pools = poolsPerArena
	a.free = poolsPerArena

	var prev uintptr
	for i := uint32(0); i < poolsPerArena; i++ {
		page := base + uintptr(i+1)*PageSize
		*(*uintptr)(unsafe.Pointer(page)) = prev
		prev = page
	}
	a.freeHead = prev

	debug.Log([]any{"%v", debug.Dict("arena", "base", base)}, "alloc arena", "pools=%d", a.pools)

	return a
}

// freeArena returns an empty arena's region to the OS.
func freeArena(a *arenaHeader) {
	debug.Assert(a.free == a.pools, "freeArena: arena is not empty")

	debug.Log([]any{"%v", debug.Dict("arena", "base", a.base)}, "free arena", "ok")

	osmem.Free((*byte)(unsafe.Pointer(a.base)), ArenaSize)
}
