package stratum

import (
	"unsafe"

	"github.com/stratumgo/stratum/internal/debug"
	"github.com/stratumgo/stratum/internal/list"
)

// poolHeader occupies the first bytes of a carved page. The block region
// immediately follows it within the same page.
type poolHeader struct {
	arena    *arenaHeader // owning arena, used for provenance checks and FreePool
	bsz      uint32       // block size in bytes
	blocks   uint32       // total block count
	free     uint32       // count of currently unallocated blocks
	freeHead uintptr      // head of the free-block list (0 if none)
	link     list.Link[poolHeader]
}

// Key orders a class's pool list by ascending free count, fuller pools
// first.
func (p *poolHeader) Key() int { return int(p.free) }

func (p *poolHeader) Link() *list.Link[poolHeader] { return &p.link }

var poolHeaderSize = uint32(unsafe.Sizeof(poolHeader{}))

// allocPool carves one raw page out of arena into a pool of the given class.
// Precondition: arena.free > 0.
func allocPool(arena *arenaHeader, class int) *poolHeader {
	debug.Assert(arena.free > 0, "allocPool: arena has no free pages")

	page := arena.freeHead
	arena.freeHead = *(*uintptr)(unsafe.Pointer(page))
	arena.free--

	bsz := uint32(ClassToSize(class))
	blocks := (PageSize - poolHeaderSize) / bsz

	p := (*poolHeader)(unsafe.Pointer(page))
	p.arena = arena
	p.bsz = bsz
	p.blocks = blocks
	p.free = blocks
	p.link = list.Link[poolHeader]{}

	base := page + uintptr(poolHeaderSize)
	var prev uintptr
	for i := uint32(0); i < blocks; i++ {
		blk := base + uintptr(i)*uintptr(bsz)
		*(*uintptr)(unsafe.Pointer(blk)) = prev
		prev = blk
	}
	p.freeHead = prev

	debug.Log([]any{"%v", debug.Dict("pool", "page", page, "arena", arena.base)},
		"alloc pool", "class=%d bsz=%d blocks=%d", class, bsz, blocks)

	return p
}

// freePool returns an empty pool's page to its owning arena's free-pool
// list. Precondition: pool.free == pool.blocks.
func freePool(p *poolHeader) {
	debug.Assert(p.free == p.blocks, "freePool: pool is not empty")

	arena := p.arena
	page := uintptr(unsafe.Pointer(p))

	*(*uintptr)(unsafe.Pointer(page)) = arena.freeHead
	arena.freeHead = page
	arena.free++

	debug.Log([]any{"%v", debug.Dict("pool", "page", page, "arena", arena.base)}, "free pool", "ok")
}

// allocBlock unlinks and returns the head of the pool's free-block list.
// Its contents are indeterminate. Precondition: pool.free > 0.
func allocBlock(p *poolHeader) *byte {
	debug.Assert(p.free > 0, "allocBlock: pool has no free blocks")

	blk := p.freeHead
	p.freeHead = *(*uintptr)(unsafe.Pointer(blk))
	p.free--

	return (*byte)(unsafe.Pointer(blk))
}

// freeBlock pushes blk onto the pool's free-block list.
func freeBlock(p *poolHeader, blk *byte) {
	addr := uintptr(unsafe.Pointer(blk))

	*(*uintptr)(unsafe.Pointer(addr)) = p.freeHead
	p.freeHead = addr
	p.free++
}
