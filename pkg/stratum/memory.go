package stratum

import (
	"sync"
	"unsafe"

	"github.com/stratumgo/stratum/internal/debug"
	"github.com/stratumgo/stratum/internal/list"
	"github.com/stratumgo/stratum/pkg/xunsafe"
)

// Memory is one independent allocator instance: a collection of arenas and,
// per size class, a collection of non-full pools. The zero value is ready
// to use after Initialize.
//
// A Memory value must not be copied after first use.
type Memory struct {
	_ xunsafe.NoCopy

	muArena  sync.Mutex
	arenas   list.OrderedList[arenaHeader, *arenaHeader]
	registry map[uintptr]*arenaHeader // arena base -> header, guarded by muArena

	muClass [NumClasses]sync.Mutex
	pools   [NumClasses]list.OrderedList[poolHeader, *poolHeader]
}

// Initialize is idempotent: if this instance already owns arenas, it
// returns true without creating more. Otherwise it creates exactly
// MinimumReserve arenas, rolling back and returning false if the OS mapper
// refuses partway through.
func (m *Memory) Initialize() bool {
	m.muArena.Lock()
	defer m.muArena.Unlock()

	if m.arenas.Count() > 0 {
		return true
	}

	for i := 0; i < MinimumReserve; i++ {
		a := allocArena()
		if a == nil {
			m.finalizeLocked()
			return false
		}
		m.arenas.Insert(a)
		m.registerArenaLocked(a)
	}

	return true
}

// Finalize pops and frees every arena. The caller must ensure there are no
// outstanding allocations; Memory does not track live blocks.
func (m *Memory) Finalize() {
	m.muArena.Lock()
	defer m.muArena.Unlock()

	m.finalizeLocked()
}

func (m *Memory) finalizeLocked() {
	for {
		a := m.arenas.Pop()
		if a == nil {
			break
		}
		m.unregisterArenaLocked(a)
		freeArena(a)
	}
}

func (m *Memory) registerArenaLocked(a *arenaHeader) {
	if m.registry == nil {
		m.registry = make(map[uintptr]*arenaHeader, MinimumReserve)
	}
	m.registry[a.base] = a
}

func (m *Memory) unregisterArenaLocked(a *arenaHeader) {
	delete(m.registry, a.base)
}

// Alloc returns a pointer to size freshly allocated, uninitialized bytes, or
// nil if the OS memory provider is out of memory. size must be positive.
func (m *Memory) Alloc(size int) *byte {
	debug.Assert(size > 0, "Alloc: size must be positive, got %d", size)

	if size <= ClassMaxSize {
		c := SizeToClass(size)

		m.muClass[c].Lock()
		defer m.muClass[c].Unlock()

		pool := m.getPool(c)
		if pool == nil {
			return nil
		}

		blk := allocBlock(pool)
		if pool.free == 0 {
			m.pools[c].Remove(pool)
		}

		return blk
	}

	return allocLarge(size)
}

// getPool returns the first (fullest) non-full pool for class c, carving a
// new one if the class list is empty. Must be called with muClass[c] held.
func (m *Memory) getPool(c int) *poolHeader {
	if p := m.pools[c].Head(); p != nil {
		return p
	}

	p := m.allocatePool(c)
	if p == nil {
		return nil
	}
	m.pools[c].Insert(p)

	return p
}

// allocatePool carves a pool of class c from an existing arena with spare
// capacity, or a freshly created one. Must be called with muClass[c] held;
// acquires muArena internally (L_C[c] then L_A, per the locking
// discipline).
func (m *Memory) allocatePool(c int) *poolHeader {
	m.muArena.Lock()
	defer m.muArena.Unlock()

	a := m.arenas.FindFree()
	if a == nil {
		a = allocArena()
		if a == nil {
			return nil
		}
		m.arenas.Insert(a)
		m.registerArenaLocked(a)
	}

	p := allocPool(a, c)
	m.arenas.Sort(a)

	return p
}

// Calloc allocates space for num elements of size bytes each and zero-fills
// it. Returns nil if either argument is zero.
func (m *Memory) Calloc(num, size int) *byte {
	if num == 0 || size == 0 {
		return nil
	}

	total := num * size

	p := m.Alloc(total)
	if p == nil {
		return nil
	}

	xunsafe.Clear(p, total)

	return p
}

// Free returns ptr, previously obtained from Alloc/Calloc/Realloc on this
// Memory, for reuse. Free(nil) is a no-op.
func (m *Memory) Free(ptr *byte) {
	if ptr == nil {
		return
	}

	if pool, ok := m.locateSmall(ptr); ok {
		c := SizeToClass(int(pool.bsz))

		m.muClass[c].Lock()
		defer m.muClass[c].Unlock()

		wasFull := pool.free == 0
		freeBlock(pool, ptr)
		m.releasePolicy(pool, c, wasFull)

		return
	}

	freeLarge(ptr)
}

// releasePolicy implements spec §4.3. Must be called with muClass[c] held
// immediately after freeBlock.
func (m *Memory) releasePolicy(pool *poolHeader, c int, wasFull bool) {
	if pool.free < pool.blocks {
		if wasFull {
			m.pools[c].Insert(pool)
		} else {
			m.pools[c].Sort(pool)
		}
		return
	}

	if !wasFull {
		m.pools[c].Remove(pool)
	}

	m.muArena.Lock()
	defer m.muArena.Unlock()

	a := pool.arena
	freePool(pool)

	if a.free != a.pools {
		m.arenas.Sort(a)
		return
	}

	if m.arenas.Count() > MinimumReserve {
		m.arenas.Remove(a)
		m.unregisterArenaLocked(a)
		freeArena(a)
	}
}

// Realloc resizes the allocation at ptr to size bytes, preserving its
// contents up to the smaller of the old and new sizes. ptr == nil behaves
// as Alloc(size). Returns nil on allocation failure, leaving the original
// allocation intact.
func (m *Memory) Realloc(ptr *byte, size int) *byte {
	if ptr == nil {
		return m.Alloc(size)
	}

	if pool, ok := m.locateSmall(ptr); ok {
		if size <= ClassMaxSize {
			actual := SizeToClass(int(pool.bsz))
			desired := SizeToClass(size)
			if actual >= desired && actual-desired < ShrinkThreshold {
				return ptr
			}
		}

		newPtr := m.Alloc(size)
		if newPtr == nil {
			return nil
		}

		copySize := int(pool.bsz)
		if size < copySize {
			copySize = size
		}
		xunsafe.Copy(newPtr, ptr, copySize)
		m.Free(ptr)

		return newPtr
	}

	oldSize := largeSize(ptr)
	if size > ClassMaxSize && oldSize >= size {
		return ptr
	}

	newPtr := m.Alloc(size)
	if newPtr == nil {
		return nil
	}

	copySize := oldSize
	if size < copySize {
		copySize = size
	}
	xunsafe.Copy(newPtr, ptr, copySize)
	m.Free(ptr)

	return newPtr
}

// locateSmall determines whether ptr belongs to one of this Memory's
// arenas, per the provenance probe in spec §3: round ptr down to its
// arena's base and look it up in the registry (kept under muArena rather
// than dereferenced blindly, per the alternative spec §9 itself suggests),
// then round down to the page to read the pool header and confirm its
// back-pointer matches.
func (m *Memory) locateSmall(ptr *byte) (*poolHeader, bool) {
	addr := uintptr(unsafe.Pointer(ptr))
	arenaBase := addr &^ uintptr(ArenaSize-1)

	m.muArena.Lock()
	a, ok := m.registry[arenaBase]
	m.muArena.Unlock()

	if !ok {
		return nil, false
	}

	pool := (*poolHeader)(unsafe.Pointer(addr &^ uintptr(PageSize-1)))
	if pool.arena != a {
		return nil, false
	}

	return pool, true
}
