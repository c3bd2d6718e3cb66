package stratum

// global is the process-wide default allocator instance used by the
// package-level functions below. There is no implicit construction: callers
// must call Initialize before using it.
var global Memory

// Initialize brings up the process-wide default allocator. See
// (*Memory).Initialize.
func Initialize() bool { return global.Initialize() }

// Finalize tears down the process-wide default allocator. See
// (*Memory).Finalize.
func Finalize() { global.Finalize() }

// Alloc allocates from the process-wide default allocator. See
// (*Memory).Alloc.
func Alloc(size int) *byte { return global.Alloc(size) }

// Calloc allocates and zero-fills from the process-wide default allocator.
// See (*Memory).Calloc.
func Calloc(num, size int) *byte { return global.Calloc(num, size) }

// Realloc resizes an allocation from the process-wide default allocator.
// See (*Memory).Realloc.
func Realloc(ptr *byte, size int) *byte { return global.Realloc(ptr, size) }

// Free returns an allocation to the process-wide default allocator. See
// (*Memory).Free.
func Free(ptr *byte) { global.Free(ptr) }
