package dxma

import (
	"github.com/deneonet/dxma/d3d12"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Allocation is an opaque handle to a live byte range placed within one of
// the allocator's device heaps. Allocations are created only by
// Allocator.Allocate and invalidated by Allocator.Free. The zero Allocation
// indicates a failed or zero-size request.
//
// Two Allocations refer to the same range when their size, offset, and heap
// index are equal; use Equal for that comparison. The built-in == additionally
// compares the heap handles themselves.
type Allocation struct {
	size      int
	offset    int
	heapType  d3d12.HeapType
	heapIndex int
	heap      d3d12.Heap
}

// Size returns the allocation's size in bytes, after any alignment rounding
// applied by Allocate.
func (a Allocation) Size() int { return a.size }

// Offset returns the allocation's byte offset within its heap.
func (a Allocation) Offset() int { return a.offset }

// HeapType returns the category of device memory the allocation lives in.
func (a Allocation) HeapType() d3d12.HeapType { return a.heapType }

// HeapIndex returns the position of the allocation's heap in the allocator's
// heap table. Heap indices are assigned sequentially and never reused.
func (a Allocation) HeapIndex() int { return a.heapIndex }

// Heap returns a non-owning reference to the device heap backing this
// allocation. The allocator owns the heap for its entire lifetime.
func (a Allocation) Heap() d3d12.Heap { return a.heap }

// IsZero reports whether this is the zero Allocation, as returned from
// zero-size or failed requests.
func (a Allocation) IsZero() bool { return a.size == 0 }

// Equal reports whether both Allocations refer to the same placed range.
// Only the size, offset, and heap index participate.
func (a Allocation) Equal(other Allocation) bool {
	return a.size == other.size && a.offset == other.offset && a.heapIndex == other.heapIndex
}

func (a Allocation) printParameters(json *jwriter.ObjectState) {
	json.Name("Size").Int(a.size)
	json.Name("Offset").Int(a.offset)
	json.Name("HeapType").String(a.heapType.String())
	json.Name("HeapIndex").Int(a.heapIndex)
}
