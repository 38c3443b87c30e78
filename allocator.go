package dxma

import (
	"context"
	"fmt"

	"github.com/deneonet/dxma/d3d12"
	"github.com/deneonet/dxma/memutils"
	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// allocationKey identifies a live allocation by its position. An offset can
// only host one allocation per heap, so the pair is unique.
type allocationKey struct {
	offset    int
	heapIndex int
}

// Allocator places many logical allocations inside a small number of large
// device heaps, avoiding the cost of one device-level heap per resource.
// Free space is managed as a first-fit free-block chain spanning all heaps.
//
// The Allocator is not internally synchronized: using one instance from
// multiple goroutines requires external serialization.
type Allocator struct {
	logger *slog.Logger
	device d3d12.Device

	heapBlockSize    int
	maxHeapCount     int
	trackAllocations bool

	freeBlocks freeBlockList
	heaps      []d3d12.Heap

	// Only populated when trackAllocations is set
	liveAllocations *swiss.Map[allocationKey, Allocation]
}

var _ memutils.Validatable = &Allocator{}

// Allocate places an allocation of the requested size in a heap of the
// requested type. When alignment is nonzero it must be a power of two and
// size is rounded up to the next multiple of it; an alignment of 0 leaves
// the size unchanged.
//
// A size of 0 is a no-op returning the zero Allocation. When no existing
// free block can service the request, a new device heap is created; if the
// device refuses, the zero Allocation is returned and the failure is logged,
// so callers must check IsZero. Exceeding the allocator's heap-table cap
// panics.
func (a *Allocator) Allocate(size int, heapType d3d12.HeapType, alignment uint) Allocation {
	if size == 0 {
		return Allocation{}
	}

	memutils.DebugCheckPow2(alignment, "alignment")
	size = memutils.AlignUp(size, alignment)

	if block, ok := a.freeBlocks.takeFirstFit(size, heapType); ok {
		alloc := Allocation{
			size:      size,
			offset:    block.offset,
			heapType:  heapType,
			heapIndex: block.heapIndex,
			heap:      block.heap,
		}
		a.trackAllocate(alloc)
		return alloc
	}

	// No suitable free block anywhere in the chain, back the request with
	// a fresh device heap
	heapSize := a.heapBlockSize
	if size > heapSize {
		// Large single allocations get an oversized dedicated heap
		heapSize = size * 4
	}

	if len(a.heaps) >= a.maxHeapCount {
		panic(fmt.Sprintf("dxma: heap table is full (%d heaps)- the allocator is misconfigured for this workload", a.maxHeapCount))
	}

	heap, err := a.device.CreateHeap(d3d12.HeapDesc{
		SizeInBytes: heapSize,
		Type:        heapType,
		Alignment:   d3d12.DefaultResourcePlacementAlignment,
		Flags:       d3d12.HeapFlagNone,
	})
	if err != nil {
		a.logger.Error("dxma: device heap creation failed",
			slog.Int("size", heapSize),
			slog.String("heapType", heapType.String()),
			slog.Any("error", err))
		return Allocation{}
	}

	a.heaps = append(a.heaps, heap)
	heapIndex := len(a.heaps) - 1

	if heapSize > size {
		// Seed the remainder of the new heap at the head of the chain
		a.freeBlocks.PushHead(freeBlock{
			size:      heapSize - size,
			offset:    size,
			heapType:  heapType,
			heapIndex: heapIndex,
			heap:      heap,
		})
	}

	alloc := Allocation{
		size:      size,
		offset:    0,
		heapType:  heapType,
		heapIndex: heapIndex,
		heap:      heap,
	}
	a.trackAllocate(alloc)
	return alloc
}

// Free returns a previously allocated range to the free-block chain, merging
// it with contiguous same-heap neighbors. The heap itself is never released
// before the allocator is destroyed, even when it becomes entirely free.
//
// Passing the zero Allocation, an allocation with no heap, or (when tracking
// is enabled) an allocation that is not live returns an error and leaves the
// chain untouched. Freeing the same Allocation twice without tracking is
// undefined.
func (a *Allocator) Free(alloc Allocation) error {
	if alloc.size == 0 || alloc.heap == nil {
		return errors.New("invalid allocation passed to Free: size is 0 or heap is nil")
	}

	if a.trackAllocations {
		key := allocationKey{offset: alloc.offset, heapIndex: alloc.heapIndex}
		if !a.liveAllocations.Has(key) {
			return errors.Errorf("allocation at offset %d in heap %d is not live- double free or foreign allocation", alloc.offset, alloc.heapIndex)
		}
		a.liveAllocations.Delete(key)
	}

	a.freeBlocks.insertAndMerge(freeBlock{
		size:      alloc.size,
		offset:    alloc.offset,
		heapType:  alloc.heapType,
		heapIndex: alloc.heapIndex,
		heap:      alloc.heap,
	})
	return nil
}

// Destroy reports any still-live allocations and releases every device heap
// exactly once. Leak reporting is informational only and never fails the
// operation. The Allocator must not be used after Destroy.
func (a *Allocator) Destroy() {
	a.ReportLeakedMemory()

	for _, heap := range a.heaps {
		heap.Release()
	}
	a.heaps = a.heaps[:0]
	a.freeBlocks = newFreeBlockList()
	a.liveAllocations = swiss.NewMap[allocationKey, Allocation](42)
}

// ReportLeakedMemory logs every tracked allocation that has not been freed
// so far. It only has content when the Allocator was created with
// TrackAllocations.
func (a *Allocator) ReportLeakedMemory() {
	a.liveAllocations.Iter(func(key allocationKey, alloc Allocation) bool {
		a.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed allocation",
			slog.Int("size", alloc.size),
			slog.Int("offset", alloc.offset),
			slog.String("heapType", alloc.heapType.String()),
			slog.Int("heapIndex", alloc.heapIndex),
		)
		return false
	})
}

func (a *Allocator) trackAllocate(alloc Allocation) {
	if !a.trackAllocations {
		return
	}

	a.liveAllocations.Put(allocationKey{offset: alloc.offset, heapIndex: alloc.heapIndex}, alloc)
}

// AllocatedHeapCount returns the number of device heaps the allocator has
// created so far.
func (a *Allocator) AllocatedHeapCount() int { return len(a.heaps) }

// AllocatedHeaps returns a read-only snapshot of the heap table. The table
// is append-only: indices are assigned sequentially starting at 0 and never
// reused, and every heap lives until the allocator is destroyed.
func (a *Allocator) AllocatedHeaps() []d3d12.Heap {
	heaps := make([]d3d12.Heap, len(a.heaps))
	copy(heaps, a.heaps)
	return heaps
}

// FreeBlockCount returns the number of free ranges currently in the chain.
func (a *Allocator) FreeBlockCount() int { return a.freeBlocks.Count() }

// LiveAllocationCount returns the number of tracked allocations that have
// not been freed. It is always 0 when tracking is disabled.
func (a *Allocator) LiveAllocationCount() int { return a.liveAllocations.Count() }

// Validate performs internal consistency checks on the allocator's chain and
// heap table. When the implementation is functioning correctly it should not
// be possible for this method to return an error, but it may assist in
// diagnosing issues.
func (a *Allocator) Validate() error {
	if err := a.freeBlocks.Validate(); err != nil {
		return err
	}

	freeBytes := make(map[int]int)
	var visitErr error
	a.freeBlocks.visitAll(func(block freeBlock) {
		if visitErr != nil {
			return
		}

		if block.heapIndex >= len(a.heaps) {
			visitErr = errors.Errorf("free block at offset %d references heap %d, but only %d heaps exist", block.offset, block.heapIndex, len(a.heaps))
			return
		}

		heapSize := a.heaps[block.heapIndex].Size()
		if block.offset+block.size > heapSize {
			visitErr = errors.Errorf("free block at offset %d in heap %d ends at %d, past the heap's capacity of %d", block.offset, block.heapIndex, block.offset+block.size, heapSize)
			return
		}

		freeBytes[block.heapIndex] += block.size
	})
	if visitErr != nil {
		return visitErr
	}

	allocatedBytes := make(map[int]int)
	a.liveAllocations.Iter(func(key allocationKey, alloc Allocation) bool {
		if alloc.heapIndex >= len(a.heaps) {
			visitErr = errors.Errorf("live allocation at offset %d references heap %d, but only %d heaps exist", alloc.offset, alloc.heapIndex, len(a.heaps))
			return true
		}

		allocatedBytes[alloc.heapIndex] += alloc.size
		return false
	})
	if visitErr != nil {
		return visitErr
	}

	for heapIndex, heap := range a.heaps {
		if freeBytes[heapIndex]+allocatedBytes[heapIndex] > heap.Size() {
			return errors.Errorf("heap %d holds %d free bytes and %d allocated bytes, more than its capacity of %d", heapIndex, freeBytes[heapIndex], allocatedBytes[heapIndex], heap.Size())
		}
	}

	return nil
}
