package dxma

import (
	"github.com/deneonet/dxma/memutils"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// AddStatistics sums the allocator's current heap and allocation tallies
// into the statistics currently present in stats. Allocation tallies are
// only available when tracking is enabled.
func (a *Allocator) AddStatistics(stats *memutils.Statistics) {
	stats.HeapCount += len(a.heaps)
	for _, heap := range a.heaps {
		stats.HeapBytes += heap.Size()
	}

	a.liveAllocations.Iter(func(key allocationKey, alloc Allocation) bool {
		stats.AllocationCount++
		stats.AllocationBytes += alloc.size
		return false
	})
}

// AddDetailedStatistics sums the allocator's current state, including
// free-range counts and size extremes, into the statistics currently present
// in stats.
func (a *Allocator) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.HeapCount += len(a.heaps)
	for _, heap := range a.heaps {
		stats.HeapBytes += heap.Size()
	}

	a.freeBlocks.visitAll(func(block freeBlock) {
		stats.AddFreeRange(block.size)
	})

	a.liveAllocations.Iter(func(key allocationKey, alloc Allocation) bool {
		stats.AddAllocation(alloc.size)
		return false
	})
}

// BuildStatsString writes a JSON description of the allocator's heaps, free
// blocks, and (when tracking is enabled) live allocations. This is a
// diagnostic aid, not a stable format.
func (a *Allocator) BuildStatsString(writer *jwriter.Writer) {
	obj := writer.Object()

	obj.Name("HeapBlockSize").Int(a.heapBlockSize)
	obj.Name("HeapCount").Int(len(a.heaps))

	heapArray := obj.Name("Heaps").Array()
	for index, heap := range a.heaps {
		heapObj := heapArray.Object()
		heapObj.Name("Index").Int(index)
		heapObj.Name("SizeInBytes").Int(heap.Size())
		heapObj.End()
	}
	heapArray.End()

	blockArray := obj.Name("FreeBlocks").Array()
	a.freeBlocks.visitAll(func(block freeBlock) {
		blockObj := blockArray.Object()
		blockObj.Name("Size").Int(block.size)
		blockObj.Name("Offset").Int(block.offset)
		blockObj.Name("HeapType").String(block.heapType.String())
		blockObj.Name("HeapIndex").Int(block.heapIndex)
		blockObj.End()
	})
	blockArray.End()

	if a.trackAllocations {
		allocArray := obj.Name("LiveAllocations").Array()
		a.liveAllocations.Iter(func(key allocationKey, alloc Allocation) bool {
			allocObj := allocArray.Object()
			alloc.printParameters(&allocObj)
			allocObj.End()
			return false
		})
		allocArray.End()
	}

	obj.End()
}
