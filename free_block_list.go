package dxma

import (
	"github.com/deneonet/dxma/d3d12"
	"github.com/pkg/errors"
)

// nilBlock marks the end of a chain and the end of the recycled-slot list.
const nilBlock int32 = -1

// freeBlock describes one unused byte range within a single device heap.
type freeBlock struct {
	size      int
	offset    int
	heapType  d3d12.HeapType
	heapIndex int
	heap      d3d12.Heap
	next      int32
}

// freeBlockList is a singly linked chain of free ranges threaded through an
// arena of slots addressed by index. Retired slots are recycled through a
// secondary chain rather than freed, so the arena only ever grows to the
// high-water mark of simultaneous free blocks.
//
// A single chain spans every device heap the allocator owns. Within one
// heap the entries stay in ascending offset order; the interleaving of
// different heaps follows insertion order, with the youngest heap's block
// pushed at the head.
type freeBlockList struct {
	arena    []freeBlock
	head     int32
	recycled int32
	count    int
}

func newFreeBlockList() freeBlockList {
	return freeBlockList{head: nilBlock, recycled: nilBlock}
}

func (l *freeBlockList) acquireSlot(block freeBlock) int32 {
	if l.recycled != nilBlock {
		index := l.recycled
		l.recycled = l.arena[index].next
		l.arena[index] = block
		l.count++
		return index
	}

	l.arena = append(l.arena, block)
	l.count++
	return int32(len(l.arena) - 1)
}

func (l *freeBlockList) retireSlot(index int32) {
	l.arena[index] = freeBlock{next: l.recycled}
	l.recycled = index
	l.count--
}

// Count returns the number of live free blocks in the chain.
func (l *freeBlockList) Count() int { return l.count }

// PushHead inserts block at the front of the chain. It is used to seed the
// remainder of a freshly created heap, so the youngest heap is searched
// first on subsequent allocation misses.
func (l *freeBlockList) PushHead(block freeBlock) {
	block.next = l.head
	l.head = l.acquireSlot(block)
}

// takeFirstFit services an allocation request with a first-fit scan from the
// head of the chain. Blocks of a different heap type never match but do not
// halt the scan. An exact-size match unlinks the block entirely; a larger
// match is split, with the allocation taking the low bytes and the block
// keeping its place in the chain.
//
// The carved range and true are returned on success.
func (l *freeBlockList) takeFirstFit(size int, heapType d3d12.HeapType) (freeBlock, bool) {
	prev := nilBlock
	for index := l.head; index != nilBlock; index = l.arena[index].next {
		block := &l.arena[index]
		if block.heapType != heapType || block.size < size {
			prev = index
			continue
		}

		carved := freeBlock{
			size:      size,
			offset:    block.offset,
			heapType:  heapType,
			heapIndex: block.heapIndex,
			heap:      block.heap,
		}

		if block.size == size {
			if prev != nilBlock {
				l.arena[prev].next = block.next
			} else {
				l.head = block.next
			}
			l.retireSlot(index)
			return carved, true
		}

		block.offset += size
		block.size -= size
		return carved, true
	}

	return freeBlock{}, false
}

// insertAndMerge returns a released range to the chain. The insertion point
// is the first entry of the same heap at an equal or greater offset, which
// keeps each heap's entries sorted without reordering the heap interleaving.
// The new range is merged with chain-adjacent same-heap neighbors on both
// sides; at most one merge happens per side, and a three-way merge collapses
// to a single surviving block. Contiguous same-heap ranges separated in the
// chain by another heap's block stay unmerged.
func (l *freeBlockList) insertAndMerge(block freeBlock) {
	prev := nilBlock
	current := l.head
	for current != nilBlock &&
		(l.arena[current].heapIndex != block.heapIndex || l.arena[current].offset < block.offset) {
		prev = current
		current = l.arena[current].next
	}

	var merged int32
	if prev != nilBlock && l.arena[prev].heapIndex == block.heapIndex &&
		l.arena[prev].offset+l.arena[prev].size == block.offset {
		// Contiguous with the predecessor, grow it instead of inserting
		l.arena[prev].size += block.size
		merged = prev
	} else {
		block.next = current
		merged = l.acquireSlot(block)
		if prev != nilBlock {
			l.arena[prev].next = merged
		} else {
			l.head = merged
		}
	}

	if current != nilBlock && l.arena[current].heapIndex == l.arena[merged].heapIndex &&
		l.arena[merged].offset+l.arena[merged].size == l.arena[current].offset {
		// Contiguous with the successor, absorb it
		l.arena[merged].size += l.arena[current].size
		l.arena[merged].next = l.arena[current].next
		l.retireSlot(current)
	}
}

// visitAll calls visit once for each live free block, in chain order.
func (l *freeBlockList) visitAll(visit func(block freeBlock)) {
	for index := l.head; index != nilBlock; index = l.arena[index].next {
		visit(l.arena[index])
	}
}

// Validate performs internal consistency checks on the chain. When the
// implementation is functioning correctly it should not be possible for this
// method to return an error.
func (l *freeBlockList) Validate() error {
	chainCount := 0
	lastEnd := make(map[int]int)
	prevHeapIndex := -1
	prevEnd := 0

	for index := l.head; index != nilBlock; index = l.arena[index].next {
		block := l.arena[index]
		chainCount++

		if chainCount > l.count {
			return errors.Errorf("the chain contains more than the %d blocks the metadata declares- the chain may contain a cycle", l.count)
		}

		if block.size <= 0 {
			return errors.Errorf("free block at offset %d in heap %d has invalid size %d", block.offset, block.heapIndex, block.size)
		}

		if block.heap == nil {
			return errors.Errorf("free block at offset %d in heap %d has no backing heap", block.offset, block.heapIndex)
		}

		end, seen := lastEnd[block.heapIndex]
		if seen && block.offset < end {
			return errors.Errorf("free block at offset %d in heap %d overlaps the previous block ending at %d", block.offset, block.heapIndex, end)
		}

		// Contiguous same-heap blocks are only a missed merge when they are
		// also adjacent in the chain; a foreign-heap block in between keeps
		// them legitimately apart
		if prevHeapIndex == block.heapIndex && block.offset == prevEnd {
			return errors.Errorf("free block at offset %d in heap %d is contiguous with its chain predecessor and should have been merged", block.offset, block.heapIndex)
		}

		lastEnd[block.heapIndex] = block.offset + block.size
		prevHeapIndex = block.heapIndex
		prevEnd = block.offset + block.size
	}

	if chainCount != l.count {
		return errors.Errorf("the chain contains %d blocks, but the metadata declares %d", chainCount, l.count)
	}

	return nil
}
