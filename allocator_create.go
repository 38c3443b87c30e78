package dxma

import (
	"github.com/cockroachdb/errors"
	"github.com/deneonet/dxma/d3d12"
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slog"
)

const (
	// DefaultHeapBlockSize is the capacity used for new device heaps when
	// CreateOptions does not provide one. It is equal to ~41.9Mb; the
	// specific size has no deeper meaning, it is just a reasonable starting
	// point.
	DefaultHeapBlockSize int = 640 * 65535

	// DefaultMaxHeapCount is the heap-table cap used when CreateOptions
	// does not provide one.
	DefaultMaxHeapCount int = 200
)

// CreateOptions contains optional settings when creating an Allocator
type CreateOptions struct {
	// HeapBlockSize is the capacity in bytes of each device heap created to
	// back suballocations. Requests larger than this size are backed by a
	// dedicated oversized heap instead.
	HeapBlockSize int

	// MaxHeapCount is a hard cap on the number of device heaps the
	// allocator may create. Exceeding the cap is a fatal misconfiguration
	// and panics, since silently dropping a heap reference would corrupt
	// the free-block accounting.
	MaxHeapCount int

	// TrackAllocations maintains a set of live allocations, used to detect
	// invalid frees and to report unreleased memory at Destroy. When false,
	// the set is never populated and tracking costs nothing.
	TrackAllocations bool
}

// New creates a new Allocator.
//
// logger - destination for allocation diagnostics and leak reports
//
// device - the device that heaps will be created from. The Allocator does
// not take ownership: the device must remain valid for the Allocator's
// lifetime.
//
// options - optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, device d3d12.Device, options CreateOptions) (*Allocator, error) {
	if device == nil {
		return nil, errors.New("dxma.New: no device was provided")
	}

	blockSize := options.HeapBlockSize
	if blockSize == 0 {
		blockSize = DefaultHeapBlockSize
	} else if blockSize < 0 {
		return nil, errors.Newf("dxma.New: HeapBlockSize %d is negative", options.HeapBlockSize)
	}

	maxHeapCount := options.MaxHeapCount
	if maxHeapCount == 0 {
		maxHeapCount = DefaultMaxHeapCount
	} else if maxHeapCount < 0 {
		return nil, errors.Newf("dxma.New: MaxHeapCount %d is negative", options.MaxHeapCount)
	}

	return &Allocator{
		logger: logger,
		device: device,

		heapBlockSize:    blockSize,
		maxHeapCount:     maxHeapCount,
		trackAllocations: options.TrackAllocations,

		freeBlocks:      newFreeBlockList(),
		heaps:           make([]d3d12.Heap, 0, maxHeapCount),
		liveAllocations: swiss.NewMap[allocationKey, Allocation](42),
	}, nil
}
