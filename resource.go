package dxma

import (
	"github.com/deneonet/dxma/d3d12"
	"github.com/pkg/errors"
)

// Releasable is any capability whose ownership can be relinquished.
type Releasable interface {
	Release()
}

// ScopedResource is a scope guard for a Releasable: it takes ownership on
// construction and guarantees the resource is released at most once,
// regardless of how many times Release is called.
type ScopedResource[T Releasable] struct {
	resource T
	released bool
}

// NewScopedResource takes ownership of resource and returns the guard.
func NewScopedResource[T Releasable](resource T) *ScopedResource[T] {
	return &ScopedResource[T]{resource: resource}
}

// Get returns the guarded resource. It must not be used after Release.
func (s *ScopedResource[T]) Get() T { return s.resource }

// Release relinquishes the guarded resource. Further calls are no-ops.
func (s *ScopedResource[T]) Release() {
	if s.released {
		return
	}

	s.resource.Release()
	s.released = true

	var zero T
	s.resource = zero
}

// ResourceWrapper pairs an Allocation with the placed resource bound to its
// byte range and manages both lifetimes: Destroy frees the allocation back
// to the allocator and releases the owned resource, unmapping it first if it
// is still mapped.
//
// The wrapper borrows the Allocator, which must outlive it.
type ResourceWrapper struct {
	alloc     Allocation
	allocator *Allocator

	resource     d3d12.Resource
	ownsResource bool

	data         []byte
	memoryMapped bool
}

// CreateResource places a resource over the allocation's byte range within
// its heap and returns a wrapper owning the resource. Device failures are
// propagated unchanged.
func (a *Allocator) CreateResource(alloc Allocation, desc d3d12.ResourceDesc, initialState d3d12.ResourceStates) (*ResourceWrapper, error) {
	if alloc.IsZero() || alloc.heap == nil {
		return nil, errors.New("cannot create a resource over the zero allocation")
	}

	resource, err := a.device.CreatePlacedResource(alloc.heap, alloc.offset, desc, initialState)
	if err != nil {
		return nil, err
	}

	return &ResourceWrapper{
		alloc:        alloc,
		allocator:    a,
		resource:     resource,
		ownsResource: true,
	}, nil
}

// Allocation returns the suballocation backing the wrapped resource.
func (w *ResourceWrapper) Allocation() Allocation { return w.alloc }

// Resource returns the wrapped resource, or nil after Destroy.
func (w *ResourceWrapper) Resource() d3d12.Resource { return w.resource }

// SetResource hands an externally created resource to the wrapper,
// replacing any current one without releasing it. When owned is true the
// wrapper releases the new resource on Destroy.
func (w *ResourceWrapper) SetResource(resource d3d12.Resource, owned bool) {
	w.resource = resource
	w.ownsResource = owned
	w.data = nil
	w.memoryMapped = false
}

// GPUVirtualAddress returns the device address of the wrapped resource.
func (w *ResourceWrapper) GPUVirtualAddress() uint64 {
	return w.resource.GPUVirtualAddress()
}

// MapMemory maps the resource for CPU access and returns the mapped range.
// It is idempotent: mapping an already-mapped wrapper returns the existing
// range. Only valid for resources placed in CPU-visible heaps. Mapping a
// wrapper with no resource, such as one that has been destroyed, is an error.
func (w *ResourceWrapper) MapMemory() ([]byte, error) {
	if w.resource == nil {
		return nil, errors.New("cannot map memory: the wrapper has no resource")
	}

	if w.memoryMapped {
		return w.data, nil
	}

	data, err := w.resource.Map()
	if err != nil {
		return nil, err
	}

	w.data = data
	w.memoryMapped = true
	return data, nil
}

// UnmapMemory invalidates the range returned from MapMemory. Unmapping an
// unmapped wrapper is a no-op.
func (w *ResourceWrapper) UnmapMemory() {
	if !w.memoryMapped || w.resource == nil {
		return
	}

	w.resource.Unmap()
	w.data = nil
	w.memoryMapped = false
}

// Memory returns the currently mapped range, or nil when unmapped.
func (w *ResourceWrapper) Memory() []byte { return w.data }

// IsMemoryMapped reports whether the resource is currently mapped.
func (w *ResourceWrapper) IsMemoryMapped() bool { return w.memoryMapped }

// Destroy frees the allocation back to the allocator and releases the owned
// resource, unmapping it first if needed. Destroying a wrapper twice returns
// an error without touching the allocator again.
func (w *ResourceWrapper) Destroy() error {
	if w.allocator == nil {
		return errors.New("resource wrapper has already been destroyed")
	}

	err := w.allocator.Free(w.alloc)
	w.allocator = nil

	if w.resource != nil {
		if w.memoryMapped {
			w.resource.Unmap()
			w.data = nil
			w.memoryMapped = false
		}
		if w.ownsResource {
			w.resource.Release()
		}
		w.resource = nil
	}

	return err
}
