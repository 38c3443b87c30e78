package d3d12

const (
	// DefaultResourcePlacementAlignment is the default alignment for placed
	// resources, equal to D3D12_DEFAULT_RESOURCE_PLACEMENT_ALIGNMENT (64Kb).
	DefaultResourcePlacementAlignment uint = 65536
)

// HeapDesc describes a device heap to be created via Device.CreateHeap
type HeapDesc struct {
	// SizeInBytes is the total capacity of the heap in bytes
	SizeInBytes int
	// Type is the category of memory the heap is backed by
	Type HeapType
	// Alignment is the placement alignment the heap guarantees for resources
	// placed inside it
	Alignment uint
	// Flags indicate restrictions on the contents of the heap
	Flags HeapFlags
}

// Device is the capability this module requires from the underlying graphics
// API. Implementations wrap an ID3D12Device (or a test double). All failures
// are signaled through returned errors, never panics.
type Device interface {
	// CreateHeap allocates a single contiguous block of device memory
	// matching the provided description. It may fail on device memory
	// exhaustion.
	CreateHeap(desc HeapDesc) (Heap, error)
	// CreatePlacedResource produces a resource bound to the byte range
	// starting at offset within the provided heap.
	CreatePlacedResource(heap Heap, offset int, desc ResourceDesc, initialState ResourceStates) (Resource, error)
}

// Heap is a single large block of device memory obtained from a Device.
// It is the unit of coarse-grained allocation that suballocations are
// placed into.
type Heap interface {
	// Size returns the total capacity of the heap in bytes
	Size() int
	// Release relinquishes the heap's device memory. It must be called
	// exactly once.
	Release()
}

// Resource is a logical object bound to a byte range within a Heap.
type Resource interface {
	// Map exposes the resource's memory for CPU access. It is only valid
	// on resources placed in CPU-visible heaps.
	Map() ([]byte, error)
	// Unmap invalidates the slice previously returned from Map
	Unmap()
	// GPUVirtualAddress returns the device address of the resource
	GPUVirtualAddress() uint64
	// Release relinquishes the resource. It must be called exactly once.
	Release()
}
