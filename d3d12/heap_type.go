package d3d12

// HeapType identifies the category of device memory a heap is dedicated to.
// The values match D3D12_HEAP_TYPE.
type HeapType int32

const (
	// HeapTypeDefault is device-local memory with no CPU access.
	HeapTypeDefault HeapType = iota + 1
	// HeapTypeUpload is CPU-visible memory optimized for CPU writes and GPU reads.
	HeapTypeUpload
	// HeapTypeReadback is CPU-visible memory optimized for GPU writes and CPU reads.
	HeapTypeReadback
	// HeapTypeCustom is memory with application-specified properties.
	HeapTypeCustom
)

var heapTypeMapping = map[HeapType]string{
	HeapTypeDefault:  "HeapTypeDefault",
	HeapTypeUpload:   "HeapTypeUpload",
	HeapTypeReadback: "HeapTypeReadback",
	HeapTypeCustom:   "HeapTypeCustom",
}

func (t HeapType) String() string {
	return heapTypeMapping[t]
}

// HeapFlags indicate restrictions on the contents of a heap. The values
// match D3D12_HEAP_FLAGS.
type HeapFlags int32

const (
	HeapFlagNone HeapFlags = 0
)
