package dxma

import (
	"testing"

	"github.com/deneonet/dxma/d3d12"
	"github.com/stretchr/testify/require"
)

func TestAllocationEqual(t *testing.T) {
	base := Allocation{size: 256, offset: 512, heapType: d3d12.HeapTypeUpload, heapIndex: 1, heap: &stubHeap{size: 1024}}

	// Same placement through a different heap handle: Equal matches where
	// the built-in comparison does not
	same := Allocation{size: 256, offset: 512, heapType: d3d12.HeapTypeUpload, heapIndex: 1, heap: &stubHeap{size: 1024}}
	require.True(t, base.Equal(same))
	require.False(t, base == same)

	require.False(t, base.Equal(Allocation{size: 128, offset: 512, heapIndex: 1}))
	require.False(t, base.Equal(Allocation{size: 256, offset: 0, heapIndex: 1}))
	require.False(t, base.Equal(Allocation{size: 256, offset: 512, heapIndex: 2}))
}
