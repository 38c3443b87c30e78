package dxma_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/deneonet/dxma"
	"github.com/deneonet/dxma/d3d12"
	mock_d3d12 "github.com/deneonet/dxma/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCreateResourceAndMap(t *testing.T) {
	ctrl := gomock.NewController(t)
	device, allocator := readyAllocator(t, ctrl, dxma.CreateOptions{HeapBlockSize: 4096})

	heap := expectHeap(ctrl, device, 4096, d3d12.HeapTypeUpload)
	alloc := allocator.Allocate(1024, d3d12.HeapTypeUpload, 0)

	resource := mock_d3d12.NewMockResource(ctrl)
	device.EXPECT().
		CreatePlacedResource(heap, 0, d3d12.BufferDesc(1024), d3d12.ResourceStateGenericRead).
		Return(resource, nil)

	wrapper, err := allocator.CreateResource(alloc, d3d12.BufferDesc(1024), d3d12.ResourceStateGenericRead)
	require.NoError(t, err)
	require.Equal(t, alloc, wrapper.Allocation())

	backing := make([]byte, 1024)
	resource.EXPECT().Map().Return(backing, nil)

	data, err := wrapper.MapMemory()
	require.NoError(t, err)
	require.True(t, wrapper.IsMemoryMapped())
	copy(data, "hello")

	// Mapping again returns the existing range without touching the device
	again, err := wrapper.MapMemory()
	require.NoError(t, err)
	require.Equal(t, data, again)

	resource.EXPECT().GPUVirtualAddress().Return(uint64(0xDEAD0000))
	require.Equal(t, uint64(0xDEAD0000), wrapper.GPUVirtualAddress())

	// Destroy unmaps, releases the owned resource, and frees the allocation
	resource.EXPECT().Unmap()
	resource.EXPECT().Release()
	require.NoError(t, wrapper.Destroy())
	require.Equal(t, 1, allocator.FreeBlockCount())

	require.Error(t, wrapper.Destroy())

	// A destroyed wrapper has no resource left to map
	_, err = wrapper.MapMemory()
	require.ErrorContains(t, err, "no resource")
}

func TestUnmapWithoutMapIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	device, allocator := readyAllocator(t, ctrl, dxma.CreateOptions{HeapBlockSize: 4096})

	heap := expectHeap(ctrl, device, 4096, d3d12.HeapTypeUpload)
	alloc := allocator.Allocate(256, d3d12.HeapTypeUpload, 0)

	resource := mock_d3d12.NewMockResource(ctrl)
	device.EXPECT().
		CreatePlacedResource(heap, 0, d3d12.BufferDesc(256), d3d12.ResourceStateGenericRead).
		Return(resource, nil)

	wrapper, err := allocator.CreateResource(alloc, d3d12.BufferDesc(256), d3d12.ResourceStateGenericRead)
	require.NoError(t, err)

	wrapper.UnmapMemory()
	require.False(t, wrapper.IsMemoryMapped())
	require.Nil(t, wrapper.Memory())

	resource.EXPECT().Release()
	require.NoError(t, wrapper.Destroy())
}

func TestCreateResourceZeroAllocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, allocator := readyAllocator(t, ctrl, dxma.CreateOptions{})

	_, err := allocator.CreateResource(dxma.Allocation{}, d3d12.BufferDesc(256), d3d12.ResourceStateCommon)
	require.Error(t, err)
}

func TestCreateResourceDeviceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	device, allocator := readyAllocator(t, ctrl, dxma.CreateOptions{HeapBlockSize: 4096})

	expectHeap(ctrl, device, 4096, d3d12.HeapTypeDefault)
	alloc := allocator.Allocate(256, d3d12.HeapTypeDefault, 0)

	device.EXPECT().
		CreatePlacedResource(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("resource creation rejected"))

	_, err := allocator.CreateResource(alloc, d3d12.BufferDesc(256), d3d12.ResourceStateCommon)
	require.ErrorContains(t, err, "resource creation rejected")
}

func TestScopedResourceReleasesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)

	resource := mock_d3d12.NewMockResource(ctrl)
	resource.EXPECT().Release()

	guard := dxma.NewScopedResource[d3d12.Resource](resource)
	require.Equal(t, d3d12.Resource(resource), guard.Get())

	guard.Release()
	guard.Release()
	require.Nil(t, guard.Get())
}
