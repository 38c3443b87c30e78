package d3d12

// ResourceDimension identifies the shape of a resource. The values match
// D3D12_RESOURCE_DIMENSION.
type ResourceDimension int32

const (
	ResourceDimensionUnknown ResourceDimension = iota
	ResourceDimensionBuffer
	ResourceDimensionTexture1D
	ResourceDimensionTexture2D
	ResourceDimensionTexture3D
)

var resourceDimensionMapping = map[ResourceDimension]string{
	ResourceDimensionUnknown:   "ResourceDimensionUnknown",
	ResourceDimensionBuffer:    "ResourceDimensionBuffer",
	ResourceDimensionTexture1D: "ResourceDimensionTexture1D",
	ResourceDimensionTexture2D: "ResourceDimensionTexture2D",
	ResourceDimensionTexture3D: "ResourceDimensionTexture3D",
}

func (d ResourceDimension) String() string {
	return resourceDimensionMapping[d]
}

// Format identifies the element format of a resource. Only the formats this
// module's consumers have needed so far are enumerated. The values match
// DXGI_FORMAT.
type Format int32

const (
	FormatUnknown       Format = 0
	FormatR8G8B8A8Unorm Format = 28
)

// TextureLayout identifies the memory ordering of a texture resource. The
// values match D3D12_TEXTURE_LAYOUT.
type TextureLayout int32

const (
	TextureLayoutUnknown TextureLayout = iota
	TextureLayoutRowMajor
)

// ResourceFlags indicate how a resource may be used. The values match
// D3D12_RESOURCE_FLAGS.
type ResourceFlags int32

const (
	ResourceFlagNone ResourceFlags = 0
)

// ResourceStates describe the state a resource starts its life in. The
// values match D3D12_RESOURCE_STATES.
type ResourceStates int32

const (
	ResourceStateCommon      ResourceStates = 0
	ResourceStateGenericRead ResourceStates = 0x1 | 0x2 | 0x40 | 0x80 | 0x200 | 0x800
)

// ResourceDesc describes a resource to be created via
// Device.CreatePlacedResource
type ResourceDesc struct {
	Dimension        ResourceDimension
	Width            int
	Height           int
	DepthOrArraySize int
	MipLevels        int
	Format           Format
	SampleCount      int
	SampleQuality    int
	Layout           TextureLayout
	Flags            ResourceFlags
}

// BufferDesc returns the ResourceDesc for a simple buffer of the provided
// size in bytes.
func BufferDesc(size int) ResourceDesc {
	return ResourceDesc{
		Dimension:        ResourceDimensionBuffer,
		Width:            size,
		Height:           1,
		DepthOrArraySize: 1,
		MipLevels:        1,
		Format:           FormatUnknown,
		SampleCount:      1,
		Layout:           TextureLayoutRowMajor,
		Flags:            ResourceFlagNone,
	}
}
