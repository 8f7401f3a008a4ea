// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// GPU is the main interface to an underlying driver implementation.
// It is used to create buffers, images and command buffers, and to submit
// recorded commands for execution. A GPU is obtained from a call to
// Driver.Open.
//
// Render pass, pipeline, shader and descriptor table creation are
// deliberately absent: those belong to concrete pass implementations,
// which never go through this interface.
type GPU interface {
	// Driver returns the Driver that owns the GPU.
	Driver() Driver

	// Commit commits a batch of command buffers to the GPU for execution.
	// Wait operations defined in a command buffer apply to the batch as a
	// whole, so the order of command buffers in cb is meaningful.
	// This method sends the result to ch when all commands complete
	// execution. Command buffers in cb cannot be used for recording until
	// then.
	Commit(cb []CmdBuffer, ch chan<- error)

	// NewCmdBuffer creates a new command buffer.
	NewCmdBuffer() (CmdBuffer, error)

	// NewBuffer creates a new buffer.
	NewBuffer(size int64, visible bool, usg Usage) (Buffer, error)

	// NewImage creates a new image.
	NewImage(pf PixelFmt, size Dim3D, layers, levels, samples int, usg Usage) (Image, error)
}

// Destroyer is the interface that wraps the Destroy method.
// Types that implement this interface may allocate external memory that is
// not managed by GC, so Destroy must be called explicitly to ensure such
// memory is deallocated.
type Destroyer interface {
	Destroy()
}

// Usage is a mask indicating valid uses for a resource.
type Usage int

// Usage flags for Buffer and Image.
const (
	// The resource can be read in shaders.
	UShaderRead Usage = 1 << iota
	// The resource can be written in shaders.
	UShaderWrite
	// The resource can provide constant data for shaders.
	// Valid only for Buffer.
	UShaderConst
	// The resource can be sampled in shaders.
	// Valid only for Image.
	UShaderSample
	// The resource can provide vertex data for draw calls.
	// Valid only for Buffer.
	UVertexData
	// The resource can provide index data for draw calls.
	// Valid only for Buffer.
	UIndexData
	// The resource can be used as render target.
	// Valid only for Image.
	URenderTarget
	// The resource can be used for any purpose.
	UGeneric Usage = 1<<iota - 1
)

// Buffer is the interface that defines a GPU buffer.
// The size of the buffer is fixed. When a larger buffer is necessary, a new
// one must be created and the data must be copied explicitly.
type Buffer interface {
	Destroyer

	// Visible returns whether the buffer is host visible.
	// Non-visible memory cannot be accessed by the CPU.
	Visible() bool

	// Bytes returns a slice of length Cap referring to the underlying
	// data. If the buffer is not host visible, it returns nil instead.
	// The slice is valid for the lifetime of the buffer.
	Bytes() []byte

	// Cap returns the capacity of the buffer in bytes, which may be
	// greater than the size requested during buffer creation.
	// This value is immutable.
	Cap() int64
}

// PixelFmt describes the format of a pixel.
type PixelFmt int

// Pixel formats.
const (
	// Color, 8-bit channels.
	RGBA8Unorm PixelFmt = iota
	RGBA8SRGB
	BGRA8Unorm
	BGRA8SRGB
	// Color, 16-bit channels.
	RGBA16Float
	// Color, 32-bit channels.
	RGBA32Float
	// Depth/Stencil.
	D16Unorm
	D32Float
	S8Uint
	D24UnormS8Uint
	D32FloatS8Uint
)

// IsDepth reports whether f carries a depth aspect.
// Per the data model, depth textures are ordinary 2D textures whose format
// carries a depth/stencil aspect; there is no separate resource type.
func (f PixelFmt) IsDepth() bool {
	switch f {
	case D16Unorm, D32Float, D24UnormS8Uint, D32FloatS8Uint:
		return true
	default:
		return false
	}
}

// IsStencil reports whether f carries a stencil aspect.
func (f PixelFmt) IsStencil() bool {
	switch f {
	case S8Uint, D24UnormS8Uint, D32FloatS8Uint:
		return true
	default:
		return false
	}
}

// Dim3D is a three-dimensional size.
type Dim3D struct {
	Width, Height, Depth int
}

// Off3D is a three-dimensional offset.
type Off3D struct {
	X, Y, Z int
}

// Image is the interface that defines a GPU image.
// Direct access to image memory is not provided, so copying data from the
// CPU to an image resource requires the use of a staging buffer.
type Image interface {
	Destroyer

	// NewView creates a new image view.
	// Image views represent a typed view of image storage. Its type must
	// be valid according to the image from which it is created (e.g., a
	// cube view cannot be created from an image with fewer than 6
	// layers). All views created from a given image must be destroyed
	// before the image itself is destroyed.
	NewView(typ ViewType, layer, layers, level, levels int) (ImageView, error)
}

// ViewType is the type of a resource view.
type ViewType int

// View types.
const (
	View2D ViewType = iota
	View2DArray
	ViewCube
	ViewCubeArray
	View2DMS
	View2DMSArray
)

// ImageView is the interface that defines a typed view of an Image
// resource.
type ImageView interface {
	Destroyer
}
