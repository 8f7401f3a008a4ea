// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// PipelineStage is a mask of pipeline stages at which a synchronization
// scope begins or ends.
type PipelineStage int

// Pipeline stages.
const (
	TopOfPipe PipelineStage = 1 << iota
	VertexInput
	ComputeShader
	FragmentShader
	EarlyFragmentTests
	LateFragmentTests
	ColorAttachmentOutput
	Copy
	AllCommands
	NoStage PipelineStage = 0
)

// AccessFlags is a mask of memory access types participating in a
// synchronization scope.
type AccessFlags int

// Memory access flags.
const (
	ShaderRead AccessFlags = 1 << iota
	ShaderWrite
	VertexAttributeRead
	IndexRead
	IndirectCommandRead
	ColorAttachmentRead
	ColorAttachmentWrite
	DepthStencilAttachmentRead
	DepthStencilAttachmentWrite
	CopyRead
	CopyWrite
	NoAccess AccessFlags = 0
)

// ImageLayout is the type of an image layout.
type ImageLayout int

// Image layouts.
const (
	Undefined ImageLayout = iota
	General
	ColorAttachmentOptimal
	DepthStencilAttachmentOptimal
	DepthStencilReadOnlyOptimal
	ShaderReadOnlyOptimal
)

// Aspect is a mask of image aspects affected by a Transition.
type Aspect int

// Image aspects.
const (
	AspectColor Aspect = 1 << iota
	AspectDepth
	AspectStencil
)

// Barrier represents a global (buffer/memory) synchronization barrier
// between two batches of commands in the same command buffer.
type Barrier struct {
	SrcStage  PipelineStage
	DstStage  PipelineStage
	SrcAccess AccessFlags
	DstAccess AccessFlags
}

// Transition represents a layout transition on a specific image
// subresource. It carries its own Barrier, since a layout change always
// implies a synchronization scope.
type Transition struct {
	Barrier

	OldLayout ImageLayout
	NewLayout ImageLayout
	View      ImageView
	Aspect    Aspect
}

// ClearValue defines clear values for the color or depth/stencil aspects of
// a render target.
type ClearValue struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}
