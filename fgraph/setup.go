// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

import (
	"fmt"

	"github.com/neo3fg/framegraph/driver"
	"github.com/neo3fg/framegraph/internal/handle"
)

// TextureDesc describes a texture resource at declaration time.
type TextureDesc struct {
	Width, Height int
	Format        driver.PixelFmt
	Usage         driver.Usage
	IsCube        bool
	IsExternal    bool
	DoubleBuffer  bool
}

// aspectMask derives the driver.Aspect mask implied by Format.
func (d TextureDesc) aspectMask() driver.Aspect {
	a := driver.Aspect(0)
	if d.Format.IsDepth() {
		a |= driver.AspectDepth
	}
	if d.Format.IsStencil() {
		a |= driver.AspectStencil
	}
	if a == 0 {
		a = driver.AspectColor
	}
	return a
}

// BufferDesc describes a buffer resource at declaration time.
type BufferDesc struct {
	Size       int64
	Usage      driver.Usage
	IsExternal bool
}

// resourceDecl is what Create*/RegisterExternal* append to the shared
// declaration list. It is keyed by scoped name and is immutable once
// appended; a second Create* call under the same name returns the
// existing declaration's ID instead of appending another one.
type resourceDecl struct {
	name    string
	typ     ResourceType
	scope   PassScope
	instIdx int

	tex TextureDesc
	buf BufferDesc

	textureID TextureID
	bufferID  BufferID
}

// CompileContext carries the per-build topology the instantiator and
// allocator need: how many camera/light instances to expand scoped passes
// into, the host identities those instances map to, and hints a pass's
// setup callback may consult.
type CompileContext struct {
	NumCameras     int
	NumLights      int
	FramesInFlight int

	// CameraHandles and LightHandles map a scoped instance's index to the
	// host's own camera/light identity. CameraHandles[i] is the real
	// camera handle backing the PerCamera instance at index i, and
	// likewise for LightHandles and PerLight instances. Either may be
	// left nil if the host has no use for PassResources exposing them.
	CameraHandles []uint32
	LightHandles  []uint32

	// CameraExtents and LightIsPoint are optional hints, one entry per
	// camera/light instance index; either may be left nil.
	CameraExtents []Extent2D
	LightIsPoint  []bool
}

// Extent2D is a width/height hint attached to a camera instance.
type Extent2D struct {
	Width, Height int
}

// defaultFramesInFlight is the conventional frame-in-flight count used
// when a caller leaves CompileContext.FramesInFlight unset.
const defaultFramesInFlight = 3

// DefaultCompileContext returns a CompileContext with FramesInFlight
// filled to its conventional default.
func DefaultCompileContext() CompileContext {
	return CompileContext{FramesInFlight: defaultFramesInFlight}
}

// PassSetup is the scratch structure passed to every pass's setup
// callback. A new instance is constructed per pass instance, but the decls
// slice it writes into is shared and append-only across every instance
// compiled in the same BuildGraph call, so a later pass's Find* can see an
// earlier pass's Create*.
type PassSetup struct {
	// Identity of the instance being set up.
	passName string
	scope    PassScope
	instIdx  int

	ctx *CompileContext
	ids *handle.Pool

	decls *[]resourceDecl

	reads  *[]resourceAccess
	writes *[]resourceAccess
}

// scopeName applies the scoping rule: name for Global, name_cam_{idx} for
// PerCamera, name_light_{idx} for PerLight.
func scopeName(name string, scope PassScope, idx int) string {
	switch scope {
	case PerCamera:
		return fmt.Sprintf("%s_cam_%d", name, idx)
	case PerLight:
		return fmt.Sprintf("%s_light_%d", name, idx)
	default:
		return name
	}
}

// ownName returns name scoped to the instance currently being set up.
func (s *PassSetup) ownName(name string) string {
	return scopeName(name, s.scope, s.instIdx)
}

func (s *PassSetup) findDecl(scopedName string) (*resourceDecl, int) {
	for i := range *s.decls {
		if (*s.decls)[i].name == scopedName {
			return &(*s.decls)[i], i
		}
	}
	return nil, -1
}

// CreateTexture declares a texture under the scoped name derived from
// name and this instance's scope. Calling it again with the same base
// name against the same instance is a no-op that returns the existing ID:
// creation is idempotent per scoped name.
func (s *PassSetup) CreateTexture(name string, desc TextureDesc) TextureID {
	scoped := s.ownName(name)
	if d, _ := s.findDecl(scoped); d != nil {
		return d.textureID
	}
	typ := Texture2D
	if desc.IsCube {
		typ = TextureCube
	}
	d := resourceDecl{
		name:    scoped,
		typ:     typ,
		scope:   s.scope,
		instIdx: s.instIdx,
		tex:     desc,
	}
	d.textureID = TextureID{h: s.ids.New()}
	*s.decls = append(*s.decls, d)
	return d.textureID
}

// CreateBuffer declares a buffer under the scoped name derived from name
// and this instance's scope. See CreateTexture for the idempotence rule.
func (s *PassSetup) CreateBuffer(name string, desc BufferDesc) BufferID {
	scoped := s.ownName(name)
	if d, _ := s.findDecl(scoped); d != nil {
		return d.bufferID
	}
	d := resourceDecl{
		name:    scoped,
		typ:     Buffer,
		scope:   s.scope,
		instIdx: s.instIdx,
		buf:     desc,
	}
	d.bufferID = BufferID{h: s.ids.New()}
	*s.decls = append(*s.decls, d)
	return d.bufferID
}

// RegisterExternalTexture declares a texture whose handle is supplied by
// the host per frame (e.g. a swapchain image) rather than owned by the
// graph.
func (s *PassSetup) RegisterExternalTexture(name string, desc TextureDesc) TextureID {
	desc.IsExternal = true
	return s.CreateTexture(name, desc)
}

// RegisterExternalBuffer declares a host-supplied buffer.
func (s *PassSetup) RegisterExternalBuffer(name string, desc BufferDesc) BufferID {
	desc.IsExternal = true
	return s.CreateBuffer(name, desc)
}

// FindTexture searches for a texture declaration, trying the scoped name
// first (this instance's scope) and falling back to the unscoped base
// name. It returns the zero TextureID (IsValid false) on failure.
func (s *PassSetup) FindTexture(name string) TextureID {
	if d, _ := s.findDecl(s.ownName(name)); d != nil {
		return d.textureID
	}
	if d, _ := s.findDecl(name); d != nil {
		return d.textureID
	}
	return TextureID{}
}

// FindTextureIn performs an exact cross-scope lookup: name as scoped
// under the given scope/instIdx, with no fallback.
func (s *PassSetup) FindTextureIn(name string, scope PassScope, instIdx int) TextureID {
	if d, _ := s.findDecl(scopeName(name, scope, instIdx)); d != nil {
		return d.textureID
	}
	return TextureID{}
}

// FindBuffer is the buffer analog of FindTexture.
func (s *PassSetup) FindBuffer(name string) BufferID {
	if d, _ := s.findDecl(s.ownName(name)); d != nil {
		return d.bufferID
	}
	if d, _ := s.findDecl(name); d != nil {
		return d.bufferID
	}
	return BufferID{}
}

// FindBufferIn is the buffer analog of FindTextureIn.
func (s *PassSetup) FindBufferIn(name string, scope PassScope, instIdx int) BufferID {
	if d, _ := s.findDecl(scopeName(name, scope, instIdx)); d != nil {
		return d.bufferID
	}
	return BufferID{}
}

// resolveName resolves a name exactly the way FindTexture/FindBuffer do:
// this instance's own scope first, falling back to the literal name. This
// lets a pass read/write a resource it declared itself (passing the bare
// base name, auto-scoped the same way Create* scoped it) as well as a
// resource it located via an explicit cross-scope Find*In call (passing
// the exact scoped name that call returned, which the owned-scope attempt
// will not match and the literal fallback will).
func (s *PassSetup) resolveName(name string) string {
	scoped := s.ownName(name)
	if d, _ := s.findDecl(scoped); d != nil {
		return scoped
	}
	return name
}

// ReadTexture records a read of the named texture at the given frame
// offset. See resolveName for how name is resolved.
func (s *PassSetup) ReadTexture(name string, offset FrameOffset) {
	*s.reads = append(*s.reads, resourceAccess{s.resolveName(name), offset, Read})
}

// WriteTexture records a write of the named texture at the given frame
// offset.
func (s *PassSetup) WriteTexture(name string, offset FrameOffset) {
	*s.writes = append(*s.writes, resourceAccess{s.resolveName(name), offset, Write})
}

// ReadWriteTexture records both a read and a write of the named texture
// at the given frame offset (a loaded-then-stored render attachment).
func (s *PassSetup) ReadWriteTexture(name string, offset FrameOffset) {
	scoped := s.resolveName(name)
	*s.reads = append(*s.reads, resourceAccess{scoped, offset, ReadWrite})
	*s.writes = append(*s.writes, resourceAccess{scoped, offset, ReadWrite})
}

// ReadBuffer, WriteBuffer and ReadWriteBuffer are the buffer analogs of
// the texture access declarations above.
func (s *PassSetup) ReadBuffer(name string, offset FrameOffset) {
	*s.reads = append(*s.reads, resourceAccess{s.resolveName(name), offset, Read})
}

func (s *PassSetup) WriteBuffer(name string, offset FrameOffset) {
	*s.writes = append(*s.writes, resourceAccess{s.resolveName(name), offset, Write})
}

func (s *PassSetup) ReadWriteBuffer(name string, offset FrameOffset) {
	scoped := s.resolveName(name)
	*s.reads = append(*s.reads, resourceAccess{scoped, offset, ReadWrite})
	*s.writes = append(*s.writes, resourceAccess{scoped, offset, ReadWrite})
}

// ReadsTextures is a variadic batch helper for Current-offset texture
// reads, one call standing in for N ReadTexture(name, Current) calls.
func (s *PassSetup) ReadsTextures(names ...string) {
	for _, n := range names {
		s.ReadTexture(n, Current)
	}
}

// WritesTextures is the write analog of ReadsTextures.
func (s *PassSetup) WritesTextures(names ...string) {
	for _, n := range names {
		s.WriteTexture(n, Current)
	}
}

// ReadsBuffers is the buffer analog of ReadsTextures.
func (s *PassSetup) ReadsBuffers(names ...string) {
	for _, n := range names {
		s.ReadBuffer(n, Current)
	}
}

// WritesBuffers is the buffer analog of WritesTextures.
func (s *PassSetup) WritesBuffers(names ...string) {
	for _, n := range names {
		s.WriteBuffer(n, Current)
	}
}

// PassName returns the scoped name of the instance being set up.
func (s *PassSetup) PassName() string { return s.passName }

// Scope returns the scope of the instance being set up.
func (s *PassSetup) Scope() PassScope { return s.scope }

// NumCameras returns the camera count from this build's CompileContext.
func (s *PassSetup) NumCameras() int { return s.ctx.NumCameras }

// NumLights returns the light count from this build's CompileContext.
func (s *PassSetup) NumLights() int { return s.ctx.NumLights }

// InstanceIndex returns the scope-local index of the instance being set
// up (always 0 for Global passes).
func (s *PassSetup) InstanceIndex() int { return s.instIdx }

// CameraExtent returns the optional width/height hint for camera instance
// i, or the zero Extent2D if the caller's CompileContext left
// CameraExtents nil or too short.
func (s *PassSetup) CameraExtent(i int) Extent2D {
	if i < 0 || i >= len(s.ctx.CameraExtents) {
		return Extent2D{}
	}
	return s.ctx.CameraExtents[i]
}

// IsPointLight returns the optional is-point hint for light instance i, or
// false if the caller's CompileContext left LightIsPoint nil or too short.
func (s *PassSetup) IsPointLight(i int) bool {
	if i < 0 || i >= len(s.ctx.LightIsPoint) {
		return false
	}
	return s.ctx.LightIsPoint[i]
}
