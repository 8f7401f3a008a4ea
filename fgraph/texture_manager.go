// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

import "github.com/neo3fg/framegraph/driver"

// BindlessHandle is the opaque, driver-defined identity of an allocated
// texture, paired with the bindless index a shader uses to sample it.
type BindlessHandle struct {
	Image driver.Image
	View  driver.ImageView
	Index uint32
}

// TextureManager is the external bindless texture manager the resource
// allocator delegates texture creation to. The graph never creates
// driver.Image/driver.ImageView values itself for Texture2D/TextureCube
// resources: it only asks the manager for one and remembers the bindless
// index for shader sampling.
type TextureManager interface {
	// AllocateTexture2D creates a 2D texture and returns its handle.
	AllocateTexture2D(width, height int, format driver.PixelFmt, usage driver.Usage) (BindlessHandle, error)

	// AllocateTextureCube creates a cube texture (6 array layers,
	// cube-compatible) and returns its handle.
	AllocateTextureCube(size int, format driver.PixelFmt, usage driver.Usage) (BindlessHandle, error)

	// Free releases a texture previously returned by Allocate*.
	Free(h BindlessHandle)

	// Get resolves a bindless index back to its handle, for diagnostics.
	Get(index uint32) (BindlessHandle, bool)
}
