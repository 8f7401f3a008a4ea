// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package fgraph implements the frame graph core of a real-time renderer:
// pass instantiation and scoping, dependency-graph compilation, transient
// and imported resource allocation, barrier synthesis and per-frame
// execution against the driver package's low-level graphics API.
package fgraph

import "github.com/neo3fg/framegraph/internal/handle"

// PassScope is the expansion axis of a pass declaration.
type PassScope int

// Pass scopes.
const (
	// Global has exactly one instance.
	Global PassScope = iota
	// PerCamera has one instance per active camera.
	PerCamera
	// PerLight has one instance per active light.
	PerLight
)

func (s PassScope) String() string {
	switch s {
	case Global:
		return "global"
	case PerCamera:
		return "per_camera"
	case PerLight:
		return "per_light"
	default:
		return "invalid"
	}
}

// QueueType is the command stream a pass instance is recorded into.
type QueueType int

// Queue types.
const (
	Graphics QueueType = iota
	Compute
)

// FrameOffset selects which frame-variant of a resource an access targets.
// It is signed: Prev refers to the previous frame's variant, Next to the
// variant that will become current on the following frame.
type FrameOffset int

// Frame offsets.
const (
	Prev    FrameOffset = -1
	Current FrameOffset = 0
	Next    FrameOffset = 1
)

func (o FrameOffset) String() string {
	switch o {
	case Prev:
		return "prev"
	case Current:
		return "current"
	case Next:
		return "next"
	default:
		return "invalid"
	}
}

// AccessMode is how a pass instance touches a resource.
type AccessMode int

// Access modes.
const (
	Read AccessMode = iota
	Write
	ReadWrite
)

// ResourceType is the physical kind backing a ResourceInstance.
type ResourceType int

// Resource types.
const (
	Buffer ResourceType = iota
	Texture2D
	TextureCube
)

func (t ResourceType) String() string {
	switch t {
	case Buffer:
		return "buffer"
	case Texture2D:
		return "texture_2d"
	case TextureCube:
		return "texture_cube"
	default:
		return "invalid"
	}
}

// resourceHandle is the common (index, generation) handle underlying both
// TextureID and BufferID. It is never exposed directly: callers only ever
// hold a TextureID or a BufferID, so the builder API cannot mix up a buffer
// handle for a texture slot at compile time.
type resourceHandle = handle.Handle

// TextureID identifies a declared texture resource (2D or cube).
// It is a distinct Go type over resourceHandle purely to prevent passing a
// BufferID where a texture is expected; the two types are never
// interconvertible without going through the scoped name.
type TextureID struct{ h resourceHandle }

// IsValid reports whether id was returned by a create/find/register call
// that succeeded.
func (id TextureID) IsValid() bool { return id.h.IsValid() }

// BufferID identifies a declared buffer resource.
type BufferID struct{ h resourceHandle }

// IsValid reports whether id was returned by a create/find/register call
// that succeeded.
func (id BufferID) IsValid() bool { return id.h.IsValid() }

// passInstanceID identifies a PassInstance within a single build.
// It carries a generation counter for the same reason TextureID/BufferID
// do: a Graph is rebuilt in place, and stale IDs from a previous build
// must not alias whatever instance happens to occupy the same slot.
type passInstanceID = handle.Handle
