// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

import "github.com/neo3fg/framegraph/driver"

// variantIndex maps a frame index and a frame offset to the variant slot
// to use, always wrapping into [0, framesInFlight) even for negative
// moduli.
func variantIndex(frame int, offset FrameOffset, framesInFlight int) int {
	if framesInFlight <= 1 {
		return 0
	}
	i := (frame + int(offset)) % framesInFlight
	if i < 0 {
		i += framesInFlight
	}
	return i
}

// resolvedResource is what PassResources exposes for one accessed name:
// either a buffer handle or a texture's bindless handle, plus the scope
// metadata of the resource's owning pass instance.
type resolvedResource struct {
	typ     ResourceType
	buffer  driver.Buffer
	texture BindlessHandle
	scope   PassScope
	instIdx int
}

// PassResources is the view an execute callback receives: the physical
// handles for every resource the owning pass instance declared a read or
// write for, resolved for the current frame.
type PassResources struct {
	ownerScope      PassScope
	ownerInstIdx    int
	ownerRealHandle uint32
	entries         map[string]resolvedResource
}

func (r *PassResources) lookup(name string) (resolvedResource, bool) {
	if e, ok := r.entries[name]; ok {
		return e, true
	}
	if r.ownerScope != Global {
		if e, ok := r.entries[scopeName(name, r.ownerScope, r.ownerInstIdx)]; ok {
			return e, true
		}
	}
	return resolvedResource{}, false
}

// GetTexture resolves a texture accessed under name by the owning pass
// instance. Lookup tries the exact name first, then (for non-Global
// instances) the auto-scoped form, so an execute callback written against
// "gbuffer_position" works for every camera instance without
// duplicating strings.
func (r *PassResources) GetTexture(name string) (BindlessHandle, bool) {
	e, ok := r.lookup(name)
	if !ok || e.typ == Buffer {
		return BindlessHandle{}, false
	}
	return e.texture, true
}

// GetBuffer is the buffer analog of GetTexture.
func (r *PassResources) GetBuffer(name string) (driver.Buffer, bool) {
	e, ok := r.lookup(name)
	if !ok || e.typ != Buffer {
		return nil, false
	}
	return e.buffer, true
}

// ScopeIndex returns the scope-local instance index of the pass currently
// executing (always 0 for Global passes).
func (r *PassResources) ScopeIndex() int { return r.ownerInstIdx }

// RealCameraHandle returns the host's own camera identity backing the
// executing pass instance, and whether the instance is actually scoped
// PerCamera (a false second value means the pass is Global or PerLight).
// When the caller's CompileContext has no CameraHandles entry for this
// instance, the handle is 0 and the second value is still true.
func (r *PassResources) RealCameraHandle() (uint32, bool) {
	if r.ownerScope != PerCamera {
		return 0, false
	}
	return r.ownerRealHandle, true
}

// RealLightHandle returns the host's own light identity backing the
// executing pass instance, and whether the instance is actually scoped
// PerLight. See RealCameraHandle for the meaning of a false second value.
func (r *PassResources) RealLightHandle() (uint32, bool) {
	if r.ownerScope != PerLight {
		return 0, false
	}
	return r.ownerRealHandle, true
}

func resolveHandle(ri *resourceInstance, variant int) resolvedResource {
	rr := resolvedResource{typ: ri.decl.typ, scope: ri.decl.scope, instIdx: ri.decl.instIdx}
	isExternal := ri.decl.tex.IsExternal || ri.decl.buf.IsExternal
	switch ri.decl.typ {
	case Buffer:
		if isExternal {
			rr.buffer = ri.externalBuffer
		} else if len(ri.buffers) > 0 {
			rr.buffer = ri.buffers[variant%len(ri.buffers)]
		}
	default:
		if isExternal {
			rr.texture = BindlessHandle{Image: ri.externalImage, View: ri.externalView}
		} else if len(ri.textures) > 0 {
			rr.texture = ri.textures[variant%len(ri.textures)]
		}
	}
	return rr
}

// buildPassResources resolves every name the given pass instance reads or
// writes into a PassResources view for the given absolute frame index.
func buildPassResources(
	inst *passInstance,
	resources map[string]*resourceInstance,
	frame, framesInFlight int,
) *PassResources {
	entries := make(map[string]resolvedResource, len(inst.reads)+len(inst.writes))
	add := func(name string, offset FrameOffset) {
		ri := resources[name]
		if ri == nil {
			return
		}
		v := variantIndex(frame, offset, framesInFlight)
		if ri.variantCount == 1 {
			v = 0
		}
		entries[name] = resolveHandle(ri, v)
	}
	for _, r := range inst.reads {
		add(r.name, r.offset)
	}
	for _, w := range inst.writes {
		add(w.name, w.offset)
	}
	return &PassResources{
		ownerScope:      inst.scope,
		ownerInstIdx:    inst.instIdx,
		ownerRealHandle: inst.realHandle,
		entries:         entries,
	}
}

// emitBarriers batches a step's barriers into one driver call per
// distinct (src_stage, dst_stage) pair: buffer barriers go through
// CmdBuffer.Barrier, image barriers (which also carry a layout change) go
// through CmdBuffer.Transition.
func emitBarriers(
	cmd driver.CmdBuffer,
	bs []barrier,
	resources map[string]*resourceInstance,
	frame, framesInFlight int,
) {
	type stagePair struct {
		src, dst driver.PipelineStage
	}
	bufBatches := make(map[stagePair][]driver.Barrier)
	var bufOrder []stagePair
	imgBatches := make(map[stagePair][]driver.Transition)
	var imgOrder []stagePair

	for _, b := range bs {
		ri := resources[b.resourceName]
		if ri == nil {
			continue
		}
		sp := stagePair{b.srcStage, b.dstStage}
		if ri.decl.typ == Buffer {
			if _, ok := bufBatches[sp]; !ok {
				bufOrder = append(bufOrder, sp)
			}
			bufBatches[sp] = append(bufBatches[sp], driver.Barrier{
				SrcStage: b.srcStage, DstStage: b.dstStage,
				SrcAccess: b.srcAccess, DstAccess: b.dstAccess,
			})
			continue
		}
		v := variantIndex(frame, b.frameOffset, framesInFlight)
		if ri.variantCount == 1 {
			v = 0
		}
		rr := resolveHandle(ri, v)
		if _, ok := imgBatches[sp]; !ok {
			imgOrder = append(imgOrder, sp)
		}
		imgBatches[sp] = append(imgBatches[sp], driver.Transition{
			Barrier: driver.Barrier{
				SrcStage: b.srcStage, DstStage: b.dstStage,
				SrcAccess: b.srcAccess, DstAccess: b.dstAccess,
			},
			OldLayout: b.oldLayout,
			NewLayout: b.newLayout,
			View:      rr.texture.View,
			Aspect:    b.aspect,
		})
	}

	for _, sp := range bufOrder {
		cmd.Barrier(bufBatches[sp])
	}
	for _, sp := range imgOrder {
		cmd.Transition(imgBatches[sp])
	}
}

// RunGraph emits each scheduled pass's precomputed barriers and invokes
// its execute callback for the given frame. graphicsCmd and computeCmd
// may be the same command buffer when async compute is not in use.
func RunGraph(g *Graph, frameIndex int, graphicsCmd, computeCmd driver.CmdBuffer) {
	for step, idx := range g.sorted {
		inst := &g.insts[idx]
		cmd := graphicsCmd
		if inst.queue == Compute {
			cmd = computeCmd
		}
		emitBarriers(cmd, g.barriers[step], g.resources, frameIndex, g.framesInFlight)
		res := buildPassResources(inst, g.resources, frameIndex, g.framesInFlight)
		if inst.execute != nil {
			inst.execute(res, cmd, frameIndex, inst.userData)
		}
	}
}
