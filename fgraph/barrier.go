// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

import "github.com/neo3fg/framegraph/driver"

// barrier is a precomputed synchronization transition for one resource
// access. The image handle is deliberately absent: it is resolved at emit
// time from the resource's variant, indexed by (frame_index, FrameOffset),
// never baked in at compile time.
type barrier struct {
	resourceName string
	frameOffset  FrameOffset

	srcStage, dstStage   driver.PipelineStage
	srcAccess, dstAccess driver.AccessFlags
	oldLayout, newLayout driver.ImageLayout
	aspect               driver.Aspect
}

// accessState is what last_access tracks per resource name while walking
// scheduled passes.
type accessState struct {
	stage  driver.PipelineStage
	access driver.AccessFlags
	layout driver.ImageLayout
}

func initialAccess(decl resourceDecl) accessState {
	isExternal := decl.tex.IsExternal || decl.buf.IsExternal
	if !isExternal || decl.typ == Buffer {
		return accessState{stage: driver.TopOfPipe, access: driver.NoAccess, layout: driver.Undefined}
	}
	// Imported (external) image: infer the layout the host most plausibly
	// already holds it in, from the declared usage flags.
	u := decl.tex.Usage
	layout := driver.General
	switch {
	case u&driver.URenderTarget != 0:
		layout = driver.ColorAttachmentOptimal
	case u&driver.UShaderSample != 0:
		layout = driver.ShaderReadOnlyOptimal
	case decl.tex.aspectMask()&(driver.AspectDepth|driver.AspectStencil) != 0:
		layout = driver.DepthStencilAttachmentOptimal
	}
	return accessState{stage: driver.TopOfPipe, access: driver.NoAccess, layout: layout}
}

// readTarget computes the target (stage, access, layout) of a read access
// from the resource's queue, type and depth-ness.
func readTarget(queue QueueType, rtype ResourceType, isDepth bool) accessState {
	switch {
	case queue == Compute && rtype == Buffer:
		return accessState{driver.ComputeShader, driver.ShaderRead, driver.Undefined}
	case queue == Compute:
		return accessState{driver.ComputeShader, driver.ShaderRead, driver.ShaderReadOnlyOptimal}
	case queue == Graphics && rtype == Buffer:
		return accessState{
			driver.VertexInput,
			driver.VertexAttributeRead | driver.IndexRead | driver.IndirectCommandRead,
			driver.Undefined,
		}
	case queue == Graphics && isDepth:
		return accessState{
			driver.EarlyFragmentTests | driver.LateFragmentTests,
			driver.DepthStencilAttachmentRead,
			driver.DepthStencilReadOnlyOptimal,
		}
	default: // Graphics, color texture/cube
		return accessState{driver.FragmentShader, driver.ShaderRead, driver.ShaderReadOnlyOptimal}
	}
}

// writeTarget computes the target (stage, access, layout) of a write
// access. For graphics-queue attachments, when isReadWrite is set, the
// attachment read access bit is folded into the write's access mask, so
// the single write-branch transition (to the attachment-optimal layout,
// never first to ShaderReadOnlyOptimal) also covers the load. Compute
// targets ignore isReadWrite.
func writeTarget(queue QueueType, rtype ResourceType, isDepth, isReadWrite bool) accessState {
	switch {
	case queue == Compute && rtype == Buffer:
		return accessState{driver.ComputeShader, driver.ShaderWrite, driver.Undefined}
	case queue == Compute:
		return accessState{driver.ComputeShader, driver.ShaderWrite, driver.General}
	case queue == Graphics && isDepth:
		a := driver.DepthStencilAttachmentWrite
		if isReadWrite {
			a |= driver.DepthStencilAttachmentRead
		}
		return accessState{
			driver.EarlyFragmentTests | driver.LateFragmentTests,
			a,
			driver.DepthStencilAttachmentOptimal,
		}
	default: // Graphics, color texture/cube (and buffer, lacking a distinct rule)
		a := driver.ColorAttachmentWrite
		if isReadWrite {
			a |= driver.ColorAttachmentRead
		}
		return accessState{driver.ColorAttachmentOutput, a, driver.ColorAttachmentOptimal}
	}
}

// synthesizeBarriers walks the scheduled (sorted, live-only) passes and
// emits the barrier list for each step. The returned slice is indexed the
// same way as sorted: barriers[i] holds the barriers that must be
// recorded immediately before executing the pass at sorted[i].
func synthesizeBarriers(
	sorted []int,
	insts []passInstance,
	resources map[string]*resourceInstance,
) [][]barrier {
	lastAccess := make(map[string]accessState, len(resources))
	out := make([][]barrier, len(sorted))

	for step, idx := range sorted {
		inst := &insts[idx]

		writeOffset := make(map[string]FrameOffset)
		writeOrder := make([]string, 0, len(inst.writes))
		for _, w := range inst.writes {
			if _, ok := writeOffset[w.name]; !ok {
				writeOrder = append(writeOrder, w.name)
			}
			writeOffset[w.name] = w.offset
		}

		readOffset := make(map[string]FrameOffset)
		readOrder := make([]string, 0, len(inst.reads))
		for _, r := range inst.reads {
			if _, ok := readOffset[r.name]; !ok {
				readOrder = append(readOrder, r.name)
			}
			readOffset[r.name] = r.offset
		}

		var bs []barrier

		for _, name := range readOrder {
			if _, isWrite := writeOffset[name]; isWrite {
				continue // the write branch below owns this resource's transition.
			}
			ri := resources[name]
			if ri == nil {
				continue
			}
			offset := readOffset[name]
			target := readTarget(inst.queue, ri.decl.typ, ri.decl.tex.Format.IsDepth())
			src, ok := lastAccess[name]
			if !ok {
				src = initialAccess(ri.decl)
			}
			if b, emit := makeBarrier(name, offset, ri, src, target); emit {
				bs = append(bs, b)
			}
			lastAccess[name] = target
		}

		for _, name := range writeOrder {
			ri := resources[name]
			if ri == nil {
				continue
			}
			offset := writeOffset[name]
			_, isReadWrite := readOffset[name]
			target := writeTarget(inst.queue, ri.decl.typ, ri.decl.tex.Format.IsDepth(), isReadWrite)
			src, ok := lastAccess[name]
			if !ok {
				src = initialAccess(ri.decl)
			}
			if b, emit := makeBarrier(name, offset, ri, src, target); emit {
				bs = append(bs, b)
			}
			lastAccess[name] = target
		}

		out[step] = bs
	}

	return out
}

func makeBarrier(name string, offset FrameOffset, ri *resourceInstance, src, dst accessState) (barrier, bool) {
	if src.stage == dst.stage && src.access == dst.access && src.layout == dst.layout {
		return barrier{}, false
	}
	b := barrier{
		resourceName: name,
		frameOffset:  offset,
		srcStage:     src.stage,
		dstStage:     dst.stage,
		srcAccess:    src.access,
		dstAccess:    dst.access,
		oldLayout:    src.layout,
		newLayout:    dst.layout,
		aspect:       ri.decl.tex.aspectMask(),
	}
	if offset != Current {
		// Temporal access: frame separation already orders this against
		// its counterpart in the adjacent frame, so only the memory
		// visibility half of the barrier is needed.
		b.srcStage = driver.AllCommands
		b.dstStage = driver.AllCommands
	}
	return b, true
}
