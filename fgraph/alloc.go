// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

import "github.com/neo3fg/framegraph/driver"

// resourceInstance is the runtime counterpart of a resourceDecl: either
// transient (graph-owned, allocated/freed with the graph) or external
// (host-managed, memory never touched by the graph).
type resourceInstance struct {
	decl resourceDecl

	variantCount int

	// Owned storage, one entry per variant. Exactly one of the two is
	// populated depending on decl.typ.
	buffers  []driver.Buffer
	textures []BindlessHandle

	// External storage, set by UpdateExternalTexture/UpdateExternalBuffer.
	// External resources always have variantCount == 1: the host is
	// responsible for whatever double-buffering it needs.
	externalImage  driver.Image
	externalView   driver.ImageView
	externalBuffer driver.Buffer

	// firstUseStep/lastUseStep are the inclusive bounds, in sorted-order
	// position, of every pass that accesses this resource. They are
	// precomputed for a future interval-graph-coloring aliasing pass and
	// are not otherwise consulted by this allocator.
	firstUseStep, lastUseStep int
}

// needsVariants reports whether any access to this resource, across every
// instance, uses a non-Current frame offset, or the declaration itself
// requested double-buffering.
func needsVariants(name string, insts []passInstance, decl resourceDecl) bool {
	if decl.tex.DoubleBuffer && decl.typ != Buffer {
		return true
	}
	for _, inst := range insts {
		for _, r := range inst.reads {
			if r.name == name && r.offset != Current {
				return true
			}
		}
		for _, w := range inst.writes {
			if w.name == name && w.offset != Current {
				return true
			}
		}
	}
	return false
}

// computeLifetimes walks sorted (live-only) order and records, per
// resource name, the first and last step index at which any pass
// accesses it.
func computeLifetimes(sorted []int, insts []passInstance) map[string][2]int {
	life := make(map[string][2]int)
	touch := func(name string, step int) {
		if r, ok := life[name]; ok {
			if step < r[0] {
				r[0] = step
			}
			if step > r[1] {
				r[1] = step
			}
			life[name] = r
		} else {
			life[name] = [2]int{step, step}
		}
	}
	for step, idx := range sorted {
		inst := insts[idx]
		for _, r := range inst.reads {
			touch(r.name, step)
		}
		for _, w := range inst.writes {
			touch(w.name, step)
		}
	}
	return life
}

// allocate decides a variant count per declared resource, then allocates
// owned storage through gpu/tm for transient resources; external resources
// are recorded without allocation, to be populated later via
// UpdateExternalTexture/Buffer. On any allocation failure, everything
// allocated so far by this call is freed before returning, so a failed
// BuildGraph never leaks.
func allocate(
	rdecls []resourceDecl,
	insts []passInstance,
	sorted []int,
	ctx *CompileContext,
	gpu driver.GPU,
	tm TextureManager,
) (map[string]*resourceInstance, error) {
	lifetimes := computeLifetimes(sorted, insts)
	resources := make(map[string]*resourceInstance, len(rdecls))

	free := func() {
		for _, ri := range resources {
			freeResourceInstance(ri, tm)
		}
	}

	for _, decl := range rdecls {
		ri := &resourceInstance{decl: decl}
		if life, ok := lifetimes[decl.name]; ok {
			ri.firstUseStep, ri.lastUseStep = life[0], life[1]
		}

		isExternal := decl.tex.IsExternal || decl.buf.IsExternal
		if isExternal {
			ri.variantCount = 1
			resources[decl.name] = ri
			continue
		}

		if needsVariants(decl.name, insts, decl) {
			ri.variantCount = ctx.FramesInFlight
		} else {
			ri.variantCount = 1
		}

		var err error
		switch decl.typ {
		case Buffer:
			err = allocateBuffer(ri, gpu)
		case Texture2D:
			err = allocateTexture2D(ri, tm)
		case TextureCube:
			err = allocateTextureCube(ri, tm)
		}
		if err != nil {
			free()
			return nil, wrapf(AllocationFailed, err, "resource %q", decl.name)
		}
		resources[decl.name] = ri
	}

	return resources, nil
}

func allocateBuffer(ri *resourceInstance, gpu driver.GPU) error {
	ri.buffers = make([]driver.Buffer, ri.variantCount)
	for i := 0; i < ri.variantCount; i++ {
		b, err := gpu.NewBuffer(ri.decl.buf.Size, false, ri.decl.buf.Usage)
		if err != nil {
			for j := 0; j < i; j++ {
				ri.buffers[j].Destroy()
			}
			return err
		}
		ri.buffers[i] = b
	}
	return nil
}

func allocateTexture2D(ri *resourceInstance, tm TextureManager) error {
	ri.textures = make([]BindlessHandle, ri.variantCount)
	d := ri.decl.tex
	for i := 0; i < ri.variantCount; i++ {
		h, err := tm.AllocateTexture2D(d.Width, d.Height, d.Format, d.Usage)
		if err != nil {
			for j := 0; j < i; j++ {
				tm.Free(ri.textures[j])
			}
			return err
		}
		ri.textures[i] = h
	}
	return nil
}

func allocateTextureCube(ri *resourceInstance, tm TextureManager) error {
	ri.textures = make([]BindlessHandle, ri.variantCount)
	d := ri.decl.tex
	for i := 0; i < ri.variantCount; i++ {
		h, err := tm.AllocateTextureCube(d.Width, d.Format, d.Usage)
		if err != nil {
			for j := 0; j < i; j++ {
				tm.Free(ri.textures[j])
			}
			return err
		}
		ri.textures[i] = h
	}
	return nil
}

func freeResourceInstance(ri *resourceInstance, tm TextureManager) {
	for _, b := range ri.buffers {
		if b != nil {
			b.Destroy()
		}
	}
	for _, t := range ri.textures {
		tm.Free(t)
	}
}
