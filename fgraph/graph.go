// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

import (
	"github.com/neo3fg/framegraph/driver"
	"github.com/neo3fg/framegraph/internal/handle"
)

// Graph is the compiled result of BuildGraph: pass instances, resource
// instances, the live sub-graph's sorted order and precomputed barriers.
// It is safe to call BuildGraph again on an already-built Graph (rebuild
// replaces); the prior compiled state is destroyed first.
type Graph struct {
	insts          []passInstance
	resources      map[string]*resourceInstance
	sorted         []int
	barriers       [][]barrier
	framesInFlight int

	gpu driver.GPU
	tm  TextureManager

	// ids backs every TextureID/BufferID/passInstanceID issued during a
	// build. Destroy resets it, bumping generations, so IDs held across a
	// rebuild fail validation instead of aliasing the new build's slots.
	ids handle.Pool
}

// BuildGraph compiles decls into g, running instantiation, validation,
// dependency-edge construction, dead-pass elimination, topological
// sorting, resource allocation and barrier synthesis in that order. Any
// prior compiled state in g is destroyed first. On failure, g is left
// empty and safe to pass to Destroy.
func BuildGraph(g *Graph, decls []PassDecl, ctx CompileContext, gpu driver.GPU, tm TextureManager) error {
	Destroy(g)

	if ctx.FramesInFlight <= 0 {
		ctx.FramesInFlight = defaultFramesInFlight
	}

	insts, rdecls := instantiate(decls, &ctx, &g.ids)

	if err := validate(insts, rdecls); err != nil {
		g.ids.Reset()
		return err
	}

	external := make(map[string]bool, len(rdecls))
	for _, d := range rdecls {
		if d.tex.IsExternal || d.buf.IsExternal {
			external[d.name] = true
		}
	}

	edges := buildDeps(insts)
	markLive(insts, edges, func(name string) bool { return external[name] })

	sorted, err := topoSort(insts, edges)
	if err != nil {
		g.ids.Reset()
		return err
	}

	resources, err := allocate(rdecls, insts, sorted, &ctx, gpu, tm)
	if err != nil {
		g.ids.Reset()
		return err
	}

	barriers := synthesizeBarriers(sorted, insts, resources)

	g.insts = insts
	g.resources = resources
	g.sorted = sorted
	g.barriers = barriers
	g.framesInFlight = ctx.FramesInFlight
	g.gpu = gpu
	g.tm = tm
	return nil
}

// UpdateExternalTexture sets the image/view backing the external texture
// resource named name. If name does not resolve to a declared external
// texture, the call is a silent no-op: the host is free to call it
// speculatively for resources a particular build did not end up
// declaring.
func UpdateExternalTexture(g *Graph, name string, image driver.Image, view driver.ImageView) {
	ri, ok := g.resources[name]
	if !ok || ri.decl.typ == Buffer || !ri.decl.tex.IsExternal {
		return
	}
	ri.externalImage = image
	ri.externalView = view
}

// UpdateExternalBuffer sets the buffer backing the external buffer
// resource named name. See UpdateExternalTexture for the no-op rule.
func UpdateExternalBuffer(g *Graph, name string, buf driver.Buffer) {
	ri, ok := g.resources[name]
	if !ok || ri.decl.typ != Buffer || !ri.decl.buf.IsExternal {
		return
	}
	ri.externalBuffer = buf
}

// Destroy frees every owned GPU resource in g and clears its compiled
// state. External resources are left untouched: the graph never owned
// their memory. Calling Destroy on a zero or already-destroyed Graph has
// no effect.
func Destroy(g *Graph) {
	if g.resources != nil {
		for _, ri := range g.resources {
			isExternal := ri.decl.tex.IsExternal || ri.decl.buf.IsExternal
			if isExternal {
				continue
			}
			freeResourceInstance(ri, g.tm)
		}
	}
	g.ids.Reset()
	g.insts = nil
	g.resources = nil
	g.sorted = nil
	g.barriers = nil
	g.framesInFlight = 0
	g.gpu = nil
	g.tm = nil
}

// ValidTextureID reports whether id was issued by the current build of g.
// An ID captured during a setup callback and held across a Destroy or a
// rebuild fails this check: its slot's generation was bumped, so it can
// never alias a resource of the new build.
func (g *Graph) ValidTextureID(id TextureID) bool { return g.ids.Valid(id.h) }

// ValidBufferID is the buffer analog of ValidTextureID.
func (g *Graph) ValidBufferID(id BufferID) bool { return g.ids.Valid(id.h) }

// NumLivePasses returns the number of passes the dead-pass eliminator
// kept in the compiled schedule. It exists mainly to make the compiled
// schedule's size easy to assert against without reaching into Graph
// internals.
func (g *Graph) NumLivePasses() int { return len(g.sorted) }
