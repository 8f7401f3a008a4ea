// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

import "github.com/neo3fg/framegraph/internal/handle"

// instantiate expands decls into passInstance values according to each
// declaration's Scope, then runs every instance's setup callback exactly
// once, sharing a single append-only decls slice across the whole call so
// a later pass's Find* sees an earlier pass's Create*. Every instance and
// declaration ID is drawn from ids, the owning graph's handle pool.
func instantiate(decls []PassDecl, ctx *CompileContext, ids *handle.Pool) ([]passInstance, []resourceDecl) {
	var insts []passInstance
	var rdecls []resourceDecl

	for di, pd := range decls {
		n := 1
		switch pd.Scope {
		case PerCamera:
			n = ctx.NumCameras
		case PerLight:
			n = ctx.NumLights
		}
		for i := 0; i < n; i++ {
			insts = append(insts, passInstance{
				id:         ids.New(),
				name:       scopeName(pd.Name, pd.Scope, i),
				scope:      pd.Scope,
				instIdx:    i,
				queue:      pd.Queue,
				execute:    pd.Execute,
				userData:   pd.UserData,
				declIndex:  di,
				realHandle: realHandleFor(pd.Scope, i, ctx),
			})
		}
	}

	for i := range insts {
		inst := &insts[i]
		decl := decls[inst.declIndex]
		if decl.Setup == nil {
			continue
		}
		setup := &PassSetup{
			passName: inst.name,
			scope:    inst.scope,
			instIdx:  inst.instIdx,
			ctx:      ctx,
			ids:      ids,
			decls:    &rdecls,
			reads:    &inst.reads,
			writes:   &inst.writes,
		}
		decl.Setup(setup, decl.UserData)
	}

	return insts, rdecls
}

// realHandleFor looks up the host's own camera/light identity for a scoped
// instance, returning 0 if the scope doesn't carry one (Global) or the
// caller's CompileContext left the corresponding handle slice nil or too
// short for index i.
func realHandleFor(scope PassScope, i int, ctx *CompileContext) uint32 {
	switch scope {
	case PerCamera:
		if i >= 0 && i < len(ctx.CameraHandles) {
			return ctx.CameraHandles[i]
		}
	case PerLight:
		if i >= 0 && i < len(ctx.LightHandles) {
			return ctx.LightHandles[i]
		}
	}
	return 0
}
