// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

import "github.com/neo3fg/framegraph/driver"

// PassSetupFunc declares a pass's resources and accesses. It is called
// exactly once per instance during BuildGraph. Implementations must call
// only the PassSetup methods (Create*/RegisterExternal*/Find*/Read*/
// Write*/ReadWrite* and their variadic batch forms) and must not retain
// the *PassSetup pointer past the call.
type PassSetupFunc func(setup *PassSetup, userData any)

// PassExecuteFunc issues the GPU work for one pass instance for one
// frame. It is called once per instance per frame, in scheduled order.
// It must not mutate the graph; it owns beginning/ending any dynamic
// rendering block itself, since the core never opens one on its behalf.
type PassExecuteFunc func(res *PassResources, cmd driver.CmdBuffer, frameIndex int, userData any)

// PassDecl is an immutable template supplied to BuildGraph. It expands
// into one or more PassInstance values according to Scope.
type PassDecl struct {
	// Name is the base name of the pass. Instantiated names are derived
	// from it per scopeName.
	Name string

	// Scope controls how many instances this declaration expands into.
	Scope PassScope

	// Queue selects which command stream instances of this pass record
	// into at execute time.
	Queue QueueType

	// Setup is invoked once per instance during BuildGraph to populate
	// resource declarations and accesses.
	Setup PassSetupFunc

	// Execute is invoked once per instance per frame during RunGraph.
	Execute PassExecuteFunc

	// UserData is an opaque value forwarded verbatim to Setup and
	// Execute; the core never inspects it.
	UserData any
}

// resourceAccess is one (scoped_resource_name, frame_offset, access_mode)
// triple declared against a pass instance during setup.
type resourceAccess struct {
	name   string
	offset FrameOffset
	mode   AccessMode
}

// passInstance is a PassDecl after scope expansion. declIndex preserves
// the declaration-order position of the owning PassDecl, used to break
// ties deterministically when the topological sort dequeues several
// zero-in-degree passes at once (FIFO, i.e. declaration order). instIdx is
// the scope-local instance index (camera or light index; always 0 for
// Global). realHandle is the host's own camera/light identity for this
// instance's scope (0 for Global, or if the caller left the corresponding
// CompileContext handle slice empty).
type passInstance struct {
	id         passInstanceID
	name       string
	scope      PassScope
	instIdx    int
	queue      QueueType
	execute    PassExecuteFunc
	userData   any
	realHandle uint32

	declIndex int

	reads  []resourceAccess
	writes []resourceAccess

	// live is set by the dead-pass eliminator; passes for which it stays
	// false are dropped from the compiled schedule.
	live bool
}
