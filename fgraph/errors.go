// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

import (
	"fmt"

	"github.com/pkg/errors"
)

// CompileErrorKind enumerates the fixed set of ways BuildGraph can fail.
type CompileErrorKind int

// Compile error kinds.
const (
	// None indicates success; CompileError.Kind never equals None for an
	// error value actually returned from BuildGraph.
	None CompileErrorKind = iota

	// CycleDetected means the topological sort could not order every
	// pass instance: the dependency graph is not a DAG. The check covers
	// all instances, so a cycle among eliminated (dead) passes is
	// reported too.
	CycleDetected

	// DanglingRead means a read references a resource name that was
	// never declared, or a Current/Prev read has no writer anywhere in
	// the declaration set.
	DanglingRead

	// TypeMismatch is reserved for a typed handle used against the wrong
	// resource type at a builder call site. The phantom typing of
	// TextureID/BufferID makes this mistake unrepresentable through the
	// Go API, so this kind is never produced today; it is kept in the
	// taxonomy for parity with the error model and for a future dynamic
	// (string-keyed) entry point.
	TypeMismatch

	// FrameOffsetInvalid is reserved for strict temporal validation (a
	// Prev read requiring a matching Next writer), which is not enforced
	// in this implementation.
	FrameOffsetInvalid

	// AllocationFailed means GPU resource creation or memory allocation
	// failed while compiling the resource allocator stage.
	AllocationFailed
)

func (k CompileErrorKind) String() string {
	switch k {
	case None:
		return "none"
	case CycleDetected:
		return "cycle_detected"
	case DanglingRead:
		return "dangling_read"
	case TypeMismatch:
		return "type_mismatch"
	case FrameOffsetInvalid:
		return "frame_offset_invalid"
	case AllocationFailed:
		return "allocation_failed"
	default:
		return "invalid"
	}
}

// CompileError is returned by BuildGraph on failure. It is a small,
// comparable value so callers can switch on Kind, while still supporting
// errors.Is/errors.Unwrap against the cause that pkg/errors attached along
// the way (e.g. the driver.ErrNoDeviceMemory that triggered
// AllocationFailed).
type CompileError struct {
	Kind  CompileErrorKind
	cause error
}

func (e *CompileError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("fgraph: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("fgraph: %s", e.Kind)
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/errors.As.
func (e *CompileError) Unwrap() error { return e.cause }

// Is reports whether target is a *CompileError with the same Kind, so
// sentinel-style comparisons (errors.Is(err, &CompileError{Kind: CycleDetected}))
// work regardless of how deeply the error was wrapped.
func (e *CompileError) Is(target error) bool {
	t, ok := target.(*CompileError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newCompileErr(kind CompileErrorKind, cause error) *CompileError {
	return &CompileError{Kind: kind, cause: cause}
}

// wrapf attaches positional context (which pass, which resource) to cause
// using pkg/errors, then folds the result into a CompileError of the given
// kind.
func wrapf(kind CompileErrorKind, cause error, format string, args ...any) *CompileError {
	return newCompileErr(kind, errors.Wrapf(cause, format, args...))
}

// newf builds a CompileError with no underlying driver/allocation cause,
// just positional context (e.g. which pass/resource violated an
// invariant). Unlike wrapf, it never loses the message to a nil cause:
// errors.Wrapf returns nil when given a nil error, which would silently
// drop validation failures that have no prior error to wrap.
func newf(kind CompileErrorKind, format string, args ...any) *CompileError {
	return newCompileErr(kind, errors.Errorf(format, args...))
}
