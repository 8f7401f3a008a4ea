// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package handle defines a generation-counted index pool.
// It generalizes the slot-reuse idiom used for resource IDs: a handle is a
// pair of (index, generation), where the index identifies a slot in a
// dense backing store and the generation is bumped every time the slot is
// recycled. Holding on to a stale handle after its slot is reused is
// therefore detectable instead of silently aliasing unrelated data.
package handle

import "github.com/neo3fg/framegraph/internal/bitm"

// Handle is a (index, generation) pair identifying a slot in a Pool.
type Handle struct {
	Index int
	Gen   uint32
}

// IsValid reports whether h could have been produced by a Pool (the zero
// Handle is never returned by New, since generation 0 is reserved to mark
// an unused slot).
func (h Handle) IsValid() bool { return h.Gen != 0 }

// Pool manages a dense set of generation-counted slots.
// It does not store caller data directly; callers index their own parallel
// slices using Handle.Index, and use Pool to validate that a given Handle
// still refers to the slot it was issued for.
type Pool struct {
	bits bitm.Bitm[uint32]
	gens []uint32
}

// New allocates a slot and returns a Handle referring to it.
// The returned generation is never 0.
func (p *Pool) New() Handle {
	idx, ok := p.bits.Search()
	if !ok {
		base := p.bits.Grow(1)
		p.gens = append(p.gens, make([]uint32, p.bits.Len()-base)...)
		idx, ok = p.bits.Search()
		if !ok {
			panic("handle: Pool.New: Grow did not free a slot")
		}
	}
	p.bits.Set(idx)
	if p.gens[idx] == 0 {
		p.gens[idx] = 1
	}
	return Handle{Index: idx, Gen: p.gens[idx]}
}

// Free releases the slot referred to by h, bumping its generation so that
// stale copies of h no longer validate.
// Freeing an invalid or already-free handle has no effect.
func (p *Pool) Free(h Handle) {
	if !p.Valid(h) {
		return
	}
	p.bits.Unset(h.Index)
	p.gens[h.Index]++
	if p.gens[h.Index] == 0 {
		p.gens[h.Index] = 1
	}
}

// Valid reports whether h refers to a slot that is currently in use and
// whose generation matches.
func (p *Pool) Valid(h Handle) bool {
	if h.Index < 0 || h.Index >= len(p.gens) {
		return false
	}
	return p.bits.IsSet(h.Index) && p.gens[h.Index] == h.Gen
}

// Len returns the number of slots currently in use.
func (p *Pool) Len() int { return p.bits.Len() - p.bits.Rem() }

// Reset releases every slot in the pool, bumping each generation so that
// handles issued before the reset never validate again.
func (p *Pool) Reset() {
	for i := range p.gens {
		if p.bits.IsSet(i) {
			p.gens[i]++
			if p.gens[i] == 0 {
				p.gens[i] = 1
			}
		}
	}
	p.bits.Clear()
}
