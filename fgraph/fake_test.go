// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

import (
	"github.com/neo3fg/framegraph/driver"
)

// fakeBuffer, fakeImage, fakeImageView and fakeGPU are minimal in-memory
// stand-ins for a real driver.GPU backend, used so the fgraph tests can
// build and run graphs without a graphics device. They record just enough
// bookkeeping (destroyed flag, live counts) to assert that every resource
// a graph allocates is also freed on destroy.
type fakeBuffer struct {
	cap       int64
	destroyed bool
}

func (b *fakeBuffer) Destroy()      { b.destroyed = true }
func (b *fakeBuffer) Visible() bool { return false }
func (b *fakeBuffer) Bytes() []byte { return nil }
func (b *fakeBuffer) Cap() int64    { return b.cap }

type fakeImageView struct {
	id        int
	destroyed bool
}

func (v *fakeImageView) Destroy() { v.destroyed = true }

type fakeImage struct {
	destroyed bool
}

func (i *fakeImage) Destroy() { i.destroyed = true }

func (i *fakeImage) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	return &fakeImageView{}, nil
}

type fakeCmdBuffer struct {
	barriers    []driver.Barrier
	transitions []driver.Transition

	// One increment per driver call, so tests can tell how the executor
	// batched a step's barriers, not just how many it emitted.
	barrierCalls    int
	transitionCalls int
}

func (c *fakeCmdBuffer) Destroy()     {}
func (c *fakeCmdBuffer) Begin() error { return nil }
func (c *fakeCmdBuffer) BeginRendering(color []driver.RenderAttachment, depth *driver.RenderAttachment) {
}
func (c *fakeCmdBuffer) EndRendering()                                                   {}
func (c *fakeCmdBuffer) BeginWork(wait bool)                                             {}
func (c *fakeCmdBuffer) EndWork()                                                        {}
func (c *fakeCmdBuffer) BeginBlit(wait bool)                                             {}
func (c *fakeCmdBuffer) EndBlit()                                                        {}
func (c *fakeCmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int)               {}
func (c *fakeCmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {}
func (c *fakeCmdBuffer) Dispatch(x, y, z int)                                            {}
func (c *fakeCmdBuffer) CopyBuffer(param *driver.BufferCopy)                             {}
func (c *fakeCmdBuffer) CopyImage(param *driver.ImageCopy)                               {}
func (c *fakeCmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64)       {}

func (c *fakeCmdBuffer) Barrier(b []driver.Barrier) {
	c.barrierCalls++
	c.barriers = append(c.barriers, b...)
}

func (c *fakeCmdBuffer) Transition(t []driver.Transition) {
	c.transitionCalls++
	c.transitions = append(c.transitions, t...)
}

func (c *fakeCmdBuffer) End() error   { return nil }
func (c *fakeCmdBuffer) Reset() error {
	c.barriers, c.transitions = nil, nil
	c.barrierCalls, c.transitionCalls = 0, 0
	return nil
}

type fakeGPU struct {
	buffersCreated int
	failBuffer     bool
	drv            *fakeDriver
}

func (g *fakeGPU) Driver() driver.Driver {
	if g.drv == nil {
		return nil
	}
	return g.drv
}

// fakeDriver is a driver.Driver test double that opens to a fakeGPU. It lets
// a test exercise driver.Register/driver.Drivers without linking a real
// backend.
type fakeDriver struct {
	name   string
	gpu    *fakeGPU
	closed bool
}

func newFakeDriver(name string) *fakeDriver {
	d := &fakeDriver{name: name}
	d.gpu = &fakeGPU{drv: d}
	return d
}

func (d *fakeDriver) Open() (driver.GPU, error) { return d.gpu, nil }
func (d *fakeDriver) Name() string              { return d.name }
func (d *fakeDriver) Close()                    { d.closed = true }

func (g *fakeGPU) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	if ch != nil {
		ch <- nil
	}
}

func (g *fakeGPU) NewCmdBuffer() (driver.CmdBuffer, error) { return &fakeCmdBuffer{}, nil }

func (g *fakeGPU) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	if g.failBuffer {
		return nil, driver.ErrNoDeviceMemory
	}
	g.buffersCreated++
	return &fakeBuffer{cap: size}, nil
}

func (g *fakeGPU) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	return &fakeImage{}, nil
}

// fakeTextureManager is a minimal bindless texture manager test double.
type fakeTextureManager struct {
	next     uint32
	live     map[uint32]bool
	failCube bool
	fail2D   bool
}

func newFakeTextureManager() *fakeTextureManager {
	return &fakeTextureManager{live: make(map[uint32]bool)}
}

func (tm *fakeTextureManager) AllocateTexture2D(width, height int, format driver.PixelFmt, usage driver.Usage) (BindlessHandle, error) {
	if tm.fail2D {
		return BindlessHandle{}, driver.ErrNoDeviceMemory
	}
	idx := tm.next
	tm.next++
	tm.live[idx] = true
	return BindlessHandle{Image: &fakeImage{}, View: &fakeImageView{id: int(idx)}, Index: idx}, nil
}

func (tm *fakeTextureManager) AllocateTextureCube(size int, format driver.PixelFmt, usage driver.Usage) (BindlessHandle, error) {
	if tm.failCube {
		return BindlessHandle{}, driver.ErrNoDeviceMemory
	}
	idx := tm.next
	tm.next++
	tm.live[idx] = true
	return BindlessHandle{Image: &fakeImage{}, View: &fakeImageView{id: int(idx)}, Index: idx}, nil
}

func (tm *fakeTextureManager) Free(h BindlessHandle) {
	delete(tm.live, h.Index)
}

func (tm *fakeTextureManager) Get(index uint32) (BindlessHandle, bool) {
	if !tm.live[index] {
		return BindlessHandle{}, false
	}
	return BindlessHandle{Index: index}, true
}
