// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package fgraph

import (
	"testing"

	"github.com/neo3fg/framegraph/driver"
	"github.com/stretchr/testify/assert"
)

// TestBarrierLayoutChaining checks that along the scheduled order, every
// barrier picks up a resource exactly where the previous one left it: the
// old layout of access N+1 equals the new layout of access N.
func TestBarrierLayoutChaining(t *testing.T) {
	assert := assert.New(t)

	decls := []PassDecl{
		{
			Name: "clear_gbuffer", Scope: PerCamera, Queue: Graphics,
			Setup: func(s *PassSetup, _ any) {
				s.CreateTexture("gbuf_albedo", colorDesc(1920, 1080))
				s.CreateTexture("gbuf_depth", depthDesc(1920, 1080))
				s.WritesTextures("gbuf_albedo", "gbuf_depth")
			},
		},
		{
			Name: "lighting", Scope: PerCamera, Queue: Graphics,
			Setup: func(s *PassSetup, _ any) {
				s.ReadsTextures("gbuf_albedo", "gbuf_depth")
				s.CreateTexture("final", colorDesc(1920, 1080))
				s.WriteTexture("final", Current)
			},
		},
		{
			Name: "present", Scope: Global, Queue: Graphics,
			Setup: func(s *PassSetup, _ any) {
				s.ReadTexture("final_cam_0", Current)
				s.RegisterExternalTexture("swapchain", TextureDesc{Format: driver.BGRA8Unorm})
				s.WriteTexture("swapchain", Current)
			},
		},
	}

	ctx := CompileContext{NumCameras: 1, FramesInFlight: 2}
	var g Graph
	assert.NoError(BuildGraph(&g, decls, ctx, &fakeGPU{}, newFakeTextureManager()))
	defer Destroy(&g)

	lastLayout := make(map[string]driver.ImageLayout)
	for _, step := range g.barriers {
		for _, b := range step {
			if prev, ok := lastLayout[b.resourceName]; ok {
				assert.Equal(prev, b.oldLayout, "resource %q", b.resourceName)
			}
			lastLayout[b.resourceName] = b.newLayout
		}
	}

	// And the concrete chain for the albedo attachment: write as color
	// attachment, then read as sampled texture.
	var albedo []barrier
	for _, step := range g.barriers {
		for _, b := range step {
			if b.resourceName == "gbuf_albedo_cam_0" {
				albedo = append(albedo, b)
			}
		}
	}
	assert.Equal(2, len(albedo))
	assert.Equal(driver.Undefined, albedo[0].oldLayout)
	assert.Equal(driver.ColorAttachmentOptimal, albedo[0].newLayout)
	assert.Equal(driver.ColorAttachmentOptimal, albedo[1].oldLayout)
	assert.Equal(driver.ShaderReadOnlyOptimal, albedo[1].newLayout)
}

// TestDepthBarrierTargets checks the graphics depth read/write rules: the
// early/late fragment test stages, the depth-stencil access flags and the
// depth aspect.
func TestDepthBarrierTargets(t *testing.T) {
	assert := assert.New(t)

	decls := []PassDecl{
		{
			Name: "zprepass", Scope: Global, Queue: Graphics,
			Setup: func(s *PassSetup, _ any) {
				s.CreateTexture("depth", depthDesc(1024, 1024))
				s.WriteTexture("depth", Current)
			},
		},
		{
			Name: "occlusion", Scope: Global, Queue: Graphics,
			Setup: func(s *PassSetup, _ any) {
				s.ReadTexture("depth", Current)
				s.RegisterExternalTexture("swapchain", TextureDesc{Format: driver.BGRA8Unorm})
				s.WriteTexture("swapchain", Current)
			},
		},
	}

	var g Graph
	assert.NoError(BuildGraph(&g, decls, CompileContext{FramesInFlight: 2}, &fakeGPU{}, newFakeTextureManager()))
	defer Destroy(&g)

	var depth []barrier
	for _, step := range g.barriers {
		for _, b := range step {
			if b.resourceName == "depth" {
				depth = append(depth, b)
			}
		}
	}
	assert.Equal(2, len(depth))

	w := depth[0]
	assert.Equal(driver.EarlyFragmentTests|driver.LateFragmentTests, w.dstStage)
	assert.Equal(driver.DepthStencilAttachmentWrite, w.dstAccess)
	assert.Equal(driver.DepthStencilAttachmentOptimal, w.newLayout)
	assert.Equal(driver.AspectDepth, w.aspect)

	r := depth[1]
	assert.Equal(driver.EarlyFragmentTests|driver.LateFragmentTests, r.dstStage)
	assert.Equal(driver.DepthStencilAttachmentRead, r.dstAccess)
	assert.Equal(driver.DepthStencilReadOnlyOptimal, r.newLayout)
}

// TestComputeQueueBarrierTargets checks the compute-queue rules: shader
// read/write access at the compute shader stage, General layout for
// storage-image writes, and no layout for buffers.
func TestComputeQueueBarrierTargets(t *testing.T) {
	assert := assert.New(t)

	decls := []PassDecl{
		{
			Name: "render", Scope: Global, Queue: Graphics,
			Setup: func(s *PassSetup, _ any) {
				s.CreateTexture("scene", colorDesc(1920, 1080))
				s.WriteTexture("scene", Current)
			},
		},
		{
			Name: "reduce_luminance", Scope: Global, Queue: Compute,
			Setup: func(s *PassSetup, _ any) {
				s.ReadTexture("scene", Current)
				s.CreateTexture("avg_lum", TextureDesc{
					Width: 1, Height: 1,
					Format: driver.RGBA32Float,
					Usage:  driver.UShaderWrite | driver.UShaderSample,
				})
				s.WriteTexture("avg_lum", Current)
				s.CreateBuffer("histogram", BufferDesc{Size: 1024, Usage: driver.UShaderWrite})
				s.WriteBuffer("histogram", Current)
			},
		},
		{
			Name: "tonemap", Scope: Global, Queue: Graphics,
			Setup: func(s *PassSetup, _ any) {
				s.ReadsTextures("scene", "avg_lum")
				s.ReadBuffer("histogram", Current)
				s.RegisterExternalTexture("swapchain", TextureDesc{Format: driver.BGRA8Unorm})
				s.WriteTexture("swapchain", Current)
			},
		},
	}

	var g Graph
	assert.NoError(BuildGraph(&g, decls, CompileContext{FramesInFlight: 2}, &fakeGPU{}, newFakeTextureManager()))
	defer Destroy(&g)

	byName := make(map[string][]barrier)
	for _, step := range g.barriers {
		for _, b := range step {
			byName[b.resourceName] = append(byName[b.resourceName], b)
		}
	}

	// scene: written by graphics, then read by the compute reducer.
	scene := byName["scene"]
	assert.GreaterOrEqual(len(scene), 2)
	assert.Equal(driver.ComputeShader, scene[1].dstStage)
	assert.Equal(driver.ShaderRead, scene[1].dstAccess)
	assert.Equal(driver.ShaderReadOnlyOptimal, scene[1].newLayout)

	// avg_lum: storage-image write on the compute queue lands in General.
	lum := byName["avg_lum"]
	assert.GreaterOrEqual(len(lum), 1)
	assert.Equal(driver.ComputeShader, lum[0].dstStage)
	assert.Equal(driver.ShaderWrite, lum[0].dstAccess)
	assert.Equal(driver.General, lum[0].newLayout)

	// histogram: a buffer write on the compute queue, then a graphics
	// vertex-input read; layouts stay Undefined throughout.
	hist := byName["histogram"]
	assert.Equal(2, len(hist))
	assert.Equal(driver.ComputeShader, hist[0].dstStage)
	assert.Equal(driver.ShaderWrite, hist[0].dstAccess)
	assert.Equal(driver.Undefined, hist[0].newLayout)
	assert.Equal(driver.VertexInput, hist[1].dstStage)
	assert.Equal(driver.VertexAttributeRead|driver.IndexRead|driver.IndirectCommandRead, hist[1].dstAccess)
}

// TestImportedInitialLayout checks that the first access to an imported
// image infers its source layout from the declared usage rather than
// assuming Undefined.
func TestImportedInitialLayout(t *testing.T) {
	assert := assert.New(t)

	decls := []PassDecl{
		{
			Name: "sky", Scope: Global, Queue: Graphics,
			Setup: func(s *PassSetup, _ any) {
				s.RegisterExternalTexture("env_map", TextureDesc{
					Format: driver.RGBA16Float,
					Usage:  driver.UShaderSample,
				})
				s.ReadTexture("env_map", Current)
				s.RegisterExternalTexture("swapchain", TextureDesc{
					Format: driver.BGRA8Unorm,
					Usage:  driver.URenderTarget,
				})
				s.WriteTexture("swapchain", Current)
			},
		},
	}

	var g Graph
	assert.NoError(BuildGraph(&g, decls, CompileContext{FramesInFlight: 2}, &fakeGPU{}, newFakeTextureManager()))
	defer Destroy(&g)

	var envOld, scOld driver.ImageLayout
	envSeen, scSeen := false, false
	for _, step := range g.barriers {
		for _, b := range step {
			switch b.resourceName {
			case "env_map":
				if !envSeen {
					envOld, envSeen = b.oldLayout, true
				}
			case "swapchain":
				if !scSeen {
					scOld, scSeen = b.oldLayout, true
				}
			}
		}
	}
	assert.True(envSeen)
	assert.Equal(driver.ShaderReadOnlyOptimal, envOld)
	assert.True(scSeen)
	assert.Equal(driver.ColorAttachmentOptimal, scOld)
}
