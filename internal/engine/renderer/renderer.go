// Package renderer draws the scene graph with OpenGL and owns its GPU resources.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/sonoir/internal/engine/lighting"
	"github.com/Faultbox/sonoir/internal/engine/scenegraph"
	"github.com/Faultbox/sonoir/internal/engine/shader"
	"github.com/Faultbox/sonoir/internal/logger"
	"github.com/Faultbox/sonoir/pkg/math"
)

// materialBinding is the uniform buffer binding point of the Material block.
const materialBinding = 0

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// View is what the renderer needs from a camera.
type View interface {
	Position() math.Vec3
	ViewMatrix() math.Mat4
	ProjectionMatrix() math.Mat4
}

// Stats reports live GPU objects.
type Stats struct {
	Geometries    int
	Materials     int
	FreeMaterials int
	DrawCalls     int
}

type gpuGeometry struct {
	vao, vbo, ebo uint32
	count         int32
}

// Renderer handles all OpenGL rendering. It also acts as the device that
// frees GPU state for released scene resources.
type Renderer struct {
	config  Config
	program *shader.Program
	log     *zap.Logger

	geometries map[uint64]*gpuGeometry
	materials  map[uint64]uint32
	freeUBOs   []uint32

	drawCalls int
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:     cfg,
		log:        logger.Named("renderer"),
		geometries: make(map[uint64]*gpuGeometry),
		materials:  make(map[uint64]uint32),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	var err error
	r.program, err = shader.New(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	if err := r.program.BindBlock("Material", materialBinding); err != nil {
		r.program.Delete()
		return nil, fmt.Errorf("failed to bind material block: %w", err)
	}

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close frees every GPU object the renderer still holds.
func (r *Renderer) Close() {
	r.log.Info("closing renderer",
		zap.Int("geometries", len(r.geometries)),
		zap.Int("materials", len(r.materials)),
	)
	for id, g := range r.geometries {
		deleteGeometry(g)
		delete(r.geometries, id)
	}
	for id, ubo := range r.materials {
		gl.DeleteBuffers(1, &ubo)
		delete(r.materials, id)
	}
	r.Compact()
	r.program.Delete()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin clears the frame to the environment background.
func (r *Renderer) Begin(env lighting.Environment) {
	bg := env.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	r.drawCalls = 0
}

// Draw renders every visible mesh under root.
func (r *Renderer) Draw(root *scenegraph.Node, view View, env lighting.Environment) {
	if root == nil {
		return
	}
	r.program.Use()

	viewM := view.ViewMatrix()
	proj := view.ProjectionMatrix()
	eye := view.Position()
	gl.UniformMatrix4fv(r.program.Uniform("uView"), 1, false, viewM.Ptr())
	gl.UniformMatrix4fv(r.program.Uniform("uProjection"), 1, false, proj.Ptr())
	gl.Uniform3f(r.program.Uniform("uCameraPos"), eye.X, eye.Y, eye.Z)
	r.setLights(env)

	blending := false
	for _, item := range drawList(root, eye) {
		mat := item.node.Mesh.Material
		if mat.Transparent && !blending {
			gl.Enable(gl.BLEND)
			gl.DepthMask(false)
			blending = true
		}
		g := r.geometry(item.node.Mesh.Geometry)
		r.bindMaterial(mat)
		gl.UniformMatrix4fv(r.program.Uniform("uModel"), 1, false, item.world.Ptr())
		gl.BindVertexArray(g.vao)
		gl.DrawElements(gl.TRIANGLES, g.count, gl.UNSIGNED_INT, nil)
		r.drawCalls++
	}
	gl.BindVertexArray(0)
	if blending {
		gl.DepthMask(true)
		gl.Disable(gl.BLEND)
	}
}

// ReleaseMaterial returns the material's uniform buffer to the free list.
func (r *Renderer) ReleaseMaterial(m *scenegraph.Material) {
	ubo, ok := r.materials[m.ID()]
	if !ok {
		return
	}
	delete(r.materials, m.ID())
	r.freeUBOs = append(r.freeUBOs, ubo)
}

// ReleaseGeometry deletes the geometry's buffers.
func (r *Renderer) ReleaseGeometry(g *scenegraph.Geometry) {
	gpu, ok := r.geometries[g.ID()]
	if !ok {
		return
	}
	deleteGeometry(gpu)
	delete(r.geometries, g.ID())
}

// Compact deletes recycled uniform buffers.
func (r *Renderer) Compact() {
	if len(r.freeUBOs) == 0 {
		return
	}
	gl.DeleteBuffers(int32(len(r.freeUBOs)), &r.freeUBOs[0])
	r.log.Debug("compacted material buffers", zap.Int("count", len(r.freeUBOs)))
	r.freeUBOs = r.freeUBOs[:0]
}

// ReadPixels returns the current back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	if width <= 0 || height <= 0 {
		return nil, 0, 0
	}
	pixels = make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pixels[0]))
	return pixels, width, height
}

// Stats returns GPU object counts.
func (r *Renderer) Stats() Stats {
	return Stats{
		Geometries:    len(r.geometries),
		Materials:     len(r.materials),
		FreeMaterials: len(r.freeUBOs),
		DrawCalls:     r.drawCalls,
	}
}

func (r *Renderer) setLights(env lighting.Environment) {
	amb := env.Ambient
	k := env.AmbientIntensity
	gl.Uniform3f(r.program.Uniform("uAmbient"), amb[0]*k, amb[1]*k, amb[2]*k)

	n := len(env.Lights)
	if n > lighting.MaxDirectionalLights {
		n = lighting.MaxDirectionalLights
	}
	gl.Uniform1i(r.program.Uniform("uLightCount"), int32(n))
	for i := 0; i < n; i++ {
		l := env.Lights[i]
		d := l.Direction()
		gl.Uniform3f(r.program.Uniform(fmt.Sprintf("uLightDir[%d]", i)), d.X, d.Y, d.Z)
		gl.Uniform3f(r.program.Uniform(fmt.Sprintf("uLightColor[%d]", i)),
			l.Color[0]*l.Intensity, l.Color[1]*l.Intensity, l.Color[2]*l.Intensity)
	}
}

// geometry returns the GPU buffers for g, uploading on first use.
func (r *Renderer) geometry(g *scenegraph.Geometry) *gpuGeometry {
	if gpu, ok := r.geometries[g.ID()]; ok {
		return gpu
	}

	gpu := &gpuGeometry{count: int32(len(g.Indices))}
	vertices := packVertices(g)

	gl.GenVertexArrays(1, &gpu.vao)
	gl.BindVertexArray(gpu.vao)

	gl.GenBuffers(1, &gpu.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.vbo)
	if len(vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
	}

	gl.GenBuffers(1, &gpu.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.ebo)
	if len(g.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)
	}

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 6*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 6*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	r.geometries[g.ID()] = gpu
	r.log.Debug("geometry uploaded",
		zap.Uint64("id", g.ID()),
		zap.Int("vertices", len(g.Vertices)),
	)
	return gpu
}

// bindMaterial uploads m into its uniform buffer and binds it.
func (r *Renderer) bindMaterial(m *scenegraph.Material) {
	ubo, ok := r.materials[m.ID()]
	if !ok {
		if n := len(r.freeUBOs); n > 0 {
			ubo = r.freeUBOs[n-1]
			r.freeUBOs = r.freeUBOs[:n-1]
		} else {
			gl.GenBuffers(1, &ubo)
			gl.BindBuffer(gl.UNIFORM_BUFFER, ubo)
			gl.BufferData(gl.UNIFORM_BUFFER, materialBlockSize, nil, gl.DYNAMIC_DRAW)
		}
		r.materials[m.ID()] = ubo
	}

	block := packMaterial(m)
	gl.BindBuffer(gl.UNIFORM_BUFFER, ubo)
	gl.BufferSubData(gl.UNIFORM_BUFFER, 0, materialBlockSize, unsafe.Pointer(&block[0]))
	gl.BindBufferBase(gl.UNIFORM_BUFFER, materialBinding, ubo)
}

func deleteGeometry(g *gpuGeometry) {
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
}
