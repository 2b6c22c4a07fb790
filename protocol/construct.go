package protocol

// This file implements the request-construction helpers of spec.md
// §4.D.1. Each helper reserves a request at the current Version,
// mints a new id for creation operations (reusing the caller's id
// otherwise), deep-copies variable-length buffers unless NoCopy is
// set, appends the request to the batch and returns a value copy.

// --- canvas ---

// NewCanvas creates a canvas of the given pixel shape.
func (b *Batch) NewCanvas(width, height uint32) Request {
	id := b.newID()
	return b.append(ActionCreate, TypeCanvas, id, 0, "", Content{CanvasShape: [2]uint32{width, height}})
}

// UpdateCanvas marks a canvas for a state refresh.
func (b *Batch) UpdateCanvas(id ID) Request {
	return b.append(ActionUpdate, TypeCanvas, id, 0, "", Content{})
}

// ResizeCanvas resizes an existing canvas.
func (b *Batch) ResizeCanvas(id ID, width, height uint32) Request {
	return b.append(ActionResize, TypeCanvas, id, 0, "", Content{CanvasShape: [2]uint32{width, height}})
}

// DeleteCanvas destroys a canvas.
func (b *Batch) DeleteCanvas(id ID) Request {
	return b.append(ActionDelete, TypeCanvas, id, 0, "", Content{})
}

// SetBackground sets a canvas's clear color.
func (b *Batch) SetBackground(canvas ID, r, g, gg, a uint8) Request {
	return b.append(ActionSet, TypeBackground, canvas, 0, "", Content{Background: [4]uint8{r, g, gg, a}})
}

// --- dat (buffer) ---

// NewDat creates a GPU buffer of the given type and size.
// Preconditions: size > 0.
func (b *Batch) NewDat(bufType BufferType, size Size) Request {
	if size == 0 {
		panic("protocol: NewDat requires size > 0")
	}
	id := b.newID()
	return b.append(ActionCreate, TypeDat, id, 0, "", Content{BufferType: bufType, Size: size})
}

// ResizeDat resizes an existing dat.
func (b *Batch) ResizeDat(id ID, size Size) Request {
	return b.append(ActionResize, TypeDat, id, 0, "", Content{Size: size})
}

// UploadDat schedules data to be uploaded into dat id at the given
// byte offset. By default data is deep-copied; pass flags=NoCopy to
// suppress that and keep data alive until the consumer processes the
// request.
func (b *Batch) UploadDat(id ID, offset Size, data []byte, flags Flags) Request {
	return b.append(ActionUpload, TypeDat, id, flags, "", Content{
		Offset: offset,
		Size:   Size(len(data)),
		Data:   b.own(data, flags),
	})
}

// DeleteDat destroys a dat.
func (b *Batch) DeleteDat(id ID) Request {
	return b.append(ActionDelete, TypeDat, id, 0, "", Content{})
}

// --- tex (texture) ---

// NewTex creates a texture with the given dimensionality, shape and
// format. shape's trailing components beyond dims must be zero.
func (b *Batch) NewTex(dims TexDims, shape Shape3, format PixelFormat) Request {
	id := b.newID()
	return b.append(ActionCreate, TypeTex, id, 0, "", Content{Dims: dims, Shape: shape, Format: format})
}

// ResizeTex resizes an existing texture.
func (b *Batch) ResizeTex(id ID, shape Shape3) Request {
	return b.append(ActionResize, TypeTex, id, 0, "", Content{Shape: shape})
}

// UploadTex schedules data to be uploaded into a 3D box of texture id.
// size must equal product(boxShape)*bytesPerTexel.
func (b *Batch) UploadTex(id ID, boxOffset Offset3, boxShape Shape3, bytesPerTexel uint32, data []byte, flags Flags) Request {
	return b.append(ActionUpload, TypeTex, id, flags, "", Content{
		BoxOffset:     boxOffset,
		BoxShape:      boxShape,
		BytesPerTexel: bytesPerTexel,
		Size:          Size(len(data)),
		Data:          b.own(data, flags),
	})
}

// DeleteTex destroys a texture.
func (b *Batch) DeleteTex(id ID) Request {
	return b.append(ActionDelete, TypeTex, id, 0, "", Content{})
}

// --- sampler ---

// NewSampler creates a sampler object.
func (b *Batch) NewSampler() Request {
	id := b.newID()
	return b.append(ActionCreate, TypeSampler, id, 0, "", Content{})
}

// DeleteSampler destroys a sampler.
func (b *Batch) DeleteSampler(id ID) Request {
	return b.append(ActionDelete, TypeSampler, id, 0, "", Content{})
}

// --- shader ---

// NewGLSL creates a shader from null-terminated GLSL source.
func (b *Batch) NewGLSL(code string) Request {
	id := b.newID()
	return b.append(ActionCreate, TypeShader, id, 0, "", Content{
		ShaderFormat: ShaderGLSL,
		Code:         code,
		Size:         Size(len(code)),
	})
}

// NewSPIRV creates a shader from a SPIR-V binary. buf's length must be
// a multiple of 4.
func (b *Batch) NewSPIRV(buf []byte, flags Flags) Request {
	if len(buf)%4 != 0 {
		panic("protocol: NewSPIRV requires a buffer length multiple of 4")
	}
	id := b.newID()
	return b.append(ActionCreate, TypeShader, id, flags, "", Content{
		ShaderFormat: ShaderSPIRV,
		Buffer:       b.own(buf, flags),
		Size:         Size(len(buf)),
	})
}

// --- graphics (pipeline) ---

// NewGraphics creates a graphics pipeline object.
func (b *Batch) NewGraphics() Request {
	id := b.newID()
	return b.append(ActionCreate, TypeGraphics, id, 0, "", Content{})
}

// DeleteGraphics destroys a graphics pipeline object.
func (b *Batch) DeleteGraphics(id ID) Request {
	return b.append(ActionDelete, TypeGraphics, id, 0, "", Content{})
}

// SetPrimitive sets a graphics object's input topology.
func (b *Batch) SetPrimitive(graphics ID, topology Topology) Request {
	return b.append(ActionSet, TypePrimitive, graphics, 0, "", Content{Topology: topology})
}

// SetBlend enables or disables blending on a graphics object.
func (b *Batch) SetBlend(graphics ID, enabled bool) Request {
	return b.append(ActionSet, TypeBlend, graphics, 0, "", Content{BoolParam: enabled})
}

// SetMask sets a graphics object's color write mask.
func (b *Batch) SetMask(graphics ID, mask int64) Request {
	return b.append(ActionSet, TypeMask, graphics, 0, "", Content{IntParam: mask})
}

// SetDepth sets a graphics object's depth-test/write state.
func (b *Batch) SetDepth(graphics ID, compareFunc int64, writeEnabled bool) Request {
	return b.append(ActionSet, TypeDepth, graphics, 0, "", Content{IntParam: compareFunc, BoolParam: writeEnabled})
}

// SetPolygon sets a graphics object's fill mode.
func (b *Batch) SetPolygon(graphics ID, fillMode int64) Request {
	return b.append(ActionSet, TypePolygon, graphics, 0, "", Content{IntParam: fillMode})
}

// SetCull sets a graphics object's cull mode.
func (b *Batch) SetCull(graphics ID, cullMode int64) Request {
	return b.append(ActionSet, TypeCull, graphics, 0, "", Content{IntParam: cullMode})
}

// SetFront sets a graphics object's front-face winding.
func (b *Batch) SetFront(graphics ID, clockwise bool) Request {
	return b.append(ActionSet, TypeFront, graphics, 0, "", Content{BoolParam: clockwise})
}

// SetShader attaches a shader to a graphics object's given stage slot.
func (b *Batch) SetShader(graphics, shader ID, slot uint32) Request {
	return b.append(ActionSet, TypeGraphics, graphics, 0, "", Content{Slot: slot, BindID: shader})
}

// SetVertex sets a graphics object's vertex stride for a binding
// index.
func (b *Batch) SetVertex(graphics ID, binding uint32, stride Size) Request {
	return b.append(ActionSet, TypeVertex, graphics, 0, "", Content{Slot: binding, Size: stride})
}

// SetAttr sets a vertex attribute (location, offset, format) on a
// graphics object.
func (b *Batch) SetAttr(graphics ID, location, offset uint32, format int64, repeatX4 bool) Request {
	c := Content{Slot: location, Offset: Size(offset), IntParam: format, BoolParam: repeatX4}
	return b.append(ActionSet, TypeAttr, graphics, 0, "", c)
}

// SetSlot maps a descriptor slot index to a DAT or TEX binding kind
// (isTex selects TEX).
func (b *Batch) SetSlot(graphics ID, slot uint32, isTex bool) Request {
	return b.append(ActionSet, TypeSlot, graphics, 0, "", Content{Slot: slot, BoolParam: isTex})
}

// SetPush configures a push-constant range on a graphics object. data
// is deep-copied unless flags has NoCopy set.
func (b *Batch) SetPush(graphics ID, offset uint32, data []byte, flags Flags) Request {
	return b.append(ActionSet, TypePush, graphics, flags, "", Content{
		PushOffset: offset,
		PushData:   b.own(data, flags),
		Size:       Size(len(data)),
	})
}

// SetSpecialization configures specialization-constant data on a
// graphics object. data is deep-copied unless flags has NoCopy set.
func (b *Batch) SetSpecialization(graphics ID, data []byte, flags Flags) Request {
	return b.append(ActionSet, TypeSpecialization, graphics, flags, "", Content{
		Data: b.own(data, flags),
		Size: Size(len(data)),
	})
}

// --- binds ---

// BindVertex binds a dat as the vertex buffer at the given slot of a
// graphics object.
func (b *Batch) BindVertex(graphics ID, slot uint32, dat ID) Request {
	return b.append(ActionBind, TypeVertex, graphics, 0, "", Content{Slot: slot, BindID: dat})
}

// BindIndex binds a dat as the index buffer of a graphics object.
func (b *Batch) BindIndex(graphics, dat ID) Request {
	return b.append(ActionBind, TypeIndex, graphics, 0, "", Content{BindID: dat})
}

// BindDat binds a dat descriptor at the given slot of a graphics
// object.
func (b *Batch) BindDat(graphics ID, slot uint32, dat ID) Request {
	return b.append(ActionBind, TypeDat, graphics, 0, "", Content{Slot: slot, BindID: dat})
}

// BindTex binds a texture descriptor at the given slot of a graphics
// object.
func (b *Batch) BindTex(graphics ID, slot uint32, tex ID) Request {
	return b.append(ActionBind, TypeTex, graphics, 0, "", Content{Slot: slot, BindID: tex})
}

// --- record sub-commands ---

// RecordBeginCmd begins a command sequence for a canvas.
func (b *Batch) RecordBeginCmd(canvas ID) Request {
	return b.append(ActionRecord, TypeRecord, canvas, 0, "", Content{RecordVariant: RecordBegin})
}

// RecordViewportCmd sets the viewport for subsequent draws.
func (b *Batch) RecordViewportCmd(canvas ID, x, y, w, h uint32) Request {
	return b.append(ActionRecord, TypeRecord, canvas, 0, "", Content{
		RecordVariant: RecordViewport,
		Viewport:      Viewport{X: x, Y: y, W: w, H: h},
	})
}

// RecordPushCmd records a push-constant update.
func (b *Batch) RecordPushCmd(canvas ID, offset uint32, data []byte, flags Flags) Request {
	return b.append(ActionRecord, TypeRecord, canvas, flags, "", Content{
		RecordVariant: RecordPush,
		PushOffset:    offset,
		PushData:      b.own(data, flags),
		Size:          Size(len(data)),
	})
}

// RecordDrawCmd records a non-indexed, non-indirect draw.
func (b *Batch) RecordDrawCmd(canvas, graphics ID, firstVertex, vertexCount, firstInstance, instanceCount uint32) Request {
	return b.append(ActionRecord, TypeRecord, canvas, 0, "", Content{
		RecordVariant: RecordDraw,
		BindID:        graphics,
		FirstVertex:   firstVertex,
		VertexCount:   vertexCount,
		FirstInstance: firstInstance,
		InstanceCount: instanceCount,
	})
}

// RecordDrawIndexedCmd records an indexed draw. The referenced
// graphics object must have an index binding (see visual.Visual).
func (b *Batch) RecordDrawIndexedCmd(canvas, graphics ID, firstIndex uint32, vertexOffset int32, indexCount, firstInstance, instanceCount uint32) Request {
	return b.append(ActionRecord, TypeRecord, canvas, 0, "", Content{
		RecordVariant: RecordDrawIndexed,
		BindID:        graphics,
		FirstIndex:    firstIndex,
		VertexOffset:  vertexOffset,
		IndexCount:    indexCount,
		FirstInstance: firstInstance,
		InstanceCount: instanceCount,
	})
}

// RecordDrawIndirectCmd records an indirect draw sourced from a dat.
func (b *Batch) RecordDrawIndirectCmd(canvas, graphics, indirectDat ID, drawCount uint32) Request {
	return b.append(ActionRecord, TypeRecord, canvas, 0, "", Content{
		RecordVariant: RecordDrawIndirect,
		BindID:        graphics,
		IndirectDat:   indirectDat,
		DrawCount:     drawCount,
	})
}

// RecordDrawIndexedIndirectCmd records an indexed indirect draw
// sourced from a dat.
func (b *Batch) RecordDrawIndexedIndirectCmd(canvas, graphics, indirectDat ID, drawCount uint32) Request {
	return b.append(ActionRecord, TypeRecord, canvas, 0, "", Content{
		RecordVariant: RecordDrawIndexedIndirect,
		BindID:        graphics,
		IndirectDat:   indirectDat,
		DrawCount:     drawCount,
	})
}

// RecordEndCmd ends the command sequence for a canvas.
func (b *Batch) RecordEndCmd(canvas ID) Request {
	return b.append(ActionRecord, TypeRecord, canvas, 0, "", Content{RecordVariant: RecordEnd})
}
