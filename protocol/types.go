// Package protocol implements the versioned, serializable request
// protocol: the (action, type, id, flags, content) records that
// describe every GPU resource mutation, plus their batching,
// pretty-printing and dump/load facilities. It is grounded on the
// enum vocabulary of driver/core.go (Usage, PixelFmt, Topology, ...)
// reused here as payload field types, and on gltf's struct-based
// (de)serialization idiom, adapted from JSON to an encoding/gob dump of
// the request array (not a fixed native-memory layout).
package protocol

import (
	"fmt"
)

// Version is the current protocol schema version. It is carried in
// every Request and checked by Load; the protocol does not
// auto-migrate across versions.
const Version = "1.0"

// ID is a 64-bit opaque handle. The reserved value NoID ("0") means
// "no object".
type ID uint64

// NoID is the reserved "no object" identifier.
const NoID ID = 0

// Size is an unsigned byte count.
type Size = uint64

// Action identifies the kind of mutation a Request performs.
type Action int

const (
	ActionNone Action = iota
	ActionCreate
	ActionDelete
	ActionResize
	ActionUpdate
	ActionBind
	ActionRecord
	ActionUpload
	ActionUpfill
	ActionDownload
	ActionSet
	ActionGet
)

var actionNames = [...]string{
	"none", "create", "delete", "resize", "update", "bind",
	"record", "upload", "upfill", "download", "set", "get",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ObjectType identifies the kind of object a Request targets.
type ObjectType int

const (
	TypeNone ObjectType = iota
	TypeCanvas
	TypeDat
	TypeTex
	TypeSampler
	TypeShader
	TypeGraphics
	TypeBackground
	TypeVertex
	TypeIndex
	TypeRecord
	TypePrimitive
	TypeBlend
	TypeMask
	TypeDepth
	TypePolygon
	TypeCull
	TypeFront
	TypeAttr
	TypeSlot
	TypePush
	TypeSpecialization
)

var typeNames = [...]string{
	"none", "canvas", "dat", "tex", "sampler", "shader", "graphics",
	"background", "vertex", "index", "record", "primitive", "blend",
	"mask", "depth", "polygon", "cull", "front", "attr", "slot",
	"push", "specialization",
}

func (t ObjectType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// Flags is an object-specific bitfield.
type Flags uint32

// NoCopy suppresses the default deep-copy of variable-length payload
// buffers (UPLOAD+DAT, push constants, specialization constants,
// shader code).
const NoCopy Flags = 1 << 0

// Small forces the YAML printer to render oversized binary fields as
// "<snip>" instead of hex/base64.
const Small Flags = 1 << 1

// BufferType enumerates dat buffer kinds (CREATE+DAT).
type BufferType int

const (
	BufferVertex BufferType = iota
	BufferIndex
	BufferUniform
	BufferStorage
	BufferIndirect
)

// TexDims enumerates texture dimensionality (CREATE+TEX).
type TexDims int

const (
	Tex1D TexDims = iota + 1
	Tex2D
	Tex3D
)

// PixelFormat enumerates texture pixel formats.
type PixelFormat int

const (
	FormatRGBA8Unorm PixelFormat = iota
	FormatRGBA16Float
	FormatD16Unorm
	FormatBGRA8Unorm
)

// ShaderFormat enumerates shader source encodings (CREATE+SHADER).
type ShaderFormat int

const (
	ShaderGLSL ShaderFormat = iota
	ShaderSPIRV
)

// Topology enumerates primitive topologies (SET+PRIMITIVE).
type Topology int

const (
	TopologyPointList Topology = iota
	TopologyLineList
	TopologyTriangleList
	TopologyTriangleStrip
)

// RecordVariant enumerates RECORD+RECORD sub-commands.
type RecordVariant int

const (
	RecordBegin RecordVariant = iota
	RecordViewport
	RecordPush
	RecordDraw
	RecordDrawIndexed
	RecordDrawIndirect
	RecordDrawIndexedIndirect
	RecordEnd
)

var recordVariantNames = [...]string{
	"begin", "viewport", "push", "draw", "draw_indexed",
	"draw_indirect", "draw_indexed_indirect", "end",
}

func (v RecordVariant) String() string {
	if int(v) < len(recordVariantNames) {
		return recordVariantNames[v]
	}
	return fmt.Sprintf("record(%d)", int(v))
}

// Shape3 is a three-component unsigned extent, with trailing zeros for
// dimensionality below 3 (CREATE+TEX shape).
type Shape3 [3]uint32

// Offset3 is a three-component signed offset (UPLOAD+TEX box origin).
type Offset3 [3]int32

// Viewport describes a canvas sub-rectangle in pixels.
type Viewport struct {
	X, Y, W, H uint32
}

// Content carries the typed payload for a (action, type) pair as a
// flat struct, one member per variant, as allowed for implementations
// that cannot express nested unions (see spec design notes). The
// active subset of fields is determined by the owning Request's
// (Action, Type, Content.RecordVariant) as documented per constructor.
type Content struct {
	// dat (CREATE/RESIZE/UPLOAD +DAT)
	BufferType BufferType
	Size       Size
	Offset     Size
	Data       []byte

	// tex (CREATE/RESIZE/UPLOAD +TEX)
	Dims         TexDims
	Shape        Shape3
	Format       PixelFormat
	BoxOffset    Offset3
	BoxShape     Shape3
	BytesPerTexel uint32

	// shader (CREATE+SHADER)
	ShaderFormat ShaderFormat
	Code         string
	Buffer       []byte

	// canvas / background
	CanvasShape [2]uint32
	Background  [4]uint8

	// graphics state
	Topology Topology

	// bind (BIND+{VERTEX,INDEX,DAT,TEX})
	Slot   uint32
	BindID ID

	// record sub-commands (RECORD+RECORD)
	RecordVariant  RecordVariant
	Viewport       Viewport
	PushOffset     uint32
	PushData       []byte
	FirstVertex    uint32
	VertexCount    uint32
	FirstIndex     uint32
	VertexOffset   int32
	IndexCount     uint32
	FirstInstance  uint32
	InstanceCount  uint32
	IndirectDat    ID
	DrawCount      uint32

	// generic named label/value pairs for SET/GET helpers not covered
	// above (e.g. SetCull, SetFront, SetPolygon, SetMask, SetDepth).
	IntParam  int64
	BoolParam bool
}

// Request is an immutable-once-emitted record of the protocol.
type Request struct {
	Version string
	Action  Action
	Type    ObjectType
	ID      ID
	Flags   Flags
	Desc    string
	Content Content
}
