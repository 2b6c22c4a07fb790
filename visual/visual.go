// Package visual implements the per-visual attribute and
// uniform/parameter plumbing into protocol requests described in
// spec.md §4.G, grounded on the teacher's engine/mesh, engine/material
// and engine/texture packages: a CPU-side attribute/uniform buffer that
// is uploaded to a protocol dat on mutation, the same staging-on-write
// idiom engine/staging.go implements for texture copies.
package visual

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/datoviz/scene/protocol"
)

// VertexFormat enumerates vertex attribute component formats.
type VertexFormat int

const (
	FormatFloat32 VertexFormat = iota
	FormatFloat32x2
	FormatFloat32x3
	FormatFloat32x4
	FormatUint32
)

// Sizeof returns the byte size of one value in format f.
func (f VertexFormat) Sizeof() uint32 {
	switch f {
	case FormatFloat32, FormatUint32:
		return 4
	case FormatFloat32x2:
		return 8
	case FormatFloat32x3:
		return 12
	case FormatFloat32x4:
		return 16
	}
	return 0
}

// AttrFlags carries per-vertex attribute behavior flags.
type AttrFlags uint32

// RepeatX4 causes Data writes to replicate each value four times
// consecutively, used by quad-expansion visuals (DataQuads).
const RepeatX4 AttrFlags = 1 << 0

// Attribute describes one vertex attribute: its shader location, byte
// offset within the vertex, wire format, the CPU-side buffer backing
// it, and the binding index (vertex buffer stream) it belongs to.
type Attribute struct {
	Location uint32
	Offset   uint32
	Format   VertexFormat
	Flags    AttrFlags
	Binding  uint32

	buf       []byte
	allocated bool
	repeated  bool // true once written at least once with RepeatX4
	plain     bool // true once written at least once without RepeatX4
}

// SlotKind distinguishes a descriptor slot bound to a dat from one
// bound to a texture.
type SlotKind int

const (
	SlotDat SlotKind = iota
	SlotTex
)

// Slot maps a descriptor slot index to a binding kind.
type Slot struct {
	Index uint32
	Kind  SlotKind
	Bound protocol.ID
}

// ParamsBlock is a uniform struct described by an offset table,
// backed by a host-side buffer uploaded to a Dat on mutation.
type ParamsBlock struct {
	Dat  protocol.ID
	Size protocol.Size

	data  []byte
	dirty bool
}

// Set writes raw bytes at the given byte offset into the params
// block's host-side buffer and marks it dirty.
func (p *ParamsBlock) Set(offset uint32, data []byte) {
	need := int(offset) + len(data)
	if need > len(p.data) {
		grown := make([]byte, need)
		copy(grown, p.data)
		p.data = grown
	}
	copy(p.data[offset:], data)
	p.dirty = true
}

// Flush uploads the params block's buffer to its Dat if dirty,
// appending an UPLOAD+DAT request to b.
func (p *ParamsBlock) Flush(b *protocol.Batch) {
	if !p.dirty {
		return
	}
	b.UploadDat(p.Dat, 0, p.data, 0)
	p.dirty = false
}

// DrawCallback overrides the default (first, count) -> vertex-count
// mapping for glyph/segment/path visuals, where a per-item count (e.g.
// number of glyphs) must be turned into a per-vertex count (4 or 6
// vertices per item).
type DrawCallback func(first, count uint32) (outFirst, outCount uint32)

// VisualFlags carries topology-independent draw-mode flags.
type VisualFlags uint32

const (
	Indexed  VisualFlags = 1 << 0
	Indirect VisualFlags = 1 << 1
)

// Visual is identified by topology and flags and carries the
// attribute/slot/params tables described in spec.md §4.G.
type Visual struct {
	ID       protocol.ID
	Topology protocol.Topology
	Flags    VisualFlags

	Attrs  []*Attribute
	Slots  []*Slot
	Params []*ParamsBlock
	DrawCB DrawCallback

	VertexDat protocol.ID
	IndexDat  protocol.ID

	vertexCount uint32
	indexCount  uint32
}

// New creates a visual and its backing graphics object request.
func New(b *protocol.Batch, topology protocol.Topology, flags VisualFlags) *Visual {
	gfx := b.NewGraphics()
	b.SetPrimitive(gfx.ID, topology)
	return &Visual{ID: gfx.ID, Topology: topology, Flags: flags}
}

// AddAttribute appends an attribute to the visual's table and returns
// its index.
func (v *Visual) AddAttribute(location, offset uint32, format VertexFormat, flags AttrFlags, binding uint32) int {
	v.Attrs = append(v.Attrs, &Attribute{Location: location, Offset: offset, Format: format, Flags: flags, Binding: binding})
	return len(v.Attrs) - 1
}

// SetSlot maps slot index idx to the given descriptor kind.
func (v *Visual) SetSlot(idx uint32, kind SlotKind) *Slot {
	s := &Slot{Index: idx, Kind: kind}
	v.Slots = append(v.Slots, s)
	return s
}

// AddParamsBlock appends a uniform params block of the given byte size
// and creates its backing Dat.
func (v *Visual) AddParamsBlock(b *protocol.Batch, size protocol.Size) *ParamsBlock {
	dat := b.NewDat(protocol.BufferUniform, size)
	p := &ParamsBlock{Dat: dat.ID, Size: size, data: make([]byte, size)}
	v.Params = append(v.Params, p)
	return p
}

// Alloc sizes the visual's vertex (and, if Indexed, index) buffers to
// hold n items, creating or resizing the backing dats as needed.
func (v *Visual) Alloc(b *protocol.Batch, n uint32) {
	stride := v.vertexStride()
	size := protocol.Size(n) * protocol.Size(stride)
	if size == 0 {
		size = 1
	}
	if v.VertexDat == protocol.NoID {
		dat := b.NewDat(protocol.BufferVertex, size)
		v.VertexDat = dat.ID
	} else {
		b.ResizeDat(v.VertexDat, size)
	}
	v.vertexCount = n
	for _, a := range v.Attrs {
		a.buf = make([]byte, size)
		a.allocated = true
		a.repeated, a.plain = false, false
	}

	if v.Flags&Indexed != 0 {
		isize := protocol.Size(n) * 4
		if isize == 0 {
			isize = 1
		}
		if v.IndexDat == protocol.NoID {
			dat := b.NewDat(protocol.BufferIndex, isize)
			v.IndexDat = dat.ID
		} else {
			b.ResizeDat(v.IndexDat, isize)
		}
		v.indexCount = n
	}
}

func (v *Visual) vertexStride() uint32 {
	var max uint32
	for _, a := range v.Attrs {
		end := a.Offset + a.Format.Sizeof()
		if end > max {
			max = end
		}
	}
	return max
}

// Data writes count values (each sized per the attribute's format)
// starting at item index first into attribute attrIdx's CPU-side
// buffer and schedules an UPLOAD+DAT request on b.
//
// It is forbidden to mix RepeatX4 and non-RepeatX4 writes to the same
// attribute buffer without an intervening Alloc.
func (v *Visual) Data(b *protocol.Batch, attrIdx int, first, count uint32, values []byte) error {
	a := v.Attrs[attrIdx]
	if !a.allocated {
		return fmt.Errorf("visual: Data called on attribute %d before Alloc", attrIdx)
	}
	repeat := a.Flags&RepeatX4 != 0
	if repeat {
		if a.plain {
			return fmt.Errorf("visual: overlapping REPEAT_X4 and plain writes to attribute %d", attrIdx)
		}
		a.repeated = true
	} else {
		if a.repeated {
			return fmt.Errorf("visual: overlapping REPEAT_X4 and plain writes to attribute %d", attrIdx)
		}
		a.plain = true
	}

	vsize := a.Format.Sizeof()
	valSize := vsize
	if len(values) == 0 || valSize == 0 {
		return fmt.Errorf("visual: Data called with empty value or zero-sized format")
	}
	stride := v.vertexStride()

	for i := uint32(0); i < count; i++ {
		src := values[i*valSize : i*valSize+valSize]
		if repeat {
			for r := uint32(0); r < 4; r++ {
				item := first*4 + i*4 + r
				off := item*stride + a.Offset
				v.writeAttr(a, off, src)
			}
		} else {
			item := first + i
			off := item*stride + a.Offset
			v.writeAttr(a, off, src)
		}
	}
	b.UploadDat(v.VertexDat, 0, a.buf, 0)
	return nil
}

func (v *Visual) writeAttr(a *Attribute, byteOffset uint32, src []byte) {
	need := int(byteOffset) + len(src)
	if need > len(a.buf) {
		grown := make([]byte, need)
		copy(grown, a.buf)
		a.buf = grown
	}
	copy(a.buf[byteOffset:], src)
}

// DataQuads expands one (u0,v0,u1,v1) rectangle per item into four
// distinct vec2 corners (bottom-left, bottom-right, top-left,
// top-right order) written directly to the four vertices of each
// quad. Unlike Data's RepeatX4 handling, which replicates a single
// value across a quad's four vertices, DataQuads always produces four
// different values per item, so it writes independently of the
// attribute's RepeatX4 flag.
func (v *Visual) DataQuads(b *protocol.Batch, attrIdx int, first, count uint32, corners [][4]float32) error {
	a := v.Attrs[attrIdx]
	if !a.allocated {
		return fmt.Errorf("visual: DataQuads called on attribute %d before Alloc", attrIdx)
	}
	if len(corners) != int(count) {
		return fmt.Errorf("visual: DataQuads expected %d rects, got %d", count, len(corners))
	}
	if a.Format.Sizeof() != 8 {
		return fmt.Errorf("visual: DataQuads requires a Float32x2 attribute")
	}
	stride := v.vertexStride()
	for i, c := range corners {
		u0, v0, u1, v1 := c[0], c[1], c[2], c[3]
		item := first + uint32(i)
		for r, xy := range [][2]float32{{u0, v0}, {u1, v0}, {u0, v1}, {u1, v1}} {
			var buf [8]byte
			binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(xy[0]))
			binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(xy[1]))
			vertex := item*4 + uint32(r)
			off := vertex*stride + a.Offset
			v.writeAttr(a, off, buf[:])
		}
	}
	b.UploadDat(v.VertexDat, 0, a.buf, 0)
	return nil
}
