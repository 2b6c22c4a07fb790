// Package viewset implements the mapping from declarative scene state
// (views, visuals, transforms, draws) to an ordered sequence of record
// requests fed back into the protocol package, per spec.md §4.F. View
// registration order and instance registration order are preserved in
// the emitted command stream, and rebuilding is idempotent between
// state changes, mirroring the breadth-first, insertion-order traversal
// the teacher's node.Node.ForEach performs over the scene graph.
package viewset

import (
	"github.com/datoviz/scene/container"
	"github.com/datoviz/scene/linear"
	"github.com/datoviz/scene/protocol"
)

// DrawMode selects how an Instance is recorded.
type DrawMode int

const (
	// Direct records a non-indexed draw.
	Direct DrawMode = iota
	// Indexed records an indexed draw; the referenced visual must
	// carry an index binding.
	Indexed
	// Indirect records an indirect draw sourced from a dat.
	Indirect
)

// Instance is one (visual, range, instance range, visibility,
// transform) entry inside a View. Instance records reference but do
// not own their Visual.
type Instance struct {
	Visual  protocol.ID
	Mode    DrawMode
	Visible bool

	FirstVertex  uint32
	VertexCount  uint32
	FirstIndex   uint32
	VertexOffset int32
	IndexCount   uint32

	FirstInstance uint32
	InstanceCount uint32

	IndirectDat protocol.ID
	DrawCount   uint32

	Transform linear.M4
}

// View is a rectangular sub-region of a canvas hosting an ordered list
// of draw instances. A View owns its instance records.
type View struct {
	OffsetX, OffsetY uint32
	Width, Height    uint32
	ContentScale     float64

	instances container.List[*Instance]
}

// NewView creates a view at the given offset and extent, in canvas
// pixels.
func NewView(offsetX, offsetY, width, height uint32) *View {
	return &View{OffsetX: offsetX, OffsetY: offsetY, Width: width, Height: height, ContentScale: 1}
}

// AddInstance appends inst to the view's instance list, in
// registration order, and returns a handle usable with RemoveInstance.
func (v *View) AddInstance(inst *Instance) container.Handle[*Instance] {
	return v.instances.PushBack(inst)
}

// RemoveInstance removes a previously added instance.
func (v *View) RemoveInstance(h container.Handle[*Instance]) { v.instances.Remove(h) }

// ToLocal maps global canvas pixel coordinates to pixels relative to
// the view's offset.
func (v *View) ToLocal(gx, gy float64) (lx, ly float64) {
	return gx - float64(v.OffsetX), gy - float64(v.OffsetY)
}

// ToScaled maps global canvas pixel coordinates to the view's [-1,+1]
// normalized space: the view's offset corner maps to (-1,+1) and the
// opposite corner maps to (+1,-1) (note the y-inversion). Coordinates
// outside the view extrapolate linearly.
func (v *View) ToScaled(gx, gy float64) (sx, sy float64) {
	lx, ly := v.ToLocal(gx, gy)
	w, h := float64(v.Width), float64(v.Height)
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	sx = 2*lx/w - 1
	sy = 1 - 2*ly/h
	return
}

// Viewset is an ordered list of views bound to a canvas. Viewset owns
// its views.
type Viewset struct {
	Canvas protocol.ID

	views []*View
	dirty bool
}

// New creates a Viewset bound to the given canvas.
func New(canvas protocol.ID) *Viewset {
	return &Viewset{Canvas: canvas, dirty: true}
}

// AddView appends v to the viewset's view list, in registration
// order.
func (s *Viewset) AddView(v *View) {
	s.views = append(s.views, v)
	s.dirty = true
}

// Views returns the viewset's views in registration order. The
// returned slice aliases internal storage and must not be mutated.
func (s *Viewset) Views() []*View { return s.views }

// MarkDirty flags the viewset for rebuild. Mutating a View's fields or
// instance list after construction should be followed by MarkDirty so
// the caller's own cache-invalidation logic (if any) knows to rebuild.
// Build itself does not consult this flag: it always recomputes the
// command sequence from current state, since the operation is cheap
// and must be idempotent regardless.
func (s *Viewset) MarkDirty() { s.dirty = true }

// Dirty reports whether the viewset has been flagged for rebuild since
// the last Build, which clears the flag.
func (s *Viewset) Dirty() bool { return s.dirty }

// Build emits a fresh ordered sequence of record requests to b,
// following spec.md §4.F's pseudocode: record_begin; for each view,
// viewport then each visible instance's draw; record_end. The output
// depends only on current viewset state, so two consecutive calls with
// an unchanged viewset produce identical request sequences.
func (s *Viewset) Build(b *protocol.Batch) {
	b.RecordBeginCmd(s.Canvas)
	for _, view := range s.views {
		b.RecordViewportCmd(s.Canvas, view.OffsetX, view.OffsetY, view.Width, view.Height)
		view.instances.ForEach(func(inst *Instance) bool {
			if !inst.Visible {
				return true
			}
			switch inst.Mode {
			case Indirect:
				b.RecordDrawIndirectCmd(s.Canvas, inst.Visual, inst.IndirectDat, inst.DrawCount)
			case Indexed:
				b.RecordDrawIndexedCmd(s.Canvas, inst.Visual, inst.FirstIndex, inst.VertexOffset,
					inst.IndexCount, inst.FirstInstance, inst.InstanceCount)
			default:
				b.RecordDrawCmd(s.Canvas, inst.Visual, inst.FirstVertex, inst.VertexCount,
					inst.FirstInstance, inst.InstanceCount)
			}
			return true
		})
	}
	b.RecordEndCmd(s.Canvas)
	s.dirty = false
}
