package videnc

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CPUBackend is the kvazaar-style software HEVC encoder path of
// spec.md §4.L. It converts RGBA frames to YUV 4:2:0 using a worker
// pool and feeds planes to an injected SoftwareEncoder. The conversion
// source is a host buffer allocated in Start; the frame's Vulkan memory
// is not mapped.
type CPUBackend struct {
	cfg     Config
	encoder SoftwareEncoder

	mapped []byte
	pitch  uint32

	convWorkers int
	onSample    SampleFunc
}

// SoftwareEncoder is the subset of a kvazaar-style encoder session the
// CPU backend drives. A real implementation binds to the kvazaar C API
// via cgo; this interface keeps the pure-Go module buildable without
// it (see DESIGN.md).
type SoftwareEncoder interface {
	Init(cfg Config) error
	Headers() []byte
	Encode(pic *YUVPicture) ([]Chunk, error)
	Drain() ([]Chunk, bool)
	Close()
}

// Chunk is one encoded NAL-unit-sized output from a SoftwareEncoder.
type Chunk struct {
	Data     []byte
	Keyframe bool
}

// YUVPicture is a planar YUV 4:2:0 frame at 8 bits per sample.
type YUVPicture struct {
	Width, Height int
	Y             []byte
	U, V          []byte
	PTS           uint64
}

// NewYUVPicture allocates a zeroed 4:2:0 picture of the given size.
// width and height must be even.
func NewYUVPicture(width, height int) *YUVPicture {
	return &YUVPicture{
		Width: width, Height: height,
		Y: make([]byte, width*height),
		U: make([]byte, (width/2)*(height/2)),
		V: make([]byte, (width/2)*(height/2)),
	}
}

// NewCPUBackend creates a CPU encoder backend around a software
// encoder session.
func NewCPUBackend(encoder SoftwareEncoder) *CPUBackend {
	return &CPUBackend{encoder: encoder}
}

func (c *CPUBackend) Name() string { return "cpu" }

// Probe rejects H.264 requests and odd picture dimensions, per
// spec.md §4.L.1.
func (c *CPUBackend) Probe(cfg Config) bool {
	if cfg.Codec != CodecHEVC {
		return false
	}
	return cfg.Width%2 == 0 && cfg.Height%2 == 0
}

// Init configures the software encoder session per spec.md §4.L.2.
func (c *CPUBackend) Init(cfg Config) error {
	c.cfg = cfg
	if err := c.encoder.Init(cfg); err != nil {
		return fmt.Errorf("videnc: cpu backend init: %w", err)
	}
	logical := runtime.NumCPU()
	c.convWorkers = logical / 2
	if max := int(cfg.Height) / 2; c.convWorkers > max {
		c.convWorkers = max
	}
	if c.convWorkers < 1 {
		c.convWorkers = 1
	}
	return nil
}

// Start allocates a zeroed host buffer of frame.MemorySize bytes as the
// conversion source (frame.MemoryFd is not mapped) and emits the
// encoder's headers as a duration-0 keyframe sample.
func (c *CPUBackend) Start(frame FrameDescriptor, onSample SampleFunc) error {
	c.onSample = onSample
	c.pitch = frame.Width * 4
	c.mapped = make([]byte, frame.MemorySize)
	if hdr := c.encoder.Headers(); len(hdr) > 0 {
		onSample(hdr, InvalidOffset, 0, true)
	}
	return nil
}

// Submit converts the mapped RGBA frame to YUV 4:2:0 using a parallel
// row-pair worker pool, encodes it, and emits every resulting chunk.
func (c *CPUBackend) Submit(waitValue uint64, frameIdx uint64) error {
	pic := NewYUVPicture(int(c.cfg.Width), int(c.cfg.Height))
	pic.PTS = frameIdx
	if err := convertRGBAToYUV420(c.mapped, int(c.pitch), pic, c.convWorkers); err != nil {
		return fmt.Errorf("videnc: rgba->yuv conversion: %w", err)
	}

	chunks, err := c.encoder.Encode(pic)
	if err != nil {
		return fmt.Errorf("videnc: encode: %w", err)
	}
	c.emit(chunks)
	return nil
}

func (c *CPUBackend) emit(chunks []Chunk) {
	total := 0
	for _, ch := range chunks {
		total += len(ch.Data)
	}
	if total == 0 {
		return
	}
	buf := make([]byte, 0, total)
	keyframe := false
	for _, ch := range chunks {
		buf = append(buf, ch.Data...)
		keyframe = keyframe || ch.Keyframe
	}
	c.onSample(buf, InvalidOffset, 0, keyframe)
}

// Stop drains the encoder of any buffered chunks.
func (c *CPUBackend) Stop() {
	for {
		chunks, more := c.encoder.Drain()
		c.emit(chunks)
		if !more {
			break
		}
	}
}

// Destroy closes the software encoder session.
func (c *CPUBackend) Destroy() {
	c.encoder.Close()
}

// convertRGBAToYUV420 implements spec.md §4.L.4's BT.601 limited-range
// kernel, splitting row pairs across a worker pool via errgroup so
// that each pair of rows produces a full-resolution Y plane stripe and
// a 2x2-averaged U/V stripe.
func convertRGBAToYUV420(rgba []byte, pitch int, pic *YUVPicture, workers int) error {
	height := pic.Height
	width := pic.Width
	if workers < 1 {
		workers = 1
	}
	pairs := height / 2

	rowPairCh := make(chan int, pairs)
	for p := 0; p < pairs; p++ {
		rowPairCh <- p
	}
	close(rowPairCh)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for p := range rowPairCh {
				if err := convertRowPair(rgba, pitch, pic, width, p); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func convertRowPair(rgba []byte, pitch int, pic *YUVPicture, width, pairIdx int) error {
	y0 := pairIdx * 2
	y1 := y0 + 1
	uvRowOff := pairIdx * (width / 2)

	for _, yOut := range [2]int{y0, y1} {
		srcRow := rgba[yOut*pitch:]
		yOutOff := yOut * width
		for x := 0; x < width; x++ {
			px := srcRow[x*4 : x*4+4]
			r, g, b := int(px[0]), int(px[1]), int(px[2])
			pic.Y[yOutOff+x] = byte(clip255((66*r+129*g+25*b+128)>>8 + 16))
		}
	}

	for x := 0; x < width; x += 2 {
		var usum, vsum int
		for _, yy := range [2]int{y0, y1} {
			for _, xx := range [2]int{x, x + 1} {
				px := rgba[yy*pitch+xx*4 : yy*pitch+xx*4+4]
				r, g, b := int(px[0]), int(px[1]), int(px[2])
				usum += clip255((-38*r-74*g+112*b+128)>>8 + 128)
				vsum += clip255((112*r-94*g-18*b+128)>>8 + 128)
			}
		}
		pic.U[uvRowOff+x/2] = byte(usum / 4)
		pic.V[uvRowOff+x/2] = byte(vsum / 4)
	}
	return nil
}

func clip255(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
