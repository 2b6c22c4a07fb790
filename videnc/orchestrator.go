package videnc

import (
	"fmt"
	"os"
)

// Codec selects the video compression standard.
type Codec int

const (
	CodecHEVC Codec = iota
	CodecH264
)

// MuxMode selects how encoded samples reach the Muxer output file at
// Config.MP4Path.
type MuxMode int

const (
	// MuxStreaming feeds samples to the Muxer as they arrive.
	MuxStreaming MuxMode = iota
	// MuxPost buffers raw samples to a scratch file and muxes once, on
	// Stop.
	MuxPost
)

// Config carries the orchestrator's tunables, defaulted per
// spec.md §4.J.
type Config struct {
	Width, Height uint32
	FPS           uint32
	Codec         Codec
	Mux           MuxMode
	MP4Path       string
	RawPath       string
	Backend       string
}

// DefaultConfig returns spec.md §4.J's default configuration.
func DefaultConfig() Config {
	return Config{
		Width:   1920,
		Height:  1080,
		FPS:     60,
		Codec:   CodecHEVC,
		Mux:     MuxStreaming,
		MP4Path: "out.mp4",
		RawPath: "out.h26x",
		Backend: Auto,
	}
}

// EncoderBackend is the interface both the GPU and CPU encode
// backends implement.
type EncoderBackend interface {
	Name() string
	Probe(cfg Config) bool
	Init(cfg Config) error
	Start(frame FrameDescriptor, onSample SampleFunc) error
	Submit(waitValue uint64, frameIdx uint64) error
	Stop()
	Destroy()
}

// SampleFunc receives one encoded sample. rawOffset is InvalidOffset
// when the sample is not being tracked for post-mux reassembly.
type SampleFunc func(data []byte, rawOffset int64, duration uint32, keyframe bool)

// InvalidOffset marks a sample whose raw-file offset is not tracked.
const InvalidOffset int64 = -1

type sampleEntry struct {
	rawOffset int64
	size      int64
	duration  uint32
}

// Orchestrator drives an EncoderBackend through its lifecycle, owns
// the 90kHz duration accumulator, and muxes samples through a Muxer
// into the file at Config.MP4Path, per spec.md §4.J.
type Orchestrator struct {
	cfg     Config
	backend EncoderBackend

	started   bool
	frameIdx  uint64
	accum     uint64
	samples   []sampleEntry
	mp4Writer *Muxer
	rawFile   *os.File
	bitstream *os.File
}

// NewWithBackend creates an orchestrator around an already-selected
// encoder backend and initializes it.
func NewWithBackend(backend EncoderBackend, cfg Config) (*Orchestrator, error) {
	if err := backend.Init(cfg); err != nil {
		return nil, fmt.Errorf("videnc: backend %q init: %w", backend.Name(), err)
	}
	return &Orchestrator{cfg: cfg, backend: backend}, nil
}

// New selects an encoder backend from candidates following
// spec.md §4.J.1/§4.K.5: if cfg.Backend names a candidate whose Probe
// passes, it is tried first; on Init failure (or when cfg.Backend is
// Auto) candidates are tried in order until one initializes
// successfully.
func New(cfg Config, candidates ...EncoderBackend) (*Orchestrator, error) {
	ordered := orderCandidates(cfg.Backend, cfg, candidates)
	var lastErr error
	for _, b := range ordered {
		if o, err := NewWithBackend(b, cfg); err == nil {
			return o, nil
		} else {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("videnc: no candidate encoder backend available")
	}
	return nil, lastErr
}

func orderCandidates(name string, cfg Config, candidates []EncoderBackend) []EncoderBackend {
	if name == Auto {
		return filterProbed(cfg, candidates)
	}
	var ordered []EncoderBackend
	var rest []EncoderBackend
	for _, b := range candidates {
		if b.Name() == name && b.Probe(cfg) {
			ordered = append(ordered, b)
		} else {
			rest = append(rest, b)
		}
	}
	return append(ordered, filterProbed(cfg, rest)...)
}

func filterProbed(cfg Config, candidates []EncoderBackend) []EncoderBackend {
	var out []EncoderBackend
	for _, b := range candidates {
		if b.Probe(cfg) {
			out = append(out, b)
		}
	}
	return out
}

// Start opens the configured mux sinks and starts the backend.
func (o *Orchestrator) Start(frame FrameDescriptor, bitstreamFp *os.File) error {
	if o.started {
		return fmt.Errorf("videnc: already started")
	}
	o.accum = 0
	o.frameIdx = 0
	o.samples = nil

	switch o.cfg.Mux {
	case MuxStreaming:
		f, err := os.Create(o.cfg.MP4Path)
		if err != nil {
			return fmt.Errorf("videnc: open mp4 output: %w", err)
		}
		o.mp4Writer = NewMuxer(f, o.cfg.Width, o.cfg.Height, o.cfg.Codec == CodecHEVC)
	case MuxPost:
		if bitstreamFp == nil {
			f, err := os.OpenFile(o.cfg.RawPath, os.O_RDWR|os.O_CREATE, 0o644)
			if err != nil {
				return fmt.Errorf("videnc: open raw output: %w", err)
			}
			o.bitstream = f
		} else {
			o.bitstream = bitstreamFp
		}
	}

	if err := o.backend.Start(frame, o.onSample); err != nil {
		return fmt.Errorf("videnc: backend start: %w", err)
	}
	o.started = true
	return nil
}

// Submit delegates to the backend and, on success, advances frameIdx.
func (o *Orchestrator) Submit(waitValue uint64) error {
	if err := o.backend.Submit(waitValue, o.frameIdx); err != nil {
		return err
	}
	o.frameIdx++
	return nil
}

// Duration advances the 90kHz accumulator by one frame interval and
// returns the integer PTS duration for the frame just produced,
// following spec.md §4.J.2's exact bookkeeping so that, after N
// frames, the sum of returned durations equals round(N*90000/fps)
// within one frame's error.
func (o *Orchestrator) Duration() uint32 {
	o.accum += 90000
	duration := uint32(o.accum / uint64(o.cfg.FPS))
	o.accum -= uint64(duration) * uint64(o.cfg.FPS)
	return duration
}

func (o *Orchestrator) onSample(data []byte, rawOffset int64, duration uint32, keyframe bool) {
	switch o.cfg.Mux {
	case MuxStreaming:
		if o.mp4Writer == nil {
			return
		}
		if err := o.mp4Writer.WriteNAL(data, duration, keyframe); err != nil {
			o.mp4Writer.Close()
			o.mp4Writer = nil
		}
	case MuxPost:
		var off int64 = InvalidOffset
		if o.bitstream != nil {
			pos, err := o.bitstream.Seek(0, os.SEEK_CUR)
			if err == nil {
				off = pos
			}
			o.bitstream.Write(data)
		}
		o.samples = append(o.samples, sampleEntry{rawOffset: off, size: int64(len(data)), duration: duration})
	}
}

// Stop stops the backend, flushes a post-mux pass if configured, and
// releases mux resources.
func (o *Orchestrator) Stop() error {
	o.backend.Stop()
	var muxErr error
	if o.cfg.Mux == MuxPost {
		muxErr = o.muxPost()
	}
	if o.mp4Writer != nil {
		o.mp4Writer.Close()
		o.mp4Writer = nil
	}
	if o.bitstream != nil {
		o.bitstream.Close()
		o.bitstream = nil
	}
	o.backend.Destroy()
	o.started = false
	return muxErr
}

// muxPost re-reads the raw scratch file and feeds every tracked sample
// to a freshly created MP4 muxer, per spec.md §4.J.3.
func (o *Orchestrator) muxPost() error {
	raw, err := os.Open(o.cfg.RawPath)
	if err != nil {
		return fmt.Errorf("videnc: reopen raw stream: %w", err)
	}
	defer raw.Close()

	out, err := os.Create(o.cfg.MP4Path)
	if err != nil {
		return fmt.Errorf("videnc: create mp4 output: %w", err)
	}
	mux := NewMuxer(out, o.cfg.Width, o.cfg.Height, o.cfg.Codec == CodecHEVC)
	defer mux.Close()

	var scratch []byte
	for _, s := range o.samples {
		if s.rawOffset == InvalidOffset {
			continue
		}
		if int64(len(scratch)) < s.size {
			scratch = make([]byte, s.size)
		}
		if _, err := raw.ReadAt(scratch[:s.size], s.rawOffset); err != nil {
			return fmt.Errorf("videnc: read raw sample: %w", err)
		}
		if err := mux.WriteNAL(scratch[:s.size], s.duration, s.duration == 0); err != nil {
			return fmt.Errorf("videnc: write nal: %w", err)
		}
	}
	return nil
}
