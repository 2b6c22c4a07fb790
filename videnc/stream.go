package videnc

import "fmt"

type attachedSink struct {
	backend *Backend
	sink    Sink
	started bool
}

// Stream is a sequence of sinks fed from a single GPU-resident frame,
// per spec.md §4.I. A Stream is used from a single goroutine at a
// time; it performs no internal locking.
type Stream struct {
	device any
	config SinkConfig

	sinks   []*attachedSink
	started bool
	frame   FrameDescriptor
}

// NewStream creates a stream bound to the given device handle and
// config, both opaque to the stream itself and passed through to
// backend callbacks.
func NewStream(device any, config SinkConfig) *Stream {
	return &Stream{device: device, config: config}
}

// AttachSink probes and creates a sink for backend, appending it to
// the stream. Forbidden once the stream has started.
func (s *Stream) AttachSink(backend *Backend, cfg SinkConfig) error {
	if s.started {
		return fmt.Errorf("videnc: AttachSink after Start")
	}
	if !backend.probe(cfg) {
		return fmt.Errorf("videnc: backend %q rejected config", backend.Name)
	}
	var sink Sink
	var err error
	if backend.Create != nil {
		sink, err = backend.Create(cfg)
		if err != nil {
			return fmt.Errorf("videnc: backend %q create: %w", backend.Name, err)
		}
	}
	s.sinks = append(s.sinks, &attachedSink{backend: backend, sink: sink})
	return nil
}

// Start stores frame and starts every attached sink in registration
// order. If a sink fails to start, the sinks already started are left
// running; the caller is expected to Destroy the stream rather than
// retry.
func (s *Stream) Start(frame FrameDescriptor) error {
	s.frame = frame
	for _, as := range s.sinks {
		if as.backend.Start != nil {
			if err := as.backend.Start(as.sink, frame); err != nil {
				return fmt.Errorf("videnc: backend %q start: %w", as.backend.Name, err)
			}
		}
		as.started = true
	}
	s.started = true
	return nil
}

// Submit forwards timelineValue to every started sink's Submit
// callback, in registration order, and returns the first non-zero
// return code. Every sink is called regardless of earlier failures.
func (s *Stream) Submit(timelineValue uint64) int {
	result := 0
	for _, as := range s.sinks {
		if !as.started || as.backend.Submit == nil {
			continue
		}
		if rc := as.backend.Submit(as.sink, timelineValue); rc != 0 && result == 0 {
			result = rc
		}
	}
	return result
}

// Update pushes a new frame descriptor to every sink. Forbidden before
// Start. Sinks that export Update receive the new frame directly;
// sinks that don't are stopped and restarted with the new frame.
func (s *Stream) Update(frame FrameDescriptor) error {
	if !s.started {
		return fmt.Errorf("videnc: Update before Start")
	}
	s.frame = frame
	for _, as := range s.sinks {
		if as.backend.Update != nil {
			if err := as.backend.Update(as.sink, frame); err != nil {
				return fmt.Errorf("videnc: backend %q update: %w", as.backend.Name, err)
			}
			continue
		}
		if as.backend.Stop != nil {
			as.backend.Stop(as.sink)
		}
		if as.backend.Start != nil {
			if err := as.backend.Start(as.sink, frame); err != nil {
				return fmt.Errorf("videnc: backend %q restart: %w", as.backend.Name, err)
			}
		}
	}
	return nil
}

// Stop stops every started sink. Idempotent.
func (s *Stream) Stop() {
	for _, as := range s.sinks {
		if !as.started {
			continue
		}
		if as.backend.Stop != nil {
			as.backend.Stop(as.sink)
		}
		as.started = false
	}
	s.started = false
}

// Destroy stops the stream, destroys every sink, and frees the sink
// list.
func (s *Stream) Destroy() {
	s.Stop()
	for _, as := range s.sinks {
		if as.backend.Destroy != nil {
			as.backend.Destroy(as.sink)
		}
	}
	s.sinks = nil
}
