package videnc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingBackend(name string, events *[]string) *Backend {
	return &Backend{
		Name: name,
		Create: func(SinkConfig) (Sink, error) {
			*events = append(*events, name+":create")
			return name, nil
		},
		Start: func(s Sink, f FrameDescriptor) error {
			*events = append(*events, name+":start")
			return nil
		},
		Submit: func(s Sink, v uint64) int {
			*events = append(*events, name+":submit")
			return 0
		},
		Stop: func(s Sink) {
			*events = append(*events, name+":stop")
		},
		Destroy: func(s Sink) {
			*events = append(*events, name+":destroy")
		},
	}
}

func TestStreamLifecycleOrder(t *testing.T) {
	var events []string
	s := NewStream(nil, nil)
	require.NoError(t, s.AttachSink(recordingBackend("a", &events), nil))
	require.NoError(t, s.AttachSink(recordingBackend("b", &events), nil))

	require.NoError(t, s.Start(FrameDescriptor{}))
	assert.Equal(t, []string{"a:create", "b:create", "a:start", "b:start"}, events)

	events = nil
	s.Submit(1)
	assert.Equal(t, []string{"a:submit", "b:submit"}, events)

	events = nil
	s.Destroy()
	assert.Equal(t, []string{"a:stop", "b:stop", "a:destroy", "b:destroy"}, events)
}

func TestAttachSinkForbiddenAfterStart(t *testing.T) {
	s := NewStream(nil, nil)
	require.NoError(t, s.Start(FrameDescriptor{}))
	err := s.AttachSink(&Backend{Name: "late"}, nil)
	assert.Error(t, err)
}

func TestSubmitReturnsFirstNonZeroButCallsAll(t *testing.T) {
	var calls []string
	s := NewStream(nil, nil)
	require.NoError(t, s.AttachSink(&Backend{
		Name: "a",
		Submit: func(Sink, uint64) int {
			calls = append(calls, "a")
			return 3
		},
	}, nil))
	require.NoError(t, s.AttachSink(&Backend{
		Name: "b",
		Submit: func(Sink, uint64) int {
			calls = append(calls, "b")
			return 7
		},
	}, nil))
	require.NoError(t, s.Start(FrameDescriptor{}))

	rc := s.Submit(1)
	assert.Equal(t, 3, rc)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestUpdateUsesUpdateCallbackWhenPresentOtherwiseRestarts(t *testing.T) {
	var events []string
	s := NewStream(nil, nil)
	require.NoError(t, s.AttachSink(&Backend{
		Name: "updater",
		Update: func(Sink, FrameDescriptor) error {
			events = append(events, "update")
			return nil
		},
	}, nil))
	require.NoError(t, s.AttachSink(&Backend{
		Name:  "restarter",
		Start: func(Sink, FrameDescriptor) error { events = append(events, "start"); return nil },
		Stop:  func(Sink) { events = append(events, "stop") },
	}, nil))
	require.NoError(t, s.Start(FrameDescriptor{}))

	events = nil
	require.NoError(t, s.Update(FrameDescriptor{Width: 99}))
	assert.Equal(t, []string{"update", "stop", "start"}, events)
}

func TestUpdateBeforeStartErrors(t *testing.T) {
	s := NewStream(nil, nil)
	err := s.Update(FrameDescriptor{})
	assert.Error(t, err)
}

func TestAttachSinkRejectsFailedProbe(t *testing.T) {
	s := NewStream(nil, nil)
	err := s.AttachSink(&Backend{Name: "x", Probe: func(SinkConfig) bool { return false }}, nil)
	assert.Error(t, err)
}

func TestAttachSinkReclaimsSlotOnCreateFailure(t *testing.T) {
	s := NewStream(nil, nil)
	err := s.AttachSink(&Backend{
		Name:   "x",
		Create: func(SinkConfig) (Sink, error) { return nil, fmt.Errorf("boom") },
	}, nil)
	assert.Error(t, err)
	assert.Empty(t, s.sinks)
}
