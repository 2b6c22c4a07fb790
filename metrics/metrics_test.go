package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFIFODepthSetsGauge(t *testing.T) {
	m := New()
	m.ObserveFIFODepth("requester", 3)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.FIFODepth.WithLabelValues("requester")))
}

func TestRecordFrameEncodedIncrementsCounterAndHistogram(t *testing.T) {
	m := New()
	m.RecordFrameEncoded("cpu", 1500)
	m.RecordFrameEncoded("cpu", 1500)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.VideoFrames.WithLabelValues("cpu")))

	count, err := testutil.GatherAndCount(m.Registry, "dvz_video_frame_duration_ticks")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeqQueueDepthLabelsByDeqAndQueue(t *testing.T) {
	m := New()
	m.ObserveDeqQueueDepth("render", 2, 5)
	assert.Equal(t, float64(5), testutil.ToFloat64(m.DeqQueueDepth.WithLabelValues("render", "2")))
}
