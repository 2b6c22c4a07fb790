package videnc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsDuplicateNames(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Backend{Name: "a"}))
	assert.Error(t, r.Register(&Backend{Name: "a"}))
}

func TestFindReturnsFirstMatch(t *testing.T) {
	r := NewRegistry()
	a := &Backend{Name: "a"}
	require.NoError(t, r.Register(a))
	assert.Same(t, a, r.Find("a"))
	assert.Nil(t, r.Find("missing"))
}

func TestPickNamedBackendFallsThroughOnFailedProbe(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Backend{Name: "gpu", Probe: func(SinkConfig) bool { return false }}))
	require.NoError(t, r.Register(&Backend{Name: "cpu", Probe: func(SinkConfig) bool { return true }}))

	picked := r.Pick("gpu", nil)
	require.NotNil(t, picked)
	assert.Equal(t, "cpu", picked.Name)
}

func TestPickAutoReturnsFirstProbePass(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Backend{Name: "a", Probe: func(SinkConfig) bool { return false }}))
	require.NoError(t, r.Register(&Backend{Name: "b", Probe: func(SinkConfig) bool { return true }}))
	require.NoError(t, r.Register(&Backend{Name: "c", Probe: func(SinkConfig) bool { return true }}))

	picked := r.Pick(Auto, nil)
	require.NotNil(t, picked)
	assert.Equal(t, "b", picked.Name)
}

func TestPickReturnsNilWhenNoBackendProbes(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Backend{Name: "a", Probe: func(SinkConfig) bool { return false }}))
	assert.Nil(t, r.Pick(Auto, nil))
}

func TestDefaultRegistryIsLazyAndResettable(t *testing.T) {
	DefaultDestroy()
	r1 := Default()
	r2 := Default()
	assert.Same(t, r1, r2)
	DefaultDestroy()
	r3 := Default()
	assert.NotSame(t, r1, r3)
}
