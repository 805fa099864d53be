package inputs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitonboard/pkg/errors"
)

var (
	testInputA = New("test_a", "test input a")
	testInputB = New("test_b", "test input b")
)

// stubProvider answers a fixed set of inputs and counts queries.
type stubProvider struct {
	name     string
	values   map[*Input]interface{}
	priority int
	calls    int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Resolve(_ context.Context, input *Input, _ Resolver) (interface{}, bool, error) {
	p.calls++
	value, ok := p.values[input]
	return value, ok, nil
}

func (p *stubProvider) Provides() map[*Input]int {
	m := make(map[*Input]int)
	for input := range p.values {
		m[input] = p.priority
	}
	return m
}

func TestResolveBasic(t *testing.T) {
	p := &stubProvider{
		name:     "stub",
		values:   map[*Input]interface{}{testInputA: "hello"},
		priority: DefaultPriority,
	}
	r := NewProviderResolver(p)

	value, err := r.Resolve(context.Background(), testInputA)
	require.NoError(t, err)
	assert.Equal(t, "hello", value)
}

func TestResolveUnknownInput(t *testing.T) {
	r := NewProviderResolver()

	_, err := r.Resolve(context.Background(), testInputA)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCannotProvide))
}

func TestResolveMemoizes(t *testing.T) {
	p := &stubProvider{
		name:     "stub",
		values:   map[*Input]interface{}{testInputA: 42},
		priority: DefaultPriority,
	}
	r := NewProviderResolver(p)

	for i := 0; i < 3; i++ {
		value, err := r.Resolve(context.Background(), testInputA)
		require.NoError(t, err)
		assert.Equal(t, 42, value)
	}
	assert.Equal(t, 1, p.calls)
}

func TestResolvePriorityOrder(t *testing.T) {
	low := &stubProvider{
		name:     "low",
		values:   map[*Input]interface{}{testInputA: "low"},
		priority: 10,
	}
	high := &stubProvider{
		name:     "high",
		values:   map[*Input]interface{}{testInputA: "high"},
		priority: 90,
	}
	r := NewProviderResolver(low, high)

	value, err := r.Resolve(context.Background(), testInputA)
	require.NoError(t, err)
	assert.Equal(t, "high", value)
	assert.Equal(t, 0, low.calls, "low-priority provider must not be queried once high answered")
}

func TestResolveSoftNegativeFallsThrough(t *testing.T) {
	// advertises the input but has no answer at resolve time
	empty := &stubProvider{
		name:     "empty",
		values:   map[*Input]interface{}{},
		priority: 90,
	}
	backup := &stubProvider{
		name:     "backup",
		values:   map[*Input]interface{}{testInputA: "backup"},
		priority: 10,
	}

	r := NewProviderResolver(&advertisingStub{inner: empty, input: testInputA}, backup)

	value, err := r.Resolve(context.Background(), testInputA)
	require.NoError(t, err)
	assert.Equal(t, "backup", value)
}

// advertisingStub advertises an input its inner stub cannot answer.
type advertisingStub struct {
	inner *stubProvider
	input *Input
}

func (p *advertisingStub) Name() string { return p.inner.name }

func (p *advertisingStub) Resolve(ctx context.Context, input *Input, r Resolver) (interface{}, bool, error) {
	return p.inner.Resolve(ctx, input, r)
}

func (p *advertisingStub) Provides() map[*Input]int {
	return map[*Input]int{p.input: 90}
}

func TestResolveAs(t *testing.T) {
	p := &stubProvider{
		name:     "stub",
		values:   map[*Input]interface{}{testInputA: "text", testInputB: 7},
		priority: DefaultPriority,
	}
	r := NewProviderResolver(p)

	s, err := ResolveAs[string](context.Background(), r, testInputA)
	require.NoError(t, err)
	assert.Equal(t, "text", s)

	_, err = ResolveAs[string](context.Background(), r, testInputB)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCannotProvide))
}

func TestConstantsOutrankDefaultProviders(t *testing.T) {
	inferring := &stubProvider{
		name:     "inferring",
		values:   map[*Input]interface{}{testInputA: "inferred"},
		priority: DefaultPriority,
	}
	constants := Constants(map[*Input]interface{}{testInputA: "given"})
	r := NewProviderResolver(inferring, constants)

	value, err := r.Resolve(context.Background(), testInputA)
	require.NoError(t, err)
	assert.Equal(t, "given", value)
}

func TestResolveCycleDetected(t *testing.T) {
	r := NewProviderResolver(&cyclicProvider{})

	_, err := r.Resolve(context.Background(), testInputA)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCannotProvide))
}

// cyclicProvider resolves testInputA by asking for testInputA.
type cyclicProvider struct{}

func (p *cyclicProvider) Name() string { return "cyclic" }

func (p *cyclicProvider) Resolve(ctx context.Context, input *Input, r Resolver) (interface{}, bool, error) {
	value, err := r.Resolve(ctx, input)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (p *cyclicProvider) Provides() map[*Input]int {
	return map[*Input]int{testInputA: DefaultPriority}
}
