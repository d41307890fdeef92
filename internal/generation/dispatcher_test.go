package generation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient scripts responses per call. Responses are consumed in order;
// once exhausted the last one repeats.
type fakeClient struct {
	mu        sync.Mutex
	responses []fakeResponse
	calls     []string // model names, in call order
}

type fakeResponse struct {
	text string
	err  error
}

func (c *fakeClient) Complete(_ context.Context, model string, _ Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, model)

	if len(c.responses) == 0 {
		return "", errors.New("no scripted response")
	}

	resp := c.responses[0]
	if len(c.responses) > 1 {
		c.responses = c.responses[1:]
	}
	return resp.text, resp.err
}

func (c *fakeClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// twoModelCatalog keeps dispatcher tests small and independent of the
// production registry.
func twoModelCatalog() Catalog {
	return Catalog{
		{Name: "alpha", DailyRequestLimit: 100, Provider: ProviderGoogle, Tier: TierPremium},
		{Name: "beta", DailyRequestLimit: 100, Provider: ProviderGroq, Tier: TierBasic},
	}
}

func newTestDispatcher(t *testing.T, catalog Catalog, client ModelClient, usage UsageRecorder) *Dispatcher {
	t.Helper()

	registry := NewClientRegistry()
	registry.Register(ProviderGoogle, client)
	registry.Register(ProviderGroq, client)

	if usage == nil {
		usage = NewInMemoryUsageRecorder()
	}

	d, err := NewDispatcher(catalog, registry, usage, 1, testLogger())
	require.NoError(t, err)
	return d
}

func TestNewDispatcher_Validation(t *testing.T) {
	t.Parallel()

	registry := NewClientRegistry()
	usage := NewInMemoryUsageRecorder()

	_, err := NewDispatcher(Catalog{}, registry, usage, 1, testLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewDispatcher(twoModelCatalog(), nil, usage, 1, testLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewDispatcher(twoModelCatalog(), registry, nil, 1, testLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewDispatcher(twoModelCatalog(), registry, usage, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDispatcher_GenerateObject(t *testing.T) {
	t.Parallel()

	t.Run("returns the first parsed object", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{responses: []fakeResponse{
			{text: `{"title": "ok"}`},
		}}
		d := newTestDispatcher(t, twoModelCatalog(), client, nil)

		result, err := d.GenerateObject(context.Background(), NewRequest("prompt"))
		require.NoError(t, err)
		assert.Equal(t, "ok", result["title"])
		assert.Equal(t, 1, client.callCount())
	})

	t.Run("falls through transport errors to the next attempt", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{responses: []fakeResponse{
			{err: errors.New("connection reset")},
			{text: `{"title": "recovered"}`},
		}}
		d := newTestDispatcher(t, twoModelCatalog(), client, nil)

		result, err := d.GenerateObject(context.Background(), NewRequest("prompt"))
		require.NoError(t, err)
		assert.Equal(t, "recovered", result["title"])
		assert.Equal(t, 2, client.callCount())
	})

	t.Run("tolerates prose around the object", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{responses: []fakeResponse{
			{text: "Here is your lesson:\n```json\n{\"title\": \"fenced\"}\n```\nHope it helps."},
		}}
		d := newTestDispatcher(t, twoModelCatalog(), client, nil)

		result, err := d.GenerateObject(context.Background(), NewRequest("prompt"))
		require.NoError(t, err)
		assert.Equal(t, "fenced", result["title"])
	})

	t.Run("malformed JSON moves to the next attempt", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{responses: []fakeResponse{
			{text: `{"title": "broken`},
			{text: `{"title": "fixed"}`},
		}}
		d := newTestDispatcher(t, twoModelCatalog(), client, nil)

		result, err := d.GenerateObject(context.Background(), NewRequest("prompt"))
		require.NoError(t, err)
		assert.Equal(t, "fixed", result["title"])
		assert.Equal(t, 2, client.callCount())
	})

	t.Run("exhausts every model and attempt", func(t *testing.T) {
		t.Parallel()

		usage := NewInMemoryUsageRecorder()
		client := &fakeClient{responses: []fakeResponse{
			{text: "no json here at all"},
		}}
		d := newTestDispatcher(t, twoModelCatalog(), client, usage)

		_, err := d.GenerateObject(context.Background(), NewRequest("prompt"))
		assert.ErrorIs(t, err, ErrModelsExhausted)

		// 2 models x 2 attempts
		assert.Equal(t, 4, client.callCount())

		// Usage is still recorded: the calls succeeded at transport level.
		assert.Equal(t, 2, usage.Count("alpha"))
		assert.Equal(t, 2, usage.Count("beta"))
	})

	t.Run("transport failures record no usage", func(t *testing.T) {
		t.Parallel()

		usage := NewInMemoryUsageRecorder()
		client := &fakeClient{responses: []fakeResponse{
			{err: errors.New("timeout")},
		}}
		d := newTestDispatcher(t, twoModelCatalog(), client, usage)

		_, err := d.GenerateObject(context.Background(), NewRequest("prompt"))
		assert.ErrorIs(t, err, ErrModelsExhausted)
		assert.Equal(t, 0, usage.Count("alpha"))
		assert.Equal(t, 0, usage.Count("beta"))
	})

	t.Run("non-object output is a soft failure", func(t *testing.T) {
		t.Parallel()

		d := newTestDispatcher(t, twoModelCatalog(), &fakeClient{}, nil)

		_, ok := d.parseObject("alpha", 1, "[1, 2, 3]")
		assert.False(t, ok)

		_, ok = d.parseObject("alpha", 1, "plain text answer")
		assert.False(t, ok)
	})

	t.Run("skips providers without a registered client", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{responses: []fakeResponse{
			{text: `{"title": "ok"}`},
		}}

		registry := NewClientRegistry()
		registry.Register(ProviderGoogle, client)
		// ProviderGroq deliberately unregistered.

		d, err := NewDispatcher(twoModelCatalog(), registry, NewInMemoryUsageRecorder(), 1, testLogger())
		require.NoError(t, err)

		result, err := d.GenerateObject(context.Background(), NewRequest("prompt"))
		require.NoError(t, err)
		assert.Equal(t, "ok", result["title"])

		for _, model := range client.calls {
			assert.Equal(t, "alpha", model, "only the google model has a client")
		}
	})

	t.Run("cancelled context stops the loop", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		d := newTestDispatcher(t, twoModelCatalog(), &fakeClient{}, nil)

		_, err := d.GenerateObject(ctx, NewRequest("prompt"))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("skips models whose daily budget is spent", func(t *testing.T) {
		t.Parallel()

		catalog := Catalog{
			{Name: "alpha", DailyRequestLimit: 1, Provider: ProviderGoogle, Tier: TierPremium},
			{Name: "beta", DailyRequestLimit: 100, Provider: ProviderGroq, Tier: TierBasic},
		}

		usage := NewInMemoryUsageRecorder()
		require.NoError(t, usage.RecordUse(context.Background(), "alpha"))

		client := &fakeClient{responses: []fakeResponse{
			{text: `{"title": "ok"}`},
		}}
		d := newTestDispatcher(t, catalog, client, usage)

		result, err := d.GenerateObject(context.Background(), NewRequest("prompt"))
		require.NoError(t, err)
		assert.Equal(t, "ok", result["title"])

		assert.NotContains(t, client.calls, "alpha", "alpha already used its one daily request")
		assert.Contains(t, client.calls, "beta")
	})

	t.Run("all budgets spent exhausts the models", func(t *testing.T) {
		t.Parallel()

		catalog := Catalog{
			{Name: "alpha", DailyRequestLimit: 1, Provider: ProviderGoogle, Tier: TierPremium},
		}

		usage := NewInMemoryUsageRecorder()
		require.NoError(t, usage.RecordUse(context.Background(), "alpha"))

		client := &fakeClient{responses: []fakeResponse{
			{text: `{"title": "ok"}`},
		}}
		d := newTestDispatcher(t, catalog, client, usage)

		_, err := d.GenerateObject(context.Background(), NewRequest("prompt"))
		assert.ErrorIs(t, err, ErrModelsExhausted)
		assert.Zero(t, client.callCount())
	})

	t.Run("a failing usage read does not block dispatch", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{responses: []fakeResponse{
			{text: `{"title": "ok"}`},
		}}
		usage := &unreadableUsageRecorder{inner: NewInMemoryUsageRecorder()}
		d := newTestDispatcher(t, twoModelCatalog(), client, usage)

		result, err := d.GenerateObject(context.Background(), NewRequest("prompt"))
		require.NoError(t, err)
		assert.Equal(t, "ok", result["title"])
	})
}

// unreadableUsageRecorder records normally but cannot be read, standing in
// for a usage store whose backing table is unreachable.
type unreadableUsageRecorder struct {
	inner *InMemoryUsageRecorder
}

func (r *unreadableUsageRecorder) RecordUse(ctx context.Context, model string) error {
	return r.inner.RecordUse(ctx, model)
}

func (r *unreadableUsageRecorder) CountForDay(context.Context, string, time.Time) (int, error) {
	return 0, errors.New("model_usage relation unavailable")
}
