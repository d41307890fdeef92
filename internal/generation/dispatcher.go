package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// attemptsPerModel bounds how many times one model is asked before the
// dispatcher moves on to the next one in the shuffled order.
const attemptsPerModel = 2

// Dispatcher turns a prompt into a validated JSON object by walking a
// shuffled model catalog, tolerating transport failures and malformed
// output. Every failure below total exhaustion is soft: logged, then the
// next attempt or model is tried. No delay is inserted between attempts;
// transport-level backoff lives inside the provider clients.
type Dispatcher struct {
	catalog Catalog
	clients *ClientRegistry
	usage   UsageRecorder
	logger  *slog.Logger

	// rng drives the per-call catalog permutation. Guarded by mu because
	// dispatcher calls run concurrently on the worker pool.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDispatcher creates a Dispatcher over the given catalog and clients.
// A zero seed derives the permutation sequence from the clock; a fixed
// seed makes model ordering reproducible.
func NewDispatcher(
	catalog Catalog,
	clients *ClientRegistry,
	usage UsageRecorder,
	seed int64,
	logger *slog.Logger,
) (*Dispatcher, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("%w: catalog cannot be empty", ErrInvalidConfig)
	}
	if clients == nil {
		return nil, fmt.Errorf("%w: client registry cannot be nil", ErrInvalidConfig)
	}
	if usage == nil {
		return nil, fmt.Errorf("%w: usage recorder cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
	}

	return &Dispatcher{
		catalog: catalog,
		clients: clients,
		usage:   usage,
		logger:  logger.With("component", "generation_dispatcher"),
		rng:     rand.New(rand.NewSource(seedOrClock(seed))),
	}, nil
}

// GenerateObject asks the models for a JSON object answering the request.
// It returns the first successfully parsed object, or ErrModelsExhausted
// once every model/attempt combination has failed.
func (d *Dispatcher) GenerateObject(ctx context.Context, req Request) (map[string]any, error) {
	order := d.shuffledOrder()

	for _, model := range order {
		client, err := d.clients.Get(model.Provider)
		if err != nil {
			d.logger.Error("skipping model without client",
				"model", model.Name,
				"provider", model.Provider,
				"error", err)
			continue
		}

		if d.budgetExhausted(ctx, model) {
			continue
		}

		for attempt := 1; attempt <= attemptsPerModel; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("generation cancelled: %w", err)
			}

			d.logger.Debug("trying model",
				"model", model.Name,
				"provider", model.Provider,
				"attempt", attempt)

			text, err := client.Complete(ctx, model.Name, req)
			if err != nil {
				d.logger.Warn("model call failed",
					"model", model.Name,
					"provider", model.Provider,
					"attempt", attempt,
					"error", err)
				continue
			}

			// Usage is recorded for every completed call, parseable or not:
			// the upstream quota was spent either way.
			if err := d.usage.RecordUse(ctx, model.Name); err != nil {
				d.logger.Warn("failed to record model usage",
					"model", model.Name,
					"error", err)
			}

			result, ok := d.parseObject(model.Name, attempt, text)
			if ok {
				return result, nil
			}
		}
	}

	return nil, ErrModelsExhausted
}

// parseObject applies the extraction ladder to raw model output: extract a
// JSON value, accept an object as-is, re-parse a string payload, and treat
// everything else as a soft failure.
func (d *Dispatcher) parseObject(model string, attempt int, text string) (map[string]any, bool) {
	value, err := ExtractJSON(text)
	if err != nil {
		d.logger.Warn("could not extract JSON from model output",
			"model", model,
			"attempt", attempt,
			"error", err)
		return nil, false
	}

	switch v := value.(type) {
	case map[string]any:
		return v, true

	case string:
		// Some models double-encode: the object arrives as a JSON string.
		var nested map[string]any
		if err := json.Unmarshal([]byte(v), &nested); err != nil {
			d.logger.Warn("model returned string payload that is not JSON",
				"model", model,
				"attempt", attempt,
				"error", err)
			return nil, false
		}
		return nested, true

	default:
		d.logger.Warn("unexpected JSON shape from model",
			"model", model,
			"attempt", attempt,
			"shape", fmt.Sprintf("%T", value))
		return nil, false
	}
}

// budgetExhausted reports whether the model's free-tier daily request
// budget is already spent today. A recorder read failure never blocks
// dispatch; the model is tried anyway.
func (d *Dispatcher) budgetExhausted(ctx context.Context, model ModelDescriptor) bool {
	if model.DailyRequestLimit <= 0 {
		return false
	}

	used, err := d.usage.CountForDay(ctx, model.Name, time.Now().UTC())
	if err != nil {
		d.logger.Warn("could not read model usage, trying model anyway",
			"model", model.Name,
			"error", err)
		return false
	}

	if used >= model.DailyRequestLimit {
		d.logger.Info("model daily budget exhausted, skipping",
			"model", model.Name,
			"used", used,
			"limit", model.DailyRequestLimit)
		return true
	}
	return false
}

func (d *Dispatcher) shuffledOrder() []ModelDescriptor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.catalog.ShuffledOrder(d.rng)
}

func seedOrClock(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}
