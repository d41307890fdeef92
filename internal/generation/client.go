package generation

import (
	"context"
	"fmt"
)

// ModelClient is the uniform call contract for one provider family.
// Complete invokes the named model with the request and returns the raw
// response text. Implementations may retry transport errors internally but
// must return promptly once the context is cancelled.
type ModelClient interface {
	Complete(ctx context.Context, model string, req Request) (string, error)
}

// ClientRegistry maps provider families to their clients. It is assembled
// once at startup and injected into the dispatcher; nothing in this package
// holds global client state.
type ClientRegistry struct {
	clients map[Provider]ModelClient
}

// NewClientRegistry creates an empty registry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{
		clients: make(map[Provider]ModelClient),
	}
}

// Register adds a client for a provider family, replacing any previous
// registration.
func (r *ClientRegistry) Register(provider Provider, client ModelClient) {
	r.clients[provider] = client
}

// Get returns the client serving the provider family.
// Returns ErrUnknownProvider if none is registered.
func (r *ClientRegistry) Get(provider Provider) (ModelClient, error) {
	client, ok := r.clients[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return client, nil
}
