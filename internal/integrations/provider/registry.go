package provider

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnknownProvider is matched with errors.Is when an order references a
// provider no client is registered for.
var ErrUnknownProvider = errors.New("unknown shipping provider")

// UnknownProviderError names the offending provider id so the HTTP layer can
// echo it back.
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown shipping provider: %s", e.Provider)
}

func (e *UnknownProviderError) Is(target error) bool {
	return target == ErrUnknownProvider
}

// Registry maps provider identifiers to ready-to-use clients. The mapping is
// fixed at construction; there is no dynamic registration.
type Registry struct {
	clients map[string]Client
}

func NewRegistry(clients map[string]Client) *Registry {
	m := make(map[string]Client, len(clients))
	for id, c := range clients {
		m[id] = c
	}
	return &Registry{clients: m}
}

// ForProvider returns the client registered for the provider id.
func (r *Registry) ForProvider(id string) (Client, error) {
	if c, ok := r.clients[id]; ok {
		return c, nil
	}
	return nil, &UnknownProviderError{Provider: id}
}

// Names returns the registered provider identifiers.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for id := range r.clients {
		names = append(names, id)
	}
	return names
}
