package fake

import (
	"context"
	"sync"

	"github.com/ParcelForge/dispatchbox/internal/integrations/provider"
)

// FakeClient records payloads instead of calling a real provider. Used in
// tests and local runs without provider credentials.
type FakeClient struct {
	mu   sync.Mutex
	sent []provider.OrderPayload
	fail bool
}

func New() *FakeClient { return &FakeClient{} }

// Fail makes subsequent SendOrder calls report failure.
func (f *FakeClient) Fail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = v
}

func (f *FakeClient) SendOrder(_ context.Context, payload provider.OrderPayload) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false
	}
	f.sent = append(f.sent, payload)
	return true
}

// Sent returns a copy of all successfully recorded payloads.
func (f *FakeClient) Sent() []provider.OrderPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]provider.OrderPayload, len(f.sent))
	copy(out, f.sent)
	return out
}
