package provider

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type stubClient struct{ name string }

func (c stubClient) SendOrder(ctx context.Context, payload OrderPayload) bool { return true }

func TestRegistry_ForProvider_Known(t *testing.T) {
	dhl := stubClient{name: "dhl"}
	rm := stubClient{name: "royal_mail"}
	r := NewRegistry(map[string]Client{
		"dhl":        dhl,
		"royal_mail": rm,
	})

	got, err := r.ForProvider("dhl")
	require.NoError(t, err)
	require.Equal(t, dhl, got)

	got, err = r.ForProvider("royal_mail")
	require.NoError(t, err)
	require.Equal(t, rm, got)

	require.ElementsMatch(t, []string{"dhl", "royal_mail"}, r.Names())
}

func TestRegistry_ForProvider_Unknown(t *testing.T) {
	r := NewRegistry(map[string]Client{"dhl": stubClient{}})

	_, err := r.ForProvider("amazon_prime")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnknownProvider)

	var upe *UnknownProviderError
	require.True(t, errors.As(err, &upe))
	require.Equal(t, "amazon_prime", upe.Provider)
}

func TestRegistry_ForProvider_Empty(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.ForProvider("dhl")
	require.ErrorIs(t, err, ErrUnknownProvider)
}
