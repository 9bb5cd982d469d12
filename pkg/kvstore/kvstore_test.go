package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	payload := []byte(`{"a":1}`)
	require.NoError(t, store.Set(ctx, "k", payload))
	payload[0] = 'x'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
	assert.ElementsMatch(t, []string{"k"}, store.Keys())
}

func TestMemoryZeroValue(t *testing.T) {
	var store Memory
	require.NoError(t, store.Set(context.Background(), "k", []byte("v")))
	got, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestUnavailable(t *testing.T) {
	var store Store = Unavailable{}
	_, err := store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, store.Set(context.Background(), "k", nil), ErrUnavailable)
}
