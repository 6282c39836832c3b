package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedHeshamC/weatherAPI/internal/weather"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(0, 0)
	ctx := context.Background()

	_, err := s.Get(ctx, "weather_london")
	assert.ErrorIs(t, err, weather.ErrCacheMiss)

	require.NoError(t, s.Set(ctx, "weather_london", []byte("x"), time.Hour))
	data, err := s.Get(ctx, "weather_london")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
