package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmoney/golang_services/internal/repayment_service/domain"
)

func TestCachedSettingsProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("CachesUntilTTL", func(t *testing.T) {
		next := new(MockSettingsProvider)
		next.On("Get", ctx, 404).Return(enabledKenya(), nil).Twice()
		cache := NewCachedSettingsProvider(next, 50*time.Millisecond)

		for i := 0; i < 3; i++ {
			s, err := cache.Get(ctx, 404)
			require.NoError(t, err)
			assert.True(t, s.ValidationEnabled)
		}
		next.AssertNumberOfCalls(t, "Get", 1)

		time.Sleep(100 * time.Millisecond)
		_, err := cache.Get(ctx, 404)
		require.NoError(t, err)
		next.AssertNumberOfCalls(t, "Get", 2)
	})

	t.Run("CachesMissingRecord", func(t *testing.T) {
		next := new(MockSettingsProvider)
		next.On("Get", ctx, 800).Return(nil, nil).Once()
		cache := NewCachedSettingsProvider(next, time.Minute)

		for i := 0; i < 2; i++ {
			s, err := cache.Get(ctx, 800)
			require.NoError(t, err)
			assert.Nil(t, s)
		}
		next.AssertExpectations(t)
	})

	t.Run("Invalidate", func(t *testing.T) {
		next := new(MockSettingsProvider)
		next.On("Get", ctx, 404).Return(enabledKenya(), nil).Once()
		next.On("Get", ctx, 404).Return(&domain.CountrySettings{CountryID: 404}, nil).Once()
		cache := NewCachedSettingsProvider(next, time.Hour)

		s, err := cache.Get(ctx, 404)
		require.NoError(t, err)
		assert.True(t, s.ValidationEnabled)

		cache.Invalidate(404)
		s, err = cache.Get(ctx, 404)
		require.NoError(t, err)
		assert.False(t, s.ValidationEnabled)
		next.AssertExpectations(t)
	})

	t.Run("ErrorsNotCached", func(t *testing.T) {
		next := new(MockSettingsProvider)
		next.On("Get", ctx, 404).Return(nil, errors.New("boom")).Once()
		next.On("Get", ctx, 404).Return(enabledKenya(), nil).Once()
		cache := NewCachedSettingsProvider(next, time.Hour)

		_, err := cache.Get(ctx, 404)
		assert.Error(t, err)
		s, err := cache.Get(ctx, 404)
		require.NoError(t, err)
		assert.NotNil(t, s)
	})
}

// gatedSettings blocks every Get until release is closed.
type gatedSettings struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedSettings) Get(_ context.Context, countryID int) (*domain.CountrySettings, error) {
	g.calls.Add(1)
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return &domain.CountrySettings{CountryID: countryID, ValidationEnabled: true}, nil
}

func TestCachedSettingsProvider_ConcurrentMissesShareOneLoad(t *testing.T) {
	next := &gatedSettings{entered: make(chan struct{}), release: make(chan struct{})}
	cache := NewCachedSettingsProvider(next, time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := cache.Get(ctx, 404)
			assert.NoError(t, err)
			assert.NotNil(t, s)
		}()
	}
	<-next.entered
	time.Sleep(20 * time.Millisecond)
	close(next.release)
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCachedSettingsProvider_HandleSettingsUpdated(t *testing.T) {
	ctx := context.Background()
	next := new(MockSettingsProvider)
	next.On("Get", ctx, 404).Return(enabledKenya(), nil).Twice()
	cache := NewCachedSettingsProvider(next, time.Hour)

	_, err := cache.Get(ctx, 404)
	require.NoError(t, err)
	require.NoError(t, cache.HandleSettingsUpdated([]byte(`{"country_id":404}`)))
	_, err = cache.Get(ctx, 404)
	require.NoError(t, err)
	next.AssertExpectations(t)

	assert.Error(t, cache.HandleSettingsUpdated([]byte(`{}`)))
	assert.Error(t, cache.HandleSettingsUpdated([]byte(`nope`)))
}
