package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"github.com/mmoney/golang_services/internal/repayment_service/domain"
)

// CachedSettingsProvider memoizes country settings for ttl. Missing records
// are cached too. Errors are never cached. Concurrent misses for one country
// share a single read of next.
type CachedSettingsProvider struct {
	next  domain.CountrySettingsProvider
	cache *ttlcache.Cache[int, *domain.CountrySettings]
	loads singleflight.Group
}

func NewCachedSettingsProvider(next domain.CountrySettingsProvider, ttl time.Duration) *CachedSettingsProvider {
	return &CachedSettingsProvider{
		next: next,
		cache: ttlcache.New[int, *domain.CountrySettings](
			ttlcache.WithTTL[int, *domain.CountrySettings](ttl),
			ttlcache.WithDisableTouchOnHit[int, *domain.CountrySettings](),
		),
	}
}

func (c *CachedSettingsProvider) Get(ctx context.Context, countryID int) (*domain.CountrySettings, error) {
	if item := c.cache.Get(countryID); item != nil {
		return item.Value(), nil
	}

	v, err, _ := c.loads.Do(strconv.Itoa(countryID), func() (interface{}, error) {
		s, err := c.next.Get(ctx, countryID)
		if err != nil {
			return nil, err
		}
		c.cache.Set(countryID, s, ttlcache.DefaultTTL)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.CountrySettings), nil
}

// Invalidate drops the cached record so the next Get reads through.
func (c *CachedSettingsProvider) Invalidate(countryID int) {
	c.loads.Forget(strconv.Itoa(countryID))
	c.cache.Delete(countryID)
}

// SettingsUpdatedSubject carries SettingsUpdatedEvent whenever a country's
// settings row changes.
const SettingsUpdatedSubject = "settings.country.updated"

type SettingsUpdatedEvent struct {
	CountryID int `json:"country_id"`
}

// HandleSettingsUpdated invalidates the country named in a SettingsUpdatedEvent.
func (c *CachedSettingsProvider) HandleSettingsUpdated(data []byte) error {
	var ev SettingsUpdatedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decoding settings update: %w", err)
	}
	if ev.CountryID == 0 {
		return errors.New("settings update without country_id")
	}
	c.Invalidate(ev.CountryID)
	return nil
}
