package storefront

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ShopInfo is the storefront-wide shop profile used for headers, footers,
// and SEO meta.
type ShopInfo struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	LogoURL        string `json:"logoUrl,omitempty"`
	CSPhone        string `json:"csPhone,omitempty"`
	CSEmail        string `json:"csEmail,omitempty"`
	BusinessHours  string `json:"businessHours,omitempty"`
	BusinessNumber string `json:"businessNumber,omitempty"`
	Address        string `json:"address,omitempty"`
}

// ShopInfoCache loads the shop profile once and shares it. Concurrent first
// loads collapse into one backend call; later calls return the cached value
// unless forced.
type ShopInfoCache struct {
	api   api
	group singleflight.Group

	mu     sync.RWMutex
	info   *ShopInfo
	loaded bool
}

func NewShopInfoCache(api api) *ShopInfoCache {
	return &ShopInfoCache{api: api}
}

// Get returns the shop profile, fetching it on first use.
func (s *ShopInfoCache) Get(ctx context.Context) (*ShopInfo, error) {
	s.mu.RLock()
	if s.loaded {
		info := s.info
		s.mu.RUnlock()
		return info, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.group.Do("shop-info", func() (any, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ShopInfo), nil
}

// Refresh forces a reload, replacing the cached profile on success.
func (s *ShopInfoCache) Refresh(ctx context.Context) (*ShopInfo, error) {
	return s.fetch(ctx)
}

// Loaded reports whether a profile is cached.
func (s *ShopInfoCache) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *ShopInfoCache) fetch(ctx context.Context) (*ShopInfo, error) {
	var info ShopInfo
	if err := s.api.Get(ctx, "/main/shop-info", nil, nil, &info); err != nil {
		return nil, fmt.Errorf("fetch shop info: %w", err)
	}
	s.mu.Lock()
	s.info = &info
	s.loaded = true
	s.mu.Unlock()
	return &info, nil
}
