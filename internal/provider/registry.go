package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jaennil/guide_helper/backend/tileengine/internal/fetch"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/config"
	"github.com/jaennil/guide_helper/backend/tileengine/pkg/logger"
)

type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

func registryKey(providerID, styleID string) string {
	return providerID + "/" + styleID
}

func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := registryKey(p.ID(), p.Style())
	if _, exists := r.providers[k]; exists {
		return fmt.Errorf("provider %s already registered", k)
	}
	r.providers[k] = p
	return nil
}

func (r *Registry) Lookup(providerID, styleID string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[registryKey(providerID, styleID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownProvider, providerID, styleID)
	}
	return p, nil
}

// All returns every provider ordered by id and style.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].ID() != all[j].ID() {
			return all[i].ID() < all[j].ID()
		}
		return all[i].Style() < all[j].Style()
	})
	return all
}

// Hooks returns the discovery hooks of every registered provider.
func (r *Registry) Hooks() []fetch.Hook {
	var hooks []fetch.Hook
	for _, p := range r.All() {
		if d, ok := p.(Discoverer); ok {
			hooks = append(hooks, d)
		}
	}
	return hooks
}

// NewDefaultRegistry registers every OSM style and, when the keys are set,
// CloudMade and the Bing styles.
func NewDefaultRegistry(cfg config.Providers, rw *URLRewriter, f fetch.Fetcher, l logger.Logger) (*Registry, error) {
	r := NewRegistry()

	for _, style := range OSMStyles {
		if style.NeedsKey && cfg.CloudMadeAPIKey == "" {
			l.Debug("skipping keyed style", "provider", OSMProviderID, "style", style.Name)
			continue
		}
		p, err := NewGridProvider(OSMProviderID, style, GridOptions{
			APIKey:   cfg.CloudMadeAPIKey,
			StyleID:  cfg.CloudMadeStyleID,
			Rewriter: rw,
		})
		if err != nil {
			return nil, err
		}
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}

	if cfg.BingAPIKey == "" {
		l.Info("bing api key not set, bing styles disabled")
		return r, nil
	}

	for _, style := range BingStyles {
		p, err := NewQuadkeyProvider(style, QuadkeyOptions{
			APIKey:   cfg.BingAPIKey,
			Culture:  cfg.BingCulture,
			Rewriter: rw,
			Fetcher:  f,
		})
		if err != nil {
			return nil, err
		}
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}

	return r, nil
}
