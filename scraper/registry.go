package scraper

import (
	"time"

	"tech-radar/config"
)

// Registry holds every built-in source wrapped and ready to run. Custom
// feed sources registered at runtime live in the database and are composed
// in by the orchestrator; the registry is also the authority for built-in
// name collisions when registering those.
type Registry struct {
	sources []*Source
	byName  map[string]*Source
}

func NewRegistry(cfg config.AppConfig) *Registry {
	var sources []*Source

	for _, feed := range cfg.Feeds {
		sources = append(sources, NewSource(
			NewFeedAdapter(feed.Name, feed.URL),
			WithDelay(500*time.Millisecond),
		))
	}

	sources = append(sources,
		NewSource(NewHackerNewsAdapter(), WithDelay(200*time.Millisecond)),
		NewSource(NewDevToAdapter(cfg.DevToApiKey), WithDelay(500*time.Millisecond)),
		NewSource(NewHashnodeAdapter(), WithDelay(500*time.Millisecond)),
		NewSource(NewProductHuntAdapter(cfg.ProductHuntToken)),
		NewSource(NewGitHubReleasesAdapter(cfg.WatchedRepos)),
		NewSource(NewNpmSearchAdapter(), WithDelay(500*time.Millisecond)),
		NewSource(NewSerperAdapter(cfg.SerperApiKey), WithRetries(1)),
		NewSource(NewGitHubTrendingAdapter(), WithDelay(2*time.Second)),
		NewSource(NewIndieHackersAdapter(), WithRetries(1), WithDelay(3*time.Second)),
	)

	byName := make(map[string]*Source, len(sources))
	for _, s := range sources {
		byName[s.Name()] = s
	}
	return &Registry{sources: sources, byName: byName}
}

// NewRegistryFromSources builds a registry over an explicit source list.
func NewRegistryFromSources(sources ...*Source) *Registry {
	byName := make(map[string]*Source, len(sources))
	for _, s := range sources {
		byName[s.Name()] = s
	}
	return &Registry{sources: sources, byName: byName}
}

// All returns every built-in source in registration order.
func (r *Registry) All() []*Source { return r.sources }

// ByKind returns the built-in sources of one concurrency tier.
func (r *Registry) ByKind(kind Kind) []*Source {
	var out []*Source
	for _, s := range r.sources {
		if s.Kind() == kind {
			out = append(out, s)
		}
	}
	return out
}

func (r *Registry) Get(name string) (*Source, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// IsBuiltin guards custom source registration: user sources may not shadow
// a built-in adapter name.
func (r *Registry) IsBuiltin(name string) bool {
	_, ok := r.byName[name]
	return ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for _, s := range r.sources {
		names = append(names, s.Name())
	}
	return names
}
