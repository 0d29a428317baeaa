package conditions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/pielsanaia/pielsana/internal/cache"
	"github.com/pielsanaia/pielsana/internal/store"
	"github.com/pielsanaia/pielsana/pkg/models"
)

var ErrNotFound = errors.New("condition not found")

// Reader is the read side of the curated store.
type Reader interface {
	GetCondition(ctx context.Context, slug string) (*models.ConditionInfo, error)
	ListConditions(ctx context.Context) ([]*models.ConditionInfo, error)
}

// Remote fetches condition content from the analysis backend.
type Remote interface {
	GetCondition(ctx context.Context, slug string) (*models.ConditionInfo, error)
}

// Service resolves a slug against the curated store, the bundled catalog and
// the remote backend, in that order. store and remote may be nil.
type Service struct {
	store   Reader
	catalog *Catalog
	remote  Remote
	cache   cache.Cache
	ttl     time.Duration
}

func NewService(st Reader, catalog *Catalog, remote Remote, ca cache.Cache, ttl time.Duration) *Service {
	if ca == nil {
		ca = cache.Nop{}
	}
	return &Service{store: st, catalog: catalog, remote: remote, cache: ca, ttl: ttl}
}

// Lookup returns the condition for a user supplied slug or ErrNotFound.
func (s *Service) Lookup(ctx context.Context, raw string) (*models.ConditionInfo, error) {
	slug := NormalizeSlug(raw)
	if slug == "" {
		return nil, ErrNotFound
	}

	if s.store != nil {
		info, err := s.store.GetCondition(ctx, slug)
		switch {
		case err == nil:
			return info, nil
		case !errors.Is(err, store.ErrNotFound):
			slog.Warn("condition store lookup failed", "slug", slug, "error", err)
		}
	}

	if info, ok := s.catalog.Get(slug); ok {
		return info, nil
	}

	if s.remote == nil {
		return nil, ErrNotFound
	}
	return s.lookupRemote(ctx, slug)
}

func (s *Service) lookupRemote(ctx context.Context, slug string) (*models.ConditionInfo, error) {
	key := cache.ConditionKey(slug)
	if cached, ok, err := cache.GetJSON[models.ConditionInfo](ctx, s.cache, key); err == nil && ok {
		return cached, nil
	}

	info, err := s.remote.GetCondition(ctx, RemoteSlug(slug))
	if err != nil {
		slog.Info("remote condition lookup failed", "slug", slug, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	info.Slug = slug

	if err := cache.SetJSON(ctx, s.cache, key, info, s.ttl); err != nil {
		slog.Warn("condition cache write failed", "slug", slug, "error", err)
	}
	return info, nil
}

// List merges curated records over the bundled catalog. Curated entries
// replace catalog entries with the same slug.
func (s *Service) List(ctx context.Context) []models.ConditionInfo {
	bySlug := make(map[string]models.ConditionInfo)
	var order []string
	for _, info := range s.catalog.List() {
		bySlug[info.Slug] = info
		order = append(order, info.Slug)
	}

	if s.store != nil {
		curated, err := s.store.ListConditions(ctx)
		if err != nil {
			slog.Warn("condition store list failed", "error", err)
		}
		var extra []string
		for _, info := range curated {
			if _, known := bySlug[info.Slug]; !known {
				extra = append(extra, info.Slug)
			}
			bySlug[info.Slug] = *info
		}
		sort.Strings(extra)
		order = append(order, extra...)
	}

	out := make([]models.ConditionInfo, 0, len(order))
	for _, slug := range order {
		out = append(out, bySlug[slug])
	}
	return out
}
