package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pielsanaia/pielsana/internal/cache"
	"github.com/pielsanaia/pielsana/pkg/models"
)

const (
	maxItems            = 10
	maxItemBytes        = 500
	maxDescriptionBytes = 2000
)

// Service wraps a provider with a timeout, output limits and a cache keyed
// by the prediction label.
type Service struct {
	provider models.Recommender
	cache    cache.Cache
	timeout  time.Duration
	ttl      time.Duration
}

// NewService creates a new Service.
func NewService(provider models.Recommender, ca cache.Cache, timeout, ttl time.Duration) *Service {
	if ca == nil {
		ca = cache.Nop{}
	}
	return &Service{
		provider: provider,
		cache:    ca,
		timeout:  timeout,
		ttl:      ttl,
	}
}

// Name returns the underlying provider's name.
func (s *Service) Name() string { return s.provider.Name() }

// Recommend returns recommendations for prediction, serving repeats from cache.
func (s *Service) Recommend(ctx context.Context, prediction string) (*models.Recommendations, error) {
	label := strings.TrimSpace(prediction)
	if label == "" {
		return nil, ErrEmptyPrediction
	}

	key := cache.RecommendationKey(label)
	cached, found, err := cache.GetJSON[models.Recommendations](ctx, s.cache, key)
	if err != nil {
		slog.Warn("recommendations cache read failed", "error", err)
	}
	if found {
		return cached, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	recs, err := s.provider.Recommend(callCtx, label)
	if err != nil {
		switch {
		case errors.Is(err, ErrInferenceTimeout):
			return nil, err
		case errors.Is(callCtx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
	}

	clean := sanitize(recs)
	if clean.Empty() {
		return nil, fmt.Errorf("%w: no recommendations for %q", ErrInvalidResponse, label)
	}
	clean.Provider = s.provider.Name()

	if err := cache.SetJSON(ctx, s.cache, key, clean, s.ttl); err != nil {
		slog.Warn("recommendations cache write failed", "error", err)
	}
	return &clean, nil
}

// sanitize trims blank items and caps the output size.
func sanitize(r models.Recommendations) models.Recommendations {
	out := models.Recommendations{
		Description: truncateString(strings.TrimSpace(r.Description), maxDescriptionBytes),
	}
	for _, item := range r.Items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out.Items = append(out.Items, truncateString(item, maxItemBytes))
		if len(out.Items) == maxItems {
			break
		}
	}
	return out
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
