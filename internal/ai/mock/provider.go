package mock

import (
	"context"
	"sync/atomic"

	"github.com/pielsanaia/pielsana/internal/ai"
	"github.com/pielsanaia/pielsana/pkg/models"
)

// MockProvider satisfies models.Recommender for testing.
type MockProvider struct {
	Name_         string
	RecommendFunc func(ctx context.Context, prediction string) (models.Recommendations, error)

	calls atomic.Int64
}

func (m *MockProvider) Name() string { return m.Name_ }

// Calls returns how many times Recommend was invoked.
func (m *MockProvider) Calls() int { return int(m.calls.Load()) }

func (m *MockProvider) Recommend(ctx context.Context, prediction string) (models.Recommendations, error) {
	m.calls.Add(1)
	if m.RecommendFunc != nil {
		return m.RecommendFunc(ctx, prediction)
	}
	return models.Recommendations{}, nil
}

// NewMockProvider returns a MockProvider with sensible default responses.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		RecommendFunc: func(_ context.Context, prediction string) (models.Recommendations, error) {
			return models.Recommendations{
				Description: "Resultado simulado para " + prediction,
				Items: []string{
					"Usa protector solar a diario",
					"Consulta a un dermatólogo",
				},
			}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		RecommendFunc: func(context.Context, string) (models.Recommendations, error) {
			return models.Recommendations{}, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		RecommendFunc: func(ctx context.Context, _ string) (models.Recommendations, error) {
			<-ctx.Done()
			return models.Recommendations{}, ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements Recommender.
var _ models.Recommender = (*MockProvider)(nil)
