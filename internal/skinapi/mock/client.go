// Package mock provides a programmable skinapi.Client for tests.
package mock

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pielsanaia/pielsana/internal/skinapi"
	"github.com/pielsanaia/pielsana/pkg/models"
)

// Call records one invocation against the mock.
type Call struct {
	Method string
	Arg    string
}

// MockClient satisfies skinapi.Client. Unset Func fields return zero values.
type MockClient struct {
	AnalyzeFunc       func(ctx context.Context, t models.AnalysisType, img skinapi.Image) (*models.AnalysisResult, error)
	GetResultFunc     func(ctx context.Context, id string) (*models.AnalysisResult, error)
	GetConditionFunc  func(ctx context.Context, slug string) (*models.ConditionInfo, error)
	RecommendFunc     func(ctx context.Context, prediction string) (*models.Recommendations, error)
	AnalyzeLegacyFunc func(ctx context.Context, img skinapi.Image) (json.RawMessage, error)
	ReadyFunc         func(ctx context.Context) error

	mu    sync.Mutex
	calls []Call
}

func (m *MockClient) record(method, arg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Arg: arg})
}

// Calls returns a copy of every recorded invocation, in order.
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockClient) Analyze(ctx context.Context, t models.AnalysisType, img skinapi.Image) (*models.AnalysisResult, error) {
	m.record("Analyze", skinapi.EndpointFor(t))
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, t, img)
	}
	return &models.AnalysisResult{}, nil
}

func (m *MockClient) GetResult(ctx context.Context, id string) (*models.AnalysisResult, error) {
	m.record("GetResult", id)
	if m.GetResultFunc != nil {
		return m.GetResultFunc(ctx, id)
	}
	return nil, skinapi.ErrNotFound
}

func (m *MockClient) GetCondition(ctx context.Context, slug string) (*models.ConditionInfo, error) {
	m.record("GetCondition", slug)
	if m.GetConditionFunc != nil {
		return m.GetConditionFunc(ctx, slug)
	}
	return nil, skinapi.ErrNotFound
}

func (m *MockClient) Recommend(ctx context.Context, prediction string) (*models.Recommendations, error) {
	m.record("Recommend", prediction)
	if m.RecommendFunc != nil {
		return m.RecommendFunc(ctx, prediction)
	}
	return &models.Recommendations{}, nil
}

func (m *MockClient) AnalyzeLegacy(ctx context.Context, img skinapi.Image) (json.RawMessage, error) {
	m.record("AnalyzeLegacy", img.ContentType)
	if m.AnalyzeLegacyFunc != nil {
		return m.AnalyzeLegacyFunc(ctx, img)
	}
	return json.RawMessage(`{}`), nil
}

func (m *MockClient) Ready(ctx context.Context) error {
	if m.ReadyFunc != nil {
		return m.ReadyFunc(ctx)
	}
	return nil
}

// NewFailingClient returns a MockClient whose every call fails with err.
func NewFailingClient(err error) *MockClient {
	return &MockClient{
		AnalyzeFunc: func(context.Context, models.AnalysisType, skinapi.Image) (*models.AnalysisResult, error) {
			return nil, err
		},
		GetResultFunc: func(context.Context, string) (*models.AnalysisResult, error) {
			return nil, err
		},
		GetConditionFunc: func(context.Context, string) (*models.ConditionInfo, error) {
			return nil, err
		},
		RecommendFunc: func(context.Context, string) (*models.Recommendations, error) {
			return nil, err
		},
		AnalyzeLegacyFunc: func(context.Context, skinapi.Image) (json.RawMessage, error) {
			return nil, err
		},
		ReadyFunc: func(context.Context) error { return err },
	}
}

// Compile-time check that MockClient implements skinapi.Client.
var _ skinapi.Client = (*MockClient)(nil)
