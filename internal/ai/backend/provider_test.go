package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pielsanaia/pielsana/internal/ai/backend"
	"github.com/pielsanaia/pielsana/internal/skinapi"
	"github.com/pielsanaia/pielsana/internal/skinapi/mock"
	"github.com/pielsanaia/pielsana/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend_ForwardsPrediction(t *testing.T) {
	client := &mock.MockClient{
		RecommendFunc: func(_ context.Context, prediction string) (*models.Recommendations, error) {
			return &models.Recommendations{Description: "sobre " + prediction, Items: []string{"a"}}, nil
		},
	}
	p := backend.NewProvider(client)

	recs, err := p.Recommend(context.Background(), "Nevus")
	require.NoError(t, err)
	assert.Equal(t, "sobre Nevus", recs.Description)
	assert.Equal(t, []mock.Call{{Method: "Recommend", Arg: "Nevus"}}, client.Calls())
	assert.Equal(t, "backend", p.Name())
}

func TestRecommend_PropagatesError(t *testing.T) {
	p := backend.NewProvider(mock.NewFailingClient(skinapi.ErrBackendStatus))

	_, err := p.Recommend(context.Background(), "Nevus")
	assert.True(t, errors.Is(err, skinapi.ErrBackendStatus))
}

func TestRecommend_NilResponse(t *testing.T) {
	client := &mock.MockClient{
		RecommendFunc: func(context.Context, string) (*models.Recommendations, error) { return nil, nil },
	}
	recs, err := backend.NewProvider(client).Recommend(context.Background(), "Nevus")
	require.NoError(t, err)
	assert.True(t, recs.Empty())
}
