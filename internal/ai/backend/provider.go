package backend

import (
	"context"

	"github.com/pielsanaia/pielsana/pkg/models"
)

// Recommender is the slice of skinapi.Client this provider needs.
type Recommender interface {
	Recommend(ctx context.Context, prediction string) (*models.Recommendations, error)
}

// Provider implements models.Recommender by asking the analysis backend's
// recommendations endpoint.
type Provider struct {
	client Recommender
}

func NewProvider(client Recommender) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string { return "backend" }

func (p *Provider) Recommend(ctx context.Context, prediction string) (models.Recommendations, error) {
	recs, err := p.client.Recommend(ctx, prediction)
	if err != nil {
		return models.Recommendations{}, err
	}
	if recs == nil {
		return models.Recommendations{}, nil
	}
	return *recs, nil
}

var _ models.Recommender = (*Provider)(nil)
