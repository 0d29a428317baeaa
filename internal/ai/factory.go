package ai

import (
	"fmt"

	"github.com/pielsanaia/pielsana/internal/ai/backend"
	"github.com/pielsanaia/pielsana/internal/ai/openai"
	"github.com/pielsanaia/pielsana/internal/config"
	"github.com/pielsanaia/pielsana/internal/skinapi"
	"github.com/pielsanaia/pielsana/pkg/models"
)

// NewProvider constructs the recommendations provider named in config.
// Called once at server startup.
func NewProvider(cfg config.RecommendationsConfig, client skinapi.Client) (models.Recommender, error) {
	switch cfg.Provider {
	case "backend":
		return backend.NewProvider(client), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("unknown recommendations provider %q: must be one of backend, openai", cfg.Provider)
	}
}
