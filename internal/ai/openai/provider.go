package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/pielsanaia/pielsana/internal/config"
	"github.com/pielsanaia/pielsana/pkg/models"
)

const (
	defaultModel = "gpt-4o-mini"
	maxTokens    = 1024
)

const systemPrompt = `Eres un asistente dermatológico educativo. Recibirás el nombre de una afección de la piel detectada por un modelo de clasificación de imágenes.
Responde únicamente con un objeto JSON con esta forma:
{"descripcion": "breve descripción de la afección en español", "recomendaciones": ["recomendación 1", "recomendación 2"]}
Da entre 3 y 6 recomendaciones generales de cuidado. No diagnostiques ni recetes medicamentos; sugiere siempre consultar a un dermatólogo.`

// Provider implements models.Recommender with a direct chat completion.
type Provider struct {
	client *goopenai.Client
	model  string
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Provider{client: goopenai.NewClientWithConfig(clientCfg), model: model}
}

func (p *Provider) Name() string { return "openai" }

type completion struct {
	Description     string   `json:"descripcion"`
	Recommendations []string `json:"recomendaciones"`
}

func (p *Provider) Recommend(ctx context.Context, prediction string) (models.Recommendations, error) {
	req := goopenai.ChatCompletionRequest{
		Model: p.model,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: "Afección detectada: " + prediction},
		},
	}
	// Reasoning models reject max_tokens.
	if isReasoningModel(p.model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return models.Recommendations{}, fmt.Errorf("creating chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.Recommendations{}, fmt.Errorf("chat completion returned no choices")
	}

	var out completion
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return models.Recommendations{}, fmt.Errorf("decoding completion content: %w", err)
	}
	return models.Recommendations{
		Items:       out.Recommendations,
		Description: out.Description,
	}, nil
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

var _ models.Recommender = (*Provider)(nil)
