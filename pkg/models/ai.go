// Package models contains shared data models used across the Piel Sana codebase.
package models

import "context"

// Recommender is the interface every recommendations integration implements.
// Handlers never call a provider directly; they go through ai.Service.
type Recommender interface {
	// Recommend turns a prediction label into advice for the user.
	Recommend(ctx context.Context, prediction string) (Recommendations, error)
	// Name returns the provider identifier (e.g., "backend", "openai").
	Name() string
}

// Recommendations is the output of the recommendations step.
type Recommendations struct {
	Items       []string `json:"recomendaciones"`
	Description string   `json:"descripcion"`
	Provider    string   `json:"provider,omitempty"`
}

// Empty reports whether there is nothing to render.
func (r *Recommendations) Empty() bool {
	return r == nil || (len(r.Items) == 0 && r.Description == "")
}
