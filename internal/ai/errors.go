package ai

import "errors"

var (
	ErrProviderUnavailable = errors.New("recommendations provider unavailable")
	ErrInferenceTimeout    = errors.New("recommendations inference timeout")
	ErrInvalidResponse     = errors.New("recommendations provider returned invalid response")
	ErrEmptyPrediction     = errors.New("prediction label is empty")
)
