package models

import "time"

// GenerationRequest is the input of a single chat completion call
type GenerationRequest struct {
	ModelID     string  `json:"model_id"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Temperature bounds accepted by the completion endpoint
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// ClampTemperature keeps t inside [MinTemperature, MaxTemperature]
func ClampTemperature(t float64) float64 {
	if t < MinTemperature {
		return MinTemperature
	}
	if t > MaxTemperature {
		return MaxTemperature
	}
	return t
}

// GenerationOutcome labels the result of a generation for logs and metrics
type GenerationOutcome string

const (
	OutcomeSuccess       GenerationOutcome = "success"
	OutcomeUpstreamError GenerationOutcome = "upstream_error"
	OutcomeConfigError   GenerationOutcome = "config_error"
	OutcomeInvalidInput  GenerationOutcome = "invalid_input"
)

// GenerationLog summarises one generation for the request log
type GenerationLog struct {
	RequestID string            `json:"request_id"`
	ModelID   string            `json:"model_id"`
	Outcome   GenerationOutcome `json:"outcome"`
	PromptLen int               `json:"prompt_len"`
	OutputLen int               `json:"output_len"`
	Latency   time.Duration     `json:"latency_ms"`
}
