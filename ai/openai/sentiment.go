// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/venuefinder/ai"
	"github.com/poiesic/venuefinder/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxTextsPerPrompt bounds how many reviews are classified in one chat call.
const maxTextsPerPrompt = 16

// SentimentClassifier implements ai.SentimentScorer using OpenAI-compatible chat APIs.
type SentimentClassifier struct {
	client   llms.Model
	model    string
	maxRunes int
	logger   *slog.Logger
}

// verdict is an internal type used for JSON unmarshaling.
type verdict struct {
	Index      int     `json:"index"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// verdicts is the wrapper structure for the model's JSON response.
type verdicts struct {
	Results []verdict `json:"results"`
}

// newSentimentClassifier is an internal constructor that returns the concrete type.
func newSentimentClassifier(config *ai.Config) (*SentimentClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.SentimentHost),
		openai.WithToken(config.APIToken),
		openai.WithModel(config.SentimentModel),
	)
	if err != nil {
		return nil, err
	}

	return &SentimentClassifier{
		client:   client,
		model:    config.SentimentModel,
		maxRunes: config.MaxSentimentRunes,
		logger:   slog.Default().With("component", "openai-sentiment"),
	}, nil
}

// NewSentimentClassifier creates a new sentiment classifier using the provided configuration.
//
// Returns ai.SentimentScorer interface to enforce abstraction.
func NewSentimentClassifier(config *ai.Config) (ai.SentimentScorer, error) {
	return newSentimentClassifier(config)
}

// ModelName returns the configured chat model.
func (c *SentimentClassifier) ModelName() string {
	return c.model
}

// Score classifies a single text.
func (c *SentimentClassifier) Score(ctx context.Context, text string) (core.Sentiment, error) {
	out, err := c.ScoreTexts(ctx, []string{text})
	if err != nil {
		return core.Sentiment{}, err
	}
	return out[0], nil
}

// ScoreTexts classifies texts in chunks of maxTextsPerPrompt, preserving order.
// Malformed model output is reported as core.ErrModel and not retried.
func (c *SentimentClassifier) ScoreTexts(ctx context.Context, texts []string) ([]core.Sentiment, error) {
	out := make([]core.Sentiment, 0, len(texts))
	prepared := ai.PrepareTexts(texts, c.maxRunes)

	for start := 0; start < len(prepared); start += maxTextsPerPrompt {
		end := min(start+maxTextsPerPrompt, len(prepared))
		chunk, err := c.classify(ctx, prepared[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func (c *SentimentClassifier) classify(ctx context.Context, texts []string) ([]core.Sentiment, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(buildUserPrompt(texts))},
		},
	}

	response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		c.logger.Error("failed to generate content", "err", err)
		return nil, fmt.Errorf("%w: %s: %w", core.ErrModel, c.model, err)
	}
	if len(response.Choices) < 1 {
		return nil, fmt.Errorf("%w: %s returned no choices", core.ErrModel, c.model)
	}

	result, err := parseVerdicts(response.Choices[0].Content, len(texts))
	if err != nil {
		c.logger.Warn("error parsing classifier response", "response", response.Choices[0].Content, "err", err)
		return nil, err
	}
	return result, nil
}

// parseVerdicts decodes a classifier response and checks that it covers
// exactly n inputs.
func parseVerdicts(raw string, n int) ([]core.Sentiment, error) {
	var parsed verdicts
	if err := json.Unmarshal([]byte(repairJSON(stripCodeFences(raw))), &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed classifier output: %w", core.ErrModel, err)
	}

	out := make([]core.Sentiment, n)
	seen := make([]bool, n)
	for _, v := range parsed.Results {
		if v.Index < 0 || v.Index >= n {
			return nil, fmt.Errorf("%w: classifier index %d out of range", core.ErrModel, v.Index)
		}
		label, ok := core.ParseSentimentLabel(v.Label)
		if !ok {
			return nil, fmt.Errorf("%w: unknown sentiment label %q", core.ErrModel, v.Label)
		}
		conf := v.Confidence
		if conf < 0 {
			conf = 0
		} else if conf > 1 {
			conf = 1
		}
		out[v.Index] = core.Sentiment{Label: label, Confidence: float32(conf)}
		seen[v.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: classifier omitted input %d", core.ErrModel, i)
		}
	}
	return out, nil
}
