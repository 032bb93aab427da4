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

// Package ai provides abstractions for the models used by venuefinder.
//
// Two model roles exist:
//
//   - TextEncoder: maps review and query text to unit-length vectors
//   - SentimentScorer: labels review text negative, neutral or positive
//
// AIProvider aggregates both for lifecycle management.
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles without external dependencies
//
// Public constructors in ai/openai return interface types. Mock constructors
// return concrete types so tests can inject behavior and inspect call counts.
//
// # Text Preparation
//
// Every model input passes through PrepareText: NFKC normalization,
// whitespace collapsing, and truncation to a fixed rune window. Truncation
// keeps the leading runes; the window is configured per role (Config.MaxEmbeddingRunes,
// Config.MaxSentimentRunes).
//
// # Usage Example
//
//	provider, err := openai.NewProvider(ai.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Encoder().EmbedText(ctx, "уютная кофейня")
//	s, err := provider.SentimentScorer().Score(ctx, "Очень вкусно, рекомендую")
package ai
