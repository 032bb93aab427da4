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

// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements the ai.AIProvider interface using the langchaingo
// library. Any server speaking the OpenAI embeddings and chat completions
// protocol works: Ollama, LocalAI, vLLM, or text-embeddings-inference.
//
// The Embedder L2-normalizes every vector it returns. The SentimentClassifier
// prompts a chat model in JSON mode and maps its labels onto core.Sentiment;
// output that cannot be parsed is an error wrapping core.ErrModel.
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),  // /v1 added automatically
//	    ai.WithEmbeddingModel("bge-m3"),
//	    ai.WithSentimentModel("qwen2.5:7b"),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vecs, err := provider.Encoder().EmbedTexts(ctx, reviews)
//	labels, err := provider.SentimentScorer().ScoreTexts(ctx, reviews)
package openai
