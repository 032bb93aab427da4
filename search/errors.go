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

package search

import "errors"

var (
	// ErrEncoderRequired is returned when a text encoder is not provided.
	ErrEncoderRequired = errors.New("text encoder required")

	// ErrScorerRequired is returned when a sentiment scorer is not provided.
	ErrScorerRequired = errors.New("sentiment scorer required")

	// ErrUnknownAggregation is returned for an aggregation name other than
	// max, mean or weighted.
	ErrUnknownAggregation = errors.New("unknown aggregation")
)
