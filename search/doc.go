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

// Package search ranks venues for a free-text query.
//
// A search embeds the query, retrieves the nearest reviews from a loaded
// Snapshot, classifies the sentiment of every retrieved review in one batched
// call, and scores each review as its similarity multiplied by a polarity
// factor. Positive reviews are boosted, negative ones penalized, neutral ones
// left alone, in proportion to the classifier's confidence.
//
// Review scores are then grouped by venue and reduced with one Aggregation
// rule, applied uniformly to every venue. Venues are ordered by score, ties
// broken by venue id, and each result carries its strongest evidence.
//
// A SearchMonitor passed to SearchWithMonitor observes every stage.
package search
