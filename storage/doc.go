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

// Package storage provides the persistence abstraction for built index
// artifacts.
//
// Only derived data is stored: the review metadata table, the venues it
// references, the serialized ANN index, and the manifest describing them.
// The source dataset itself is never written.
//
// # Versions
//
// Every build writes its artifacts under a fresh version id. A version is
// invisible to readers until ArtifactStore.Activate flips the single active
// pointer, which happens in one transaction. The previously active version is
// removed afterwards. A build that fails before activation leaves the active
// version untouched and its staged artifacts are discarded.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return storage interfaces:
//
//	store, err := badger.OpenArtifactStore(path) // returns storage.ArtifactStore
//
// Lower-level constructors (NewArtifactRepository, OpenBackend) return
// concrete types for callers that need to share a backend.
//
// # Usage
//
// Tests use an in-memory store:
//
//	repo, err := badger.NewMemoryArtifactStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
