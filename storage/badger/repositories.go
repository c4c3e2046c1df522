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

package badger

// Repositories groups the repositories sharing one backend.
type Repositories struct {
	Backend     *Backend
	Graphs      *GraphRepository
	Features    *FeatureRepository
	Checkpoints *CheckpointRepository
}

// Close closes the repositories and then the backend.
func (r *Repositories) Close() error {
	r.Graphs.Close()
	r.Features.Close()
	return r.Backend.Close()
}

// OpenRepositories opens a backend at path and builds every repository on it.
func OpenRepositories(path string, inMemory bool) (*Repositories, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}

	graphs, err := NewGraphRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	features, err := NewFeatureRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Repositories{
		Backend:     backend,
		Graphs:      graphs,
		Features:    features,
		Checkpoints: NewCheckpointRepository(backend),
	}, nil
}

// NewMemoryRepositories creates in-memory repositories for testing.
// Caller must Close the result when done.
func NewMemoryRepositories() (*Repositories, error) {
	return OpenRepositories("", true)
}
