/*
Copyright 2021 Quayside Labs

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package testutils

import (
	"io"
	"io/ioutil"
	"sync"

	"github.com/gravitational/trace"
)

// MemStore is an in-memory secret store for tests
type MemStore struct {
	mu sync.Mutex
	// Secrets is the stored secrets keyed by logical name
	Secrets map[string][]byte
	// Gets is the number of Get/Download calls served
	Gets int
	// Puts is the number of Put calls served
	Puts int
}

// NewMemStore returns a new in-memory secret store seeded with the
// provided secrets
func NewMemStore(secrets map[string][]byte) *MemStore {
	if secrets == nil {
		secrets = make(map[string][]byte)
	}
	return &MemStore{Secrets: secrets}
}

// Get returns the contents of the named secret
func (m *MemStore) Get(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	secret, ok := m.Secrets[name]
	if !ok {
		return nil, trace.NotFound("secret %v not found", name)
	}
	return secret, nil
}

// Download streams the named secret into the provided writer
func (m *MemStore) Download(w io.WriterAt, name string) error {
	secret, err := m.Get(name)
	if err != nil {
		return trace.Wrap(err)
	}
	_, err = w.WriteAt(secret, 0)
	return trace.Wrap(err)
}

// Put uploads the named secret from the provided reader
func (m *MemStore) Put(name string, r io.Reader) error {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return trace.Wrap(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Puts++
	m.Secrets[name] = data
	return nil
}
