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

package nomad

import (
	"fmt"
	"io"
	"io/ioutil"
	"strings"
	"sync"

	api "github.com/hashicorp/nomad/api"
)

// mockStatus is a fake status API
type mockStatus struct {
	leader    string
	leaderErr error
	peers     []string
}

func (m *mockStatus) Leader() (string, error) {
	if m.leaderErr != nil {
		return "", m.leaderErr
	}
	return m.leader, nil
}

func (m *mockStatus) Peers() ([]string, error) {
	return m.peers, nil
}

// mockACL is a fake ACL API covering both policies and tokens.
// It mimics the orchestrator's bootstrap compare-and-swap: the first
// bootstrap call succeeds, subsequent calls fail with the canonical
// "already done" response.
type mockACL struct {
	mu           sync.Mutex
	bootstrapped bool
	policies     map[string]*api.ACLPolicy
	upserts      int
	bootstraps   int
}

func newMockACL(bootstrapped bool) *mockACL {
	return &mockACL{
		bootstrapped: bootstrapped,
		policies:     make(map[string]*api.ACLPolicy),
	}
}

func (m *mockACL) List(q *api.QueryOptions) ([]*api.ACLPolicyListStub, *api.QueryMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.bootstrapped {
		return nil, nil, fmt.Errorf("Unexpected response code: 403 (Permission denied)")
	}
	var stubs []*api.ACLPolicyListStub
	for _, policy := range m.policies {
		stubs = append(stubs, &api.ACLPolicyListStub{Name: policy.Name})
	}
	return stubs, nil, nil
}

func (m *mockACL) Info(name string, q *api.QueryOptions) (*api.ACLPolicy, *api.QueryMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	policy, ok := m.policies[name]
	if !ok {
		return nil, nil, fmt.Errorf("Unexpected response code: 404 (ACL policy not found)")
	}
	return policy, nil, nil
}

func (m *mockACL) Upsert(policy *api.ACLPolicy, w *api.WriteOptions) (*api.WriteMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[policy.Name] = policy
	m.upserts++
	return nil, nil
}

func (m *mockACL) BootstrapOpts(token string, w *api.WriteOptions) (*api.ACLToken, *api.WriteMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bootstraps++
	if m.bootstrapped {
		return nil, nil, fmt.Errorf("Unexpected response code: 400 (ACL bootstrap already done)")
	}
	m.bootstrapped = true
	return &api.ACLToken{SecretID: token}, nil, nil
}

// mockOperator is a fake operator API
type mockOperator struct {
	snapshot string
}

func (m *mockOperator) Snapshot(q *api.QueryOptions) (io.ReadCloser, error) {
	return ioutil.NopCloser(strings.NewReader(m.snapshot)), nil
}

func newTestClient(status *mockStatus, acl *mockACL, operator *mockOperator) (*Client, error) {
	if operator == nil {
		operator = &mockOperator{}
	}
	return New(Config{
		Status:   status,
		Policies: acl,
		Tokens:   acl,
		Operator: operator,
	})
}
