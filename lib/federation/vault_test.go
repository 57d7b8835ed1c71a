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

package federation

import (
	vapi "github.com/hashicorp/vault/api"
	"gopkg.in/check.v1"
)

type VaultSuite struct{}

var _ = check.Suite(&VaultSuite{})

// mockVault is a fake secrets manager covering the system and logical APIs
type mockVault struct {
	mounts    map[string]*vapi.AuthMount
	policies  map[string]string
	secrets   map[string]map[string]interface{}
	creations int
}

func newMockVault() *mockVault {
	return &mockVault{
		mounts:   make(map[string]*vapi.AuthMount),
		policies: make(map[string]string),
		secrets:  make(map[string]map[string]interface{}),
	}
}

func (m *mockVault) ListAuth() (map[string]*vapi.AuthMount, error) {
	return m.mounts, nil
}

func (m *mockVault) EnableAuthWithOptions(path string, options *vapi.EnableAuthOptions) error {
	m.mounts[path+"/"] = &vapi.AuthMount{Type: options.Type}
	m.creations++
	return nil
}

func (m *mockVault) GetPolicy(name string) (string, error) {
	return m.policies[name], nil
}

func (m *mockVault) PutPolicy(name, rules string) error {
	m.policies[name] = rules
	m.creations++
	return nil
}

func (m *mockVault) Read(path string) (*vapi.Secret, error) {
	data, ok := m.secrets[path]
	if !ok {
		return nil, nil
	}
	return &vapi.Secret{Data: data}, nil
}

func (m *mockVault) Write(path string, data map[string]interface{}) (*vapi.Secret, error) {
	m.secrets[path] = data
	m.creations++
	return nil, nil
}

func (s *VaultSuite) TestConfigure(c *check.C) {
	vault := newMockVault()
	configurator, err := NewVault(VaultConfig{
		CACert:  testCACert,
		Sys:     vault,
		Logical: vault,
	})
	c.Assert(err, check.IsNil)

	c.Assert(configurator.Configure(), check.IsNil)
	// auth mount, auth config, role, policy
	c.Assert(vault.creations, check.Equals, 4)

	config := vault.secrets["auth/jwt-nomad/config"]
	c.Assert(config, check.NotNil)
	c.Assert(config["jwks_ca_pem"], check.Equals, string(testCACert))
	c.Assert(vault.policies["nomad-workloads"], check.Not(check.Equals), "")
}

// Re-running the configure sequence on an already-configured system must
// produce zero additional creations
func (s *VaultSuite) TestConfigureIsIdempotent(c *check.C) {
	vault := newMockVault()
	configurator, err := NewVault(VaultConfig{
		CACert:  testCACert,
		Sys:     vault,
		Logical: vault,
	})
	c.Assert(err, check.IsNil)

	c.Assert(configurator.Configure(), check.IsNil)
	c.Assert(configurator.Configure(), check.IsNil)
	c.Assert(vault.creations, check.Equals, 4)
}

// A partially completed prior run is resumable: only the missing pieces
// are created
func (s *VaultSuite) TestConfigureResumesPartialState(c *check.C) {
	vault := newMockVault()
	vault.mounts["jwt-nomad/"] = &vapi.AuthMount{Type: "jwt"}
	vault.secrets["auth/jwt-nomad/config"] = map[string]interface{}{"jwks_url": "https://example.com"}

	configurator, err := NewVault(VaultConfig{
		CACert:  testCACert,
		Sys:     vault,
		Logical: vault,
	})
	c.Assert(err, check.IsNil)

	c.Assert(configurator.Configure(), check.IsNil)
	// role and policy only
	c.Assert(vault.creations, check.Equals, 2)
}
