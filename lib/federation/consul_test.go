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
	"testing"

	capi "github.com/hashicorp/consul/api"
	"gopkg.in/check.v1"
)

func TestFederation(t *testing.T) { check.TestingT(t) }

type ConsulSuite struct{}

var _ = check.Suite(&ConsulSuite{})

// mockConsulACL is a fake service mesh ACL API that counts creations
type mockConsulACL struct {
	methods   map[string]*capi.ACLAuthMethod
	rules     map[string][]*capi.ACLBindingRule
	creations int
}

func newMockConsulACL() *mockConsulACL {
	return &mockConsulACL{
		methods: make(map[string]*capi.ACLAuthMethod),
		rules:   make(map[string][]*capi.ACLBindingRule),
	}
}

func (m *mockConsulACL) AuthMethodList(q *capi.QueryOptions) ([]*capi.ACLAuthMethodListEntry, *capi.QueryMeta, error) {
	var entries []*capi.ACLAuthMethodListEntry
	for _, method := range m.methods {
		entries = append(entries, &capi.ACLAuthMethodListEntry{Name: method.Name})
	}
	return entries, nil, nil
}

func (m *mockConsulACL) AuthMethodCreate(method *capi.ACLAuthMethod, w *capi.WriteOptions) (*capi.ACLAuthMethod, *capi.WriteMeta, error) {
	m.methods[method.Name] = method
	m.creations++
	return method, nil, nil
}

func (m *mockConsulACL) BindingRuleList(methodName string, q *capi.QueryOptions) ([]*capi.ACLBindingRule, *capi.QueryMeta, error) {
	return m.rules[methodName], nil, nil
}

func (m *mockConsulACL) BindingRuleCreate(rule *capi.ACLBindingRule, w *capi.WriteOptions) (*capi.ACLBindingRule, *capi.WriteMeta, error) {
	m.rules[rule.AuthMethod] = append(m.rules[rule.AuthMethod], rule)
	m.creations++
	return rule, nil, nil
}

var testCACert = []byte(`-----BEGIN CERTIFICATE-----
MIIB...test
-----END CERTIFICATE-----
`)

func (s *ConsulSuite) TestConfigure(c *check.C) {
	acl := newMockConsulACL()
	configurator, err := NewConsul(ConsulConfig{CACert: testCACert, ACL: acl})
	c.Assert(err, check.IsNil)

	c.Assert(configurator.Configure(), check.IsNil)
	c.Assert(acl.creations, check.Equals, 2)

	method := acl.methods["nomad-workloads"]
	c.Assert(method, check.NotNil)
	c.Assert(method.Type, check.Equals, "jwt")
	c.Assert(method.Config["JWKSCACert"], check.Equals, string(testCACert))
	c.Assert(len(acl.rules["nomad-workloads"]), check.Equals, 1)
}

// Re-running the configure sequence on an already-configured system must
// produce zero additional creations
func (s *ConsulSuite) TestConfigureIsIdempotent(c *check.C) {
	acl := newMockConsulACL()
	configurator, err := NewConsul(ConsulConfig{CACert: testCACert, ACL: acl})
	c.Assert(err, check.IsNil)

	c.Assert(configurator.Configure(), check.IsNil)
	c.Assert(configurator.Configure(), check.IsNil)
	c.Assert(acl.creations, check.Equals, 2)
}

// A partially completed prior run is resumable: only the missing pieces
// are created
func (s *ConsulSuite) TestConfigureResumesPartialState(c *check.C) {
	acl := newMockConsulACL()
	acl.methods["nomad-workloads"] = &capi.ACLAuthMethod{Name: "nomad-workloads", Type: "jwt"}

	configurator, err := NewConsul(ConsulConfig{CACert: testCACert, ACL: acl})
	c.Assert(err, check.IsNil)

	c.Assert(configurator.Configure(), check.IsNil)
	c.Assert(acl.creations, check.Equals, 1)
	c.Assert(len(acl.rules["nomad-workloads"]), check.Equals, 1)
}

func (s *ConsulSuite) TestRequiresCACert(c *check.C) {
	_, err := NewConsul(ConsulConfig{ACL: newMockConsulACL()})
	c.Assert(err, check.NotNil)
}
