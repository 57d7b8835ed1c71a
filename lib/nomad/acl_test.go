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
	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

type ACLSuite struct{}

var _ = check.Suite(&ACLSuite{})

func (s *ACLSuite) TestBootstrapClassification(c *check.C) {
	acl := newMockACL(false)
	client, err := newTestClient(&mockStatus{}, acl, nil)
	c.Assert(err, check.IsNil)

	c.Assert(client.Bootstrapped(), check.Equals, false)

	err = client.Bootstrap("s.token")
	c.Assert(err, check.IsNil)
	c.Assert(client.Bootstrapped(), check.Equals, true)
}

// The second bootstrap call observes the compare-and-swap loss as
// AlreadyExists rather than a generic error
func (s *ACLSuite) TestBootstrapRace(c *check.C) {
	acl := newMockACL(false)
	client, err := newTestClient(&mockStatus{}, acl, nil)
	c.Assert(err, check.IsNil)

	c.Assert(client.Bootstrap("s.token"), check.IsNil)

	err = client.Bootstrap("s.token")
	c.Assert(err, check.NotNil)
	c.Assert(trace.IsAlreadyExists(err), check.Equals, true)
	c.Assert(acl.bootstraps, check.Equals, 2)
}

func (s *ACLSuite) TestPolicyExists(c *check.C) {
	acl := newMockACL(true)
	client, err := newTestClient(&mockStatus{}, acl, nil)
	c.Assert(err, check.IsNil)

	exists, err := client.PolicyExists("operator")
	c.Assert(err, check.IsNil)
	c.Assert(exists, check.Equals, false)

	err = client.UpsertPolicy("operator", "operator policy", `namespace "*" {}`)
	c.Assert(err, check.IsNil)

	exists, err = client.PolicyExists("operator")
	c.Assert(err, check.IsNil)
	c.Assert(exists, check.Equals, true)
}
