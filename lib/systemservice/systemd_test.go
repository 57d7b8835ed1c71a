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

package systemservice

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

func TestSystemservice(t *testing.T) { check.TestingT(t) }

type UnitSuite struct{}

var _ = check.Suite(&UnitSuite{})

func (s *UnitSuite) TestRendersUnitFile(c *check.C) {
	req := NewServiceRequest{
		ServiceSpec: ServiceSpec{
			Dependencies: Dependencies{
				After:    "network-online.target nomad.service",
				Requires: "network-online.target",
			},
			StartCommand: "/usr/local/bin/stevedore bootstrap",
			Type:         "oneshot",
			User:         "nomad",
			Environment: map[string]string{
				"STEVEDORE_SECRETS_BUCKET": "cluster-secrets",
			},
			RemainAfterExit: true,
		},
		Name: "stevedore-bootstrap",
	}
	c.Assert(req.CheckAndSetDefaults(), check.IsNil)

	var buf bytes.Buffer
	c.Assert(renderUnit(&buf, req), check.IsNil)
	rendered := buf.String()
	for _, line := range []string{
		"Description=Auto-generated service for stevedore-bootstrap.service",
		"Requires=network-online.target",
		"After=network-online.target nomad.service",
		"Type=oneshot",
		"User=nomad",
		"ExecStart=/usr/local/bin/stevedore bootstrap",
		"RemainAfterExit=yes",
		"Environment=STEVEDORE_SECRETS_BUCKET=cluster-secrets",
		"WantedBy=multi-user.target",
	} {
		c.Assert(strings.Contains(rendered, line), check.Equals, true,
			check.Commentf("missing %q in:\n%v", line, rendered))
	}
	c.Assert(strings.Contains(rendered, "ExecStartPre"), check.Equals, false)
}

func (s *UnitSuite) TestRequestValidation(c *check.C) {
	req := NewServiceRequest{Name: "stevedore-bootstrap"}
	err := req.CheckAndSetDefaults()
	c.Assert(err, check.NotNil)
	c.Assert(trace.IsBadParameter(err), check.Equals, true)

	req = NewServiceRequest{
		ServiceSpec: ServiceSpec{StartCommand: "/bin/true"},
		Name:        "stevedore-snapshot",
	}
	c.Assert(req.CheckAndSetDefaults(), check.IsNil)
	c.Assert(req.Name, check.Equals, "stevedore-snapshot.service")
	c.Assert(req.WantedBy, check.Equals, "multi-user.target")
}

func (s *UnitSuite) TestFullServiceName(c *check.C) {
	c.Assert(FullServiceName("stevedore-bootstrap"), check.Equals,
		"stevedore-bootstrap.service")
	c.Assert(FullServiceName("stevedore-bootstrap.service"), check.Equals,
		"stevedore-bootstrap.service")
}
