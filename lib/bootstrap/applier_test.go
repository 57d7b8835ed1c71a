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

package bootstrap

import (
	"github.com/quayside/stevedore/lib/nomad"
	"github.com/quayside/stevedore/lib/testutils"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
	"gopkg.in/check.v1"
)

type ApplierSuite struct{}

var _ = check.Suite(&ApplierSuite{})

func (s *ApplierSuite) TestAppliesMissingPolicy(c *check.C) {
	orchestrator := newMockOrchestrator(nomad.StatusLeader, true)
	applier := &Applier{
		Orchestrator: orchestrator,
		Secrets:      newTestStore(),
		FieldLogger:  logrus.StandardLogger(),
	}

	c.Assert(applier.Apply("operator"), check.IsNil)
	c.Assert(orchestrator.upserts, check.Equals, 1)
	c.Assert(orchestrator.policies["operator"], check.Equals,
		`namespace "*" { policy = "write" }`)
}

// Applying the same policy twice results in exactly one creation call
func (s *ApplierSuite) TestApplyIsIdempotent(c *check.C) {
	orchestrator := newMockOrchestrator(nomad.StatusLeader, true)
	store := newTestStore()
	applier := &Applier{
		Orchestrator: orchestrator,
		Secrets:      store,
		FieldLogger:  logrus.StandardLogger(),
	}

	c.Assert(applier.Apply("operator"), check.IsNil)
	c.Assert(applier.Apply("operator"), check.IsNil)
	c.Assert(orchestrator.upserts, check.Equals, 1)
}

// An existing policy is left untouched even when the source document
// has changed
func (s *ApplierSuite) TestDoesNotOverwriteExistingPolicy(c *check.C) {
	orchestrator := newMockOrchestrator(nomad.StatusLeader, true)
	orchestrator.policies["operator"] = "original rules"
	applier := &Applier{
		Orchestrator: orchestrator,
		Secrets:      newTestStore(),
		FieldLogger:  logrus.StandardLogger(),
	}

	c.Assert(applier.Apply("operator"), check.IsNil)
	c.Assert(orchestrator.upserts, check.Equals, 0)
	c.Assert(orchestrator.policies["operator"], check.Equals, "original rules")
}

func (s *ApplierSuite) TestMissingPolicyDocumentIsAnError(c *check.C) {
	orchestrator := newMockOrchestrator(nomad.StatusLeader, true)
	applier := &Applier{
		Orchestrator: orchestrator,
		Secrets:      testutils.NewMemStore(nil),
		FieldLogger:  logrus.StandardLogger(),
	}

	err := applier.Apply("operator")
	c.Assert(err, check.NotNil)
	c.Assert(trace.IsNotFound(err), check.Equals, true)
	c.Assert(orchestrator.upserts, check.Equals, 0)
}
