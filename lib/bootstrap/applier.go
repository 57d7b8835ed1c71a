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
	"fmt"

	"github.com/quayside/stevedore/lib/secrets"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Applier applies named ACL policies to the orchestrator
type Applier struct {
	// Orchestrator is the orchestrator API client
	Orchestrator Orchestrator
	// Secrets is the cluster secret store the policy documents live in
	Secrets secrets.Store
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// Apply registers the named policy unless it is already registered.
//
// Idempotence is by existence, not content: an already-registered policy
// is left untouched even when the source document has changed, so a
// background re-run can never change cluster behavior unexpectedly.
func (a *Applier) Apply(name string) error {
	exists, err := a.Orchestrator.PolicyExists(name)
	if err != nil {
		return trace.Wrap(err)
	}
	if exists {
		a.Debugf("Policy %q already registered, skipping.", name)
		return nil
	}
	rules, err := a.Secrets.Get(name + ".hcl")
	if err != nil {
		return trace.Wrap(err)
	}
	err = a.Orchestrator.UpsertPolicy(name, fmt.Sprintf("%v policy", name), string(rules))
	return trace.Wrap(err)
}
