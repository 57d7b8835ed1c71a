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
	"io"

	"github.com/quayside/stevedore/lib/utils"

	"github.com/gravitational/trace"
	api "github.com/hashicorp/nomad/api"
)

// Bootstrapped determines whether the cluster ACL system has already been
// bootstrapped. The policy listing is only serviceable post-bootstrap so a
// failed query classifies the cluster as not yet bootstrapped.
func (c *Client) Bootstrapped() bool {
	_, _, err := c.Policies.List(nil)
	if err != nil {
		c.WithError(err).Debug("ACL query failed, cluster is not bootstrapped.")
		return false
	}
	return true
}

// Bootstrap submits the provided management token to the one-time cluster
// bootstrap endpoint.
//
// The endpoint is the cluster-wide compare-and-swap: exactly one caller
// ever succeeds. A concurrent loser receives trace.AlreadyExists which
// callers treat as a benign terminal state, not an error.
func (c *Client) Bootstrap(token string) error {
	_, _, err := c.Tokens.BootstrapOpts(token, nil)
	if err != nil {
		return trace.Wrap(utils.ConvertNomadError(err))
	}
	c.Info("Cluster ACL bootstrap complete.")
	return nil
}

// PolicyExists determines whether the named ACL policy is registered with
// the cluster
func (c *Client) PolicyExists(name string) (bool, error) {
	_, _, err := c.Policies.Info(name, nil)
	if err != nil {
		err = utils.ConvertNomadError(err)
		if trace.IsNotFound(err) {
			return false, nil
		}
		return false, trace.Wrap(err)
	}
	return true, nil
}

// UpsertPolicy registers the named ACL policy with the cluster
func (c *Client) UpsertPolicy(name, description, rules string) error {
	_, err := c.Policies.Upsert(&api.ACLPolicy{
		Name:        name,
		Description: description,
		Rules:       rules,
	}, nil)
	if err != nil {
		return trace.Wrap(utils.ConvertNomadError(err))
	}
	c.Infof("Applied ACL policy %q.", name)
	return nil
}

// Snapshot returns a stream with a point-in-time snapshot of the cluster
// raft state. The caller is responsible for closing the stream.
func (c *Client) Snapshot() (io.ReadCloser, error) {
	snapshot, err := c.Operator.Snapshot(nil)
	if err != nil {
		return nil, trace.Wrap(utils.ConvertNomadError(err))
	}
	return snapshot, nil
}
