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

	api "github.com/hashicorp/nomad/api"
)

// StatusAPI is the subset of the agent status API used by this package
type StatusAPI interface {
	// Leader returns the address of the current cluster leader
	Leader() (string, error)
	// Peers returns the addresses of the current raft peers
	Peers() ([]string, error)
}

// ACLPoliciesAPI is the subset of the ACL policies API used by this package
type ACLPoliciesAPI interface {
	// List returns the policies registered with the cluster
	List(q *api.QueryOptions) ([]*api.ACLPolicyListStub, *api.QueryMeta, error)
	// Info returns the named policy
	Info(name string, q *api.QueryOptions) (*api.ACLPolicy, *api.QueryMeta, error)
	// Upsert creates or updates the provided policy
	Upsert(policy *api.ACLPolicy, w *api.WriteOptions) (*api.WriteMeta, error)
}

// ACLTokensAPI is the subset of the ACL tokens API used by this package
type ACLTokensAPI interface {
	// BootstrapOpts submits the provided token to the one-time cluster
	// bootstrap endpoint
	BootstrapOpts(token string, w *api.WriteOptions) (*api.ACLToken, *api.WriteMeta, error)
}

// OperatorAPI is the subset of the operator API used by this package
type OperatorAPI interface {
	// Snapshot returns a stream with a point-in-time snapshot of the
	// cluster raft state
	Snapshot(q *api.QueryOptions) (io.ReadCloser, error)
}
