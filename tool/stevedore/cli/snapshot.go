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

package cli

import (
	"context"

	"github.com/quayside/stevedore/lib/keystore"
	"github.com/quayside/stevedore/lib/nomad"
	"github.com/quayside/stevedore/lib/secrets"
	"github.com/quayside/stevedore/lib/snapshot"

	"github.com/gravitational/trace"
)

type snapshotParams struct {
	bucket      string
	region      string
	nomadAddr   string
	tokenSecret string
	schedule    string
	once        bool
}

// runSnapshot wires up the snapshot agent and runs it either once or on
// the configured schedule
func runSnapshot(ctx context.Context, p snapshotParams) error {
	region, err := resolveRegion(p.region)
	if err != nil {
		return trace.Wrap(err)
	}
	store, err := secrets.New(secrets.Config{
		Bucket: p.bucket,
		Region: region,
	})
	if err != nil {
		return trace.Wrap(err)
	}
	client, err := nomad.New(nomad.Config{Address: p.nomadAddr})
	if err != nil {
		return trace.Wrap(err)
	}
	token, err := secrets.GetString(store, p.tokenSecret)
	if err != nil {
		return trace.Wrap(err)
	}
	client.SetToken(token)
	backuper, err := keystore.New(keystore.Config{Secrets: store})
	if err != nil {
		return trace.Wrap(err)
	}
	agent, err := snapshot.New(snapshot.Config{
		Orchestrator: client,
		Keystore:     backuper,
		Secrets:      store,
		Schedule:     p.schedule,
	})
	if err != nil {
		return trace.Wrap(err)
	}
	if p.once {
		return trace.Wrap(agent.RunOnce(ctx))
	}
	return trace.Wrap(agent.Run(ctx))
}
