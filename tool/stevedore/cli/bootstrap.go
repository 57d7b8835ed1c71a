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

	"github.com/quayside/stevedore/lib/bootstrap"
	"github.com/quayside/stevedore/lib/defaults"
	"github.com/quayside/stevedore/lib/federation"
	"github.com/quayside/stevedore/lib/keystore"
	"github.com/quayside/stevedore/lib/nomad"
	"github.com/quayside/stevedore/lib/provision"
	"github.com/quayside/stevedore/lib/secrets"

	"github.com/gravitational/trace"
)

type bootstrapParams struct {
	bucket        string
	region        string
	advertiseAddr string
	tokenSecret   string
	manifestPath  string
	nomadAddr     string
	consulAddr    string
	vaultAddr     string
	jwksURL       string
	waitPeers     bool
}

// runBootstrap wires up and executes the leader-gated bootstrap sequence.
// A run on a non-leader node is a clean no-op.
func runBootstrap(ctx context.Context, p bootstrapParams) error {
	region, err := resolveRegion(p.region)
	if err != nil {
		return trace.Wrap(err)
	}
	if p.advertiseAddr == "" {
		metadata, err := provision.NewLocalMetadata()
		if err != nil {
			return trace.Wrap(err)
		}
		instance, err := provision.DiscoverInstance(metadata)
		if err != nil {
			return trace.Wrap(err)
		}
		p.advertiseAddr = instance.PrivateIP
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
	if p.waitPeers {
		waitCtx, cancel := context.WithTimeout(ctx, defaults.PeersWaitTimeout)
		defer cancel()
		if err := client.WaitPeers(waitCtx, defaults.MinPeers); err != nil {
			return trace.Wrap(err, "raft peer quorum did not form")
		}
	}
	manifest, err := bootstrap.LoadManifest(p.manifestPath)
	if err != nil {
		return trace.Wrap(err)
	}
	restorer, err := keystore.New(keystore.Config{Secrets: store})
	if err != nil {
		return trace.Wrap(err)
	}
	configurators, err := newConfigurators(p, manifest, store)
	if err != nil {
		return trace.Wrap(err)
	}
	gate, err := bootstrap.New(bootstrap.Config{
		AdvertiseAddr: p.advertiseAddr,
		TokenSecret:   p.tokenSecret,
		Policies:      manifest.Policies,
		Secrets:       store,
		Orchestrator:  client,
		Keystore:      restorer,
		Configurators: configurators,
	})
	if err != nil {
		return trace.Wrap(err)
	}
	result, err := gate.Run(ctx)
	if err != nil {
		return trace.Wrap(err)
	}
	log.Infof("Bootstrap finished: status %v, %v stages completed.",
		result.Status, len(result.Stages))
	return nil
}

// newConfigurators assembles the federation configurators enabled by the
// manifest
func newConfigurators(p bootstrapParams, manifest bootstrap.Manifest, store secrets.Store) ([]federation.Configurator, error) {
	if !manifest.Consul && !manifest.Vault {
		return nil, nil
	}
	cacert, err := federation.ReadCACert(defaults.NomadCACert)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	var configurators []federation.Configurator
	if manifest.Consul {
		token, err := secrets.GetString(store, defaults.ConsulTokenSecret)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		consul, err := federation.NewConsul(federation.ConsulConfig{
			Address: p.consulAddr,
			Token:   token,
			JWKSURL: p.jwksURL,
			CACert:  cacert,
		})
		if err != nil {
			return nil, trace.Wrap(err)
		}
		configurators = append(configurators, consul)
	}
	if manifest.Vault {
		token, err := secrets.GetString(store, defaults.VaultTokenSecret)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		vault, err := federation.NewVault(federation.VaultConfig{
			Address: p.vaultAddr,
			Token:   token,
			JWKSURL: p.jwksURL,
			CACert:  cacert,
		})
		if err != nil {
			return nil, trace.Wrap(err)
		}
		configurators = append(configurators, vault)
	}
	return configurators, nil
}

// resolveRegion returns the provided region, falling back to instance
// metadata discovery when empty
func resolveRegion(region string) (string, error) {
	if region != "" {
		return region, nil
	}
	metadata, err := provision.NewLocalMetadata()
	if err != nil {
		return "", trace.Wrap(err)
	}
	region, err = metadata.Region()
	if err != nil {
		return "", trace.Wrap(err, "failed to discover the instance region, "+
			"specify one with --region")
	}
	return region, nil
}
