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
	"fmt"
	"os"

	"github.com/quayside/stevedore/lib/constants"
	"github.com/quayside/stevedore/lib/provision"
	"github.com/quayside/stevedore/lib/systemservice"

	"github.com/gravitational/trace"
)

type renderParams struct {
	output          string
	datacenter      string
	advertiseAddr   string
	bootstrapExpect int
}

// renderConfig renders the orchestrator agent configuration, filling in
// the blanks from instance metadata
func renderConfig(p renderParams) error {
	data := provision.TemplateData{
		Datacenter:      p.datacenter,
		AdvertiseAddr:   p.advertiseAddr,
		BootstrapExpect: p.bootstrapExpect,
	}
	if data.AdvertiseAddr == "" || data.Datacenter == "" {
		metadata, err := provision.NewLocalMetadata()
		if err != nil {
			return trace.Wrap(err)
		}
		instance, err := provision.DiscoverInstance(metadata)
		if err != nil {
			return trace.Wrap(err)
		}
		if data.AdvertiseAddr == "" {
			data.AdvertiseAddr = instance.PrivateIP
		}
		if data.Datacenter == "" {
			data.Datacenter = instance.Region
		}
	}
	if p.output == "-" {
		return trace.Wrap(provision.Render(os.Stdout, data))
	}
	if err := provision.WriteConfig(p.output, data); err != nil {
		return trace.Wrap(err)
	}
	log.Infof("Agent configuration written to %v.", p.output)
	return nil
}

type serviceParams struct {
	bucket    string
	binPath   string
	uninstall bool
}

// installServices installs (or removes) the oneshot bootstrap unit and
// the snapshot agent unit
func installServices(ctx context.Context, p serviceParams) error {
	services, err := systemservice.New()
	if err != nil {
		return trace.Wrap(err)
	}
	if p.uninstall {
		for _, name := range []string{constants.ServiceBootstrap, constants.ServiceSnapshot} {
			if err := services.UninstallService(ctx, name); err != nil {
				return trace.Wrap(err)
			}
		}
		return nil
	}
	err = systemservice.InstallOneshotService(ctx, constants.ServiceBootstrap,
		systemservice.ServiceSpec{
			Dependencies: systemservice.Dependencies{
				Requires: "network-online.target " + constants.ServiceNomad,
				After:    "network-online.target " + constants.ServiceNomad,
			},
			StartCommand: fmt.Sprintf("%v bootstrap", p.binPath),
			Environment: map[string]string{
				constants.EnvSecretsBucket: p.bucket,
			},
		})
	if err != nil {
		return trace.Wrap(err)
	}
	err = services.InstallService(ctx, systemservice.NewServiceRequest{
		ServiceSpec: systemservice.ServiceSpec{
			Dependencies: systemservice.Dependencies{
				After: constants.ServiceNomad,
			},
			StartCommand: fmt.Sprintf("%v snapshot", p.binPath),
			Restart:      "on-failure",
			RestartSec:   10,
			Environment: map[string]string{
				constants.EnvSecretsBucket: p.bucket,
			},
		},
		Name:        constants.ServiceSnapshot,
		Description: "Periodic cluster state backup agent",
		NoBlock:     true,
	})
	return trace.Wrap(err)
}
