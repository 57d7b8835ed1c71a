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
	"os"
	"os/signal"
	"syscall"

	"github.com/quayside/stevedore/lib/constants"
	"github.com/quayside/stevedore/lib/utils"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField(trace.Component, constants.ComponentCLI)

// Run parses CLI arguments and executes an appropriate stevedore command
func Run(stevedore Application) error {
	log.Debugf("Executing: %v.", os.Args)
	cmd, err := stevedore.Parse(os.Args[1:])
	if err != nil {
		return trace.Wrap(err)
	}

	trace.SetDebug(*stevedore.Debug)
	if *stevedore.Debug {
		utils.InitLogging(logrus.DebugLevel)
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case stevedore.VersionCmd.FullCommand():
		return printVersion()
	case stevedore.BootstrapCmd.FullCommand():
		return runBootstrap(ctx, bootstrapParams{
			bucket:        *stevedore.BootstrapCmd.Bucket,
			region:        *stevedore.BootstrapCmd.Region,
			advertiseAddr: *stevedore.BootstrapCmd.AdvertiseAddr,
			tokenSecret:   *stevedore.BootstrapCmd.TokenSecret,
			manifestPath:  *stevedore.BootstrapCmd.Manifest,
			nomadAddr:     *stevedore.BootstrapCmd.NomadAddr,
			consulAddr:    *stevedore.BootstrapCmd.ConsulAddr,
			vaultAddr:     *stevedore.BootstrapCmd.VaultAddr,
			jwksURL:       *stevedore.BootstrapCmd.JWKSURL,
			waitPeers:     *stevedore.BootstrapCmd.WaitPeers,
		})
	case stevedore.SnapshotCmd.FullCommand():
		return runSnapshot(ctx, snapshotParams{
			bucket:      *stevedore.SnapshotCmd.Bucket,
			region:      *stevedore.SnapshotCmd.Region,
			nomadAddr:   *stevedore.SnapshotCmd.NomadAddr,
			tokenSecret: *stevedore.SnapshotCmd.TokenSecret,
			schedule:    *stevedore.SnapshotCmd.Schedule,
			once:        *stevedore.SnapshotCmd.Once,
		})
	case stevedore.ProvisionRenderCmd.FullCommand():
		return renderConfig(renderParams{
			output:          *stevedore.ProvisionRenderCmd.Output,
			datacenter:      *stevedore.ProvisionRenderCmd.Datacenter,
			advertiseAddr:   *stevedore.ProvisionRenderCmd.AdvertiseAddr,
			bootstrapExpect: *stevedore.ProvisionRenderCmd.BootstrapExpect,
		})
	case stevedore.ProvisionServiceCmd.FullCommand():
		return installServices(ctx, serviceParams{
			bucket:    *stevedore.ProvisionServiceCmd.Bucket,
			binPath:   *stevedore.ProvisionServiceCmd.BinPath,
			uninstall: *stevedore.ProvisionServiceCmd.Uninstall,
		})
	}

	return trace.NotFound("unknown command %v", cmd)
}
