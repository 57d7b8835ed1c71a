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
	"github.com/quayside/stevedore/lib/constants"
	"github.com/quayside/stevedore/lib/defaults"

	"gopkg.in/alecthomas/kingpin.v2"
)

// RegisterCommands registers all stevedore tool flags, arguments and
// subcommands
func RegisterCommands(app *kingpin.Application) Application {
	stevedore := Application{
		Application: app,
	}

	stevedore.Debug = app.Flag("debug", "Enable debug mode.").Bool()

	stevedore.VersionCmd.CmdClause = app.Command("version", "Print version information and exit.")

	stevedore.BootstrapCmd.CmdClause = app.Command("bootstrap", "Bootstrap the cluster ACL system and apply baseline configuration. A no-op on non-leader nodes.")
	stevedore.BootstrapCmd.Bucket = stevedore.BootstrapCmd.Flag("bucket", "Name of the cluster secrets bucket.").Envar(constants.EnvSecretsBucket).Required().String()
	stevedore.BootstrapCmd.Region = stevedore.BootstrapCmd.Flag("region", "AWS region the instance runs in. Discovered from instance metadata when unset.").Envar(constants.EnvAWSRegion).String()
	stevedore.BootstrapCmd.AdvertiseAddr = stevedore.BootstrapCmd.Flag("advertise-addr", "Address the local agent advertises to its peers. Discovered from instance metadata when unset.").Envar(constants.EnvAdvertiseAddr).String()
	stevedore.BootstrapCmd.TokenSecret = stevedore.BootstrapCmd.Flag("token-secret", "Secret store key of the management token.").Default(defaults.OperatorTokenSecret).String()
	stevedore.BootstrapCmd.Manifest = stevedore.BootstrapCmd.Flag("manifest", "Path to the bootstrap manifest.").Default(defaults.ManifestPath).String()
	stevedore.BootstrapCmd.NomadAddr = stevedore.BootstrapCmd.Flag("nomad-addr", "Local agent API address.").Default(defaults.NomadAddr).String()
	stevedore.BootstrapCmd.ConsulAddr = stevedore.BootstrapCmd.Flag("consul-addr", "Service mesh API address.").Default(defaults.ConsulAddr).String()
	stevedore.BootstrapCmd.VaultAddr = stevedore.BootstrapCmd.Flag("vault-addr", "Secrets manager API address.").Default(defaults.VaultAddr).String()
	stevedore.BootstrapCmd.JWKSURL = stevedore.BootstrapCmd.Flag("jwks-url", "JWKS endpoint advertised to the federated trust systems.").String()
	stevedore.BootstrapCmd.WaitPeers = stevedore.BootstrapCmd.Flag("wait-peers", "Wait for the raft peer quorum before probing for leadership.").Default("true").Bool()

	stevedore.SnapshotCmd.CmdClause = app.Command("snapshot", "Periodically upload cluster state backups to the secrets bucket.")
	stevedore.SnapshotCmd.Bucket = stevedore.SnapshotCmd.Flag("bucket", "Name of the cluster secrets bucket.").Envar(constants.EnvSecretsBucket).Required().String()
	stevedore.SnapshotCmd.Region = stevedore.SnapshotCmd.Flag("region", "AWS region the instance runs in. Discovered from instance metadata when unset.").Envar(constants.EnvAWSRegion).String()
	stevedore.SnapshotCmd.NomadAddr = stevedore.SnapshotCmd.Flag("nomad-addr", "Local agent API address.").Default(defaults.NomadAddr).String()
	stevedore.SnapshotCmd.TokenSecret = stevedore.SnapshotCmd.Flag("token-secret", "Secret store key of the management token.").Default(defaults.OperatorTokenSecret).String()
	stevedore.SnapshotCmd.Schedule = stevedore.SnapshotCmd.Flag("schedule", "Cron schedule of the periodic run.").Default(defaults.SnapshotSchedule).String()
	stevedore.SnapshotCmd.Once = stevedore.SnapshotCmd.Flag("once", "Take a single snapshot and exit.").Bool()

	stevedore.ProvisionCmd.CmdClause = app.Command("provision", "Provision the local instance.")

	stevedore.ProvisionRenderCmd.CmdClause = stevedore.ProvisionCmd.Command("render", "Render the orchestrator agent configuration from instance metadata.")
	stevedore.ProvisionRenderCmd.Output = stevedore.ProvisionRenderCmd.Flag("output", "Path the configuration is written to, \"-\" for stdout.").Short('o').Default(defaults.NomadConfigPath).String()
	stevedore.ProvisionRenderCmd.Datacenter = stevedore.ProvisionRenderCmd.Flag("datacenter", "Name of the datacenter the agent joins. Defaults to the instance region.").String()
	stevedore.ProvisionRenderCmd.AdvertiseAddr = stevedore.ProvisionRenderCmd.Flag("advertise-addr", "Advertise address override. Discovered from instance metadata when unset.").Envar(constants.EnvAdvertiseAddr).String()
	stevedore.ProvisionRenderCmd.BootstrapExpect = stevedore.ProvisionRenderCmd.Flag("bootstrap-expect", "Number of servers expected for raft quorum.").Default("3").Int()

	stevedore.ProvisionServiceCmd.CmdClause = stevedore.ProvisionCmd.Command("service", "Install the bootstrap and snapshot systemd units.")
	stevedore.ProvisionServiceCmd.Bucket = stevedore.ProvisionServiceCmd.Flag("bucket", "Name of the cluster secrets bucket passed to the units.").Envar(constants.EnvSecretsBucket).Required().String()
	stevedore.ProvisionServiceCmd.BinPath = stevedore.ProvisionServiceCmd.Flag("bin-path", "Path to the stevedore binary the units invoke.").Default("/usr/local/bin/stevedore").String()
	stevedore.ProvisionServiceCmd.Uninstall = stevedore.ProvisionServiceCmd.Flag("uninstall", "Remove the units instead of installing them.").Bool()

	return stevedore
}
