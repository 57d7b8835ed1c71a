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
	"gopkg.in/alecthomas/kingpin.v2"
)

// Application represents the command-line "stevedore" application and
// contains definitions of all its flags, arguments and subcommands
type Application struct {
	*kingpin.Application
	// Debug allows to run the command in debug mode
	Debug *bool
	// VersionCmd outputs the binary version
	VersionCmd VersionCmd
	// BootstrapCmd runs the leader-gated cluster bootstrap sequence
	BootstrapCmd BootstrapCmd
	// SnapshotCmd runs the cluster state backup agent
	SnapshotCmd SnapshotCmd
	// ProvisionCmd combines instance provisioning commands
	ProvisionCmd ProvisionCmd
	// ProvisionRenderCmd renders the orchestrator agent configuration
	ProvisionRenderCmd ProvisionRenderCmd
	// ProvisionServiceCmd installs the bootstrap systemd units
	ProvisionServiceCmd ProvisionServiceCmd
}

// VersionCmd outputs the binary version
type VersionCmd struct {
	*kingpin.CmdClause
}

// BootstrapCmd runs the leader-gated cluster bootstrap sequence
type BootstrapCmd struct {
	*kingpin.CmdClause
	// Bucket is the name of the cluster secrets bucket
	Bucket *string
	// Region is the AWS region the instance runs in
	Region *string
	// AdvertiseAddr is the address the local agent advertises to its peers
	AdvertiseAddr *string
	// TokenSecret is the secret store key of the management token
	TokenSecret *string
	// Manifest is the path to the bootstrap manifest
	Manifest *string
	// NomadAddr is the local agent API address
	NomadAddr *string
	// ConsulAddr is the service mesh API address
	ConsulAddr *string
	// VaultAddr is the secrets manager API address
	VaultAddr *string
	// JWKSURL is the orchestrator's JWKS endpoint advertised to the
	// federated trust systems
	JWKSURL *string
	// WaitPeers makes the command wait for the raft peer quorum before
	// probing for leadership
	WaitPeers *bool
}

// SnapshotCmd runs the cluster state backup agent
type SnapshotCmd struct {
	*kingpin.CmdClause
	// Bucket is the name of the cluster secrets bucket
	Bucket *string
	// Region is the AWS region the instance runs in
	Region *string
	// NomadAddr is the local agent API address
	NomadAddr *string
	// TokenSecret is the secret store key of the management token
	TokenSecret *string
	// Schedule is the cron schedule of the periodic run
	Schedule *string
	// Once takes a single snapshot and exits
	Once *bool
}

// ProvisionCmd combines instance provisioning commands
type ProvisionCmd struct {
	*kingpin.CmdClause
}

// ProvisionRenderCmd renders the orchestrator agent configuration
type ProvisionRenderCmd struct {
	*kingpin.CmdClause
	// Output is the path the configuration is written to, "-" for stdout
	Output *string
	// Datacenter is the name of the datacenter the agent joins
	Datacenter *string
	// AdvertiseAddr overrides the instance metadata private IP
	AdvertiseAddr *string
	// BootstrapExpect is the number of servers expected for raft quorum
	BootstrapExpect *int
}

// ProvisionServiceCmd installs the bootstrap systemd units
type ProvisionServiceCmd struct {
	*kingpin.CmdClause
	// Bucket is the name of the cluster secrets bucket
	Bucket *string
	// BinPath is the path to the stevedore binary the units invoke
	BinPath *string
	// Uninstall removes the units instead of installing them
	Uninstall *bool
}
