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

// Package defaults contains default values for configurable parameters
package defaults

import "time"

const (
	// NomadAddr is the address of the local orchestrator agent HTTPS API
	NomadAddr = "https://127.0.0.1:4646"

	// NomadRegion is the default orchestrator region
	NomadRegion = "global"

	// NomadCACert is the path to the CA certificate the agent API
	// certificate is signed with
	NomadCACert = "/etc/nomad.d/tls/ca.pem"

	// NomadClientCert is the path to the client certificate presented to
	// the agent API
	NomadClientCert = "/etc/nomad.d/tls/server.pem"

	// NomadClientKey is the path to the private key for NomadClientCert
	NomadClientKey = "/etc/nomad.d/tls/server-key.pem"

	// NomadConfigPath is the path the rendered agent configuration is
	// written to
	NomadConfigPath = "/etc/nomad.d/nomad.hcl"

	// NomadDataDir is the agent data directory
	NomadDataDir = "/opt/nomad/data"

	// KeystoreDir is the directory the orchestrator keeps its variable
	// encryption keys in
	KeystoreDir = "/opt/nomad/data/server/keyring"

	// KeystoreArchive is the well-known secret store key of the keystore
	// backup archive
	KeystoreArchive = "keyring.tar.gz"

	// OperatorTokenSecret is the secret store key of the management token
	// submitted to the ACL bootstrap endpoint
	OperatorTokenSecret = "operator-token"

	// SecretsRole is the default instance role component of secret store keys
	SecretsRole = "server"

	// ConsulTokenSecret is the secret store key of the service mesh
	// management token
	ConsulTokenSecret = "consul-token"

	// VaultTokenSecret is the secret store key of the secrets manager token
	VaultTokenSecret = "vault-token"

	// ManifestPath is the path of the bootstrap manifest
	ManifestPath = "/etc/stevedore/manifest.yaml"

	// SnapshotPrefix is the secret store key prefix of raft snapshots
	SnapshotPrefix = "snapshots"

	// SnapshotSchedule is the default snapshot agent schedule
	SnapshotSchedule = "@hourly"

	// MinPeers is the minimum number of raft peers required before the
	// cluster is considered alive
	MinPeers = 2

	// PeersWaitTimeout is the maximum time to wait for the peer quorum gate
	PeersWaitTimeout = 5 * time.Minute

	// ConsulAddr is the address of the local service mesh agent
	ConsulAddr = "https://127.0.0.1:8501"

	// VaultAddr is the address of the secrets manager
	VaultAddr = "https://vault.service.consul:8200"

	// AuthMethodName is the name of the workload identity auth method
	// registered with both trust systems
	AuthMethodName = "nomad-workloads"

	// VaultAuthMount is the path the workload identity auth method is
	// mounted under in the secrets manager
	VaultAuthMount = "jwt-nomad"

	// JWKSPath is the path of the orchestrator's JWKS endpoint
	JWKSPath = "/.well-known/jwks.json"

	// SystemUnitDir is the directory systemd units are installed to
	SystemUnitDir = "/etc/systemd/system"

	// PrivateDirMask is the permission mask for owner-only directories
	PrivateDirMask = 0700

	// PrivateFileMask is the permission mask for owner-only files
	PrivateFileMask = 0600

	// SharedReadMask is the permission mask for world-readable files
	SharedReadMask = 0644

	// SharedDirMask is the permission mask for world-readable directories
	SharedDirMask = 0755
)

// BootstrapPolicies lists the ACL policies applied by default when no
// manifest overrides them
var BootstrapPolicies = []string{"operator", "anonymous"}
