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

// Package constants defines global constants shared between stevedore packages
package constants

const (
	// ComponentCLI is the logging component of the command-line tool
	ComponentCLI = "cli"
	// ComponentBootstrap is the logging component of the bootstrap gate
	ComponentBootstrap = "bootstrap"
	// ComponentSecrets is the logging component of the secret store
	ComponentSecrets = "secrets"
	// ComponentNomad is the logging component of the orchestrator client
	ComponentNomad = "nomad"
	// ComponentKeystore is the logging component of the keystore restorer
	ComponentKeystore = "keystore"
	// ComponentFederation is the logging component of the federation configurator
	ComponentFederation = "federation"
	// ComponentSnapshot is the logging component of the snapshot agent
	ComponentSnapshot = "snapshot"
	// ComponentSystemd is the logging component of the service manager
	ComponentSystemd = "systemd"
	// ComponentProvision is the logging component of the config renderer
	ComponentProvision = "provision"

	// EnvSecretsBucket is the environment variable with the name of the
	// S3 bucket the cluster secrets are stored in
	EnvSecretsBucket = "STEVEDORE_SECRETS_BUCKET"
	// EnvAdvertiseAddr is the environment variable with the address the
	// local orchestrator agent advertises to its peers
	EnvAdvertiseAddr = "NOMAD_ADVERTISE_ADDR"
	// EnvAWSRegion is the environment variable with the AWS region the
	// instance runs in
	EnvAWSRegion = "AWS_REGION"

	// ServiceNomad is the name of the orchestrator systemd unit
	ServiceNomad = "nomad.service"
	// ServiceBootstrap is the name of the oneshot bootstrap systemd unit
	ServiceBootstrap = "stevedore-bootstrap.service"
	// ServiceSnapshot is the name of the snapshot agent systemd unit
	ServiceSnapshot = "stevedore-snapshot.service"
)
