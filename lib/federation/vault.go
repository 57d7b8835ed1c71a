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

package federation

import (
	"github.com/quayside/stevedore/lib/constants"
	"github.com/quayside/stevedore/lib/defaults"

	"github.com/gravitational/trace"
	vapi "github.com/hashicorp/vault/api"
	"github.com/sirupsen/logrus"
)

// workloadPolicy is the access policy attached to workload identity tokens
const workloadPolicy = `path "secret/data/workloads/{{identity.entity.aliases.auth_jwt_nomad.metadata.nomad_namespace}}/*" {
  capabilities = ["read"]
}
`

// VaultSysAPI is the subset of the secrets manager system API used by this
// package
type VaultSysAPI interface {
	// ListAuth returns the enabled auth methods keyed by mount path
	ListAuth() (map[string]*vapi.AuthMount, error)
	// EnableAuthWithOptions enables an auth method at the specified path
	EnableAuthWithOptions(path string, options *vapi.EnableAuthOptions) error
	// GetPolicy returns the named policy document, empty when absent
	GetPolicy(name string) (string, error)
	// PutPolicy installs the named policy document
	PutPolicy(name, rules string) error
}

// VaultLogicalAPI is the subset of the secrets manager logical API used by
// this package
type VaultLogicalAPI interface {
	// Read returns the secret at the specified path, nil when absent
	Read(path string) (*vapi.Secret, error)
	// Write updates the secret at the specified path
	Write(path string, data map[string]interface{}) (*vapi.Secret, error)
}

// VaultConfig is the secrets manager configurator configuration
type VaultConfig struct {
	// Address is the secrets manager address
	Address string
	// Token is the token used to authenticate
	Token string
	// Mount is the path the workload identity auth method is mounted under
	Mount string
	// Role is the name of the workload identity role
	Role string
	// Policy is the name of the workload access policy
	Policy string
	// JWKSURL is the orchestrator's JWKS endpoint
	JWKSURL string
	// CACert is the PEM-encoded CA certificate of the JWKS endpoint
	CACert []byte
	// FieldLogger is used for logging
	logrus.FieldLogger
	// Sys is optional system API client
	Sys VaultSysAPI
	// Logical is optional logical API client
	Logical VaultLogicalAPI
}

// CheckAndSetDefaults validates config and sets defaults
func (c *VaultConfig) CheckAndSetDefaults() error {
	if len(c.CACert) == 0 {
		return trace.BadParameter("missing parameter CACert")
	}
	if c.Address == "" {
		c.Address = defaults.VaultAddr
	}
	if c.Mount == "" {
		c.Mount = defaults.VaultAuthMount
	}
	if c.Role == "" {
		c.Role = defaults.AuthMethodName
	}
	if c.Policy == "" {
		c.Policy = defaults.AuthMethodName
	}
	if c.JWKSURL == "" {
		c.JWKSURL = defaults.NomadAddr + defaults.JWKSPath
	}
	if c.FieldLogger == nil {
		c.FieldLogger = logrus.WithField(trace.Component, constants.ComponentFederation)
	}
	if c.Sys == nil || c.Logical == nil {
		config := vapi.DefaultConfig()
		config.Address = c.Address
		client, err := vapi.NewClient(config)
		if err != nil {
			return trace.Wrap(err)
		}
		client.SetToken(c.Token)
		c.Sys = client.Sys()
		c.Logical = client.Logical()
	}
	return nil
}

// vaultConfigurator registers the orchestrator as an identity issuer with
// the secrets manager
type vaultConfigurator struct {
	// VaultConfig is the configurator configuration
	VaultConfig
}

// NewVault returns a secrets manager federation configurator
func NewVault(config VaultConfig) (Configurator, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &vaultConfigurator{VaultConfig: config}, nil
}

// Name returns the name of the trust system
func (c *vaultConfigurator) Name() string { return "vault" }

// Configure enables the workload identity auth method and installs its
// configuration, role and policy, creating only the pieces that do not
// exist yet
func (c *vaultConfigurator) Configure() error {
	if err := c.ensureAuthMount(); err != nil {
		return trace.Wrap(err)
	}
	if err := c.ensureAuthConfig(); err != nil {
		return trace.Wrap(err)
	}
	if err := c.ensureRole(); err != nil {
		return trace.Wrap(err)
	}
	if err := c.ensurePolicy(); err != nil {
		return trace.Wrap(err)
	}
	return nil
}

func (c *vaultConfigurator) ensureAuthMount() error {
	mounts, err := c.Sys.ListAuth()
	if err != nil {
		return trace.Wrap(err)
	}
	if _, ok := mounts[c.Mount+"/"]; ok {
		c.Debugf("Auth method %q already enabled.", c.Mount)
		return nil
	}
	err = c.Sys.EnableAuthWithOptions(c.Mount, &vapi.EnableAuthOptions{
		Type:        "jwt",
		Description: "Workload identities issued by the cluster orchestrator",
	})
	if err != nil {
		return trace.Wrap(err)
	}
	c.Infof("Enabled auth method %q.", c.Mount)
	return nil
}

func (c *vaultConfigurator) ensureAuthConfig() error {
	path := "auth/" + c.Mount + "/config"
	secret, err := c.Logical.Read(path)
	if err != nil {
		return trace.Wrap(err)
	}
	if secret != nil && len(secret.Data) != 0 {
		c.Debugf("Auth method %q already configured.", c.Mount)
		return nil
	}
	_, err = c.Logical.Write(path, map[string]interface{}{
		"jwks_url":           c.JWKSURL,
		"jwks_ca_pem":        string(c.CACert),
		"jwt_supported_algs": []string{"RS256", "EdDSA"},
		"default_role":       c.Role,
	})
	if err != nil {
		return trace.Wrap(err)
	}
	c.Infof("Configured auth method %q.", c.Mount)
	return nil
}

func (c *vaultConfigurator) ensureRole() error {
	path := "auth/" + c.Mount + "/role/" + c.Role
	secret, err := c.Logical.Read(path)
	if err != nil {
		return trace.Wrap(err)
	}
	if secret != nil && len(secret.Data) != 0 {
		c.Debugf("Role %q already registered.", c.Role)
		return nil
	}
	_, err = c.Logical.Write(path, map[string]interface{}{
		"role_type":               "jwt",
		"bound_audiences":         []string{"vault.io"},
		"user_claim":              "/nomad_job_id",
		"user_claim_json_pointer": true,
		"claim_mappings":          claimMappings,
		"token_type":              "service",
		"token_policies":          []string{c.Policy},
		"token_period":            "30m",
		"token_explicit_max_ttl":  0,
	})
	if err != nil {
		return trace.Wrap(err)
	}
	c.Infof("Registered role %q.", c.Role)
	return nil
}

func (c *vaultConfigurator) ensurePolicy() error {
	policy, err := c.Sys.GetPolicy(c.Policy)
	if err != nil {
		return trace.Wrap(err)
	}
	if policy != "" {
		c.Debugf("Policy %q already installed.", c.Policy)
		return nil
	}
	if err := c.Sys.PutPolicy(c.Policy, workloadPolicy); err != nil {
		return trace.Wrap(err)
	}
	c.Infof("Installed policy %q.", c.Policy)
	return nil
}
