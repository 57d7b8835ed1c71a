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

// Package nomad implements a thin client for the orchestrator agent API.
//
// The client always talks to the local agent over the loopback HTTPS
// endpoint with mutual TLS. It deliberately performs no retries: every
// caller re-derives cluster state from the authoritative remote source on
// each invocation, which is what makes concurrent re-invocation across
// nodes safe.
package nomad

import (
	"github.com/quayside/stevedore/lib/constants"
	"github.com/quayside/stevedore/lib/defaults"

	"github.com/gravitational/trace"
	api "github.com/hashicorp/nomad/api"
	"github.com/sirupsen/logrus"
)

// Config is the orchestrator client configuration
type Config struct {
	// Address is the agent API address
	Address string
	// Region is the orchestrator region
	Region string
	// CACert is the path to the CA certificate the API certificate is
	// signed with
	CACert string
	// ClientCert is the path to the client certificate
	ClientCert string
	// ClientKey is the path to the client certificate key
	ClientKey string
	// FieldLogger is used for logging
	logrus.FieldLogger
	// Status is optional status API client
	Status StatusAPI
	// Policies is optional ACL policies API client
	Policies ACLPoliciesAPI
	// Tokens is optional ACL tokens API client
	Tokens ACLTokensAPI
	// Operator is optional operator API client
	Operator OperatorAPI
}

// CheckAndSetDefaults checks and sets default values
func (c *Config) CheckAndSetDefaults() error {
	if c.Address == "" {
		c.Address = defaults.NomadAddr
	}
	if c.Region == "" {
		c.Region = defaults.NomadRegion
	}
	if c.CACert == "" {
		c.CACert = defaults.NomadCACert
	}
	if c.ClientCert == "" {
		c.ClientCert = defaults.NomadClientCert
	}
	if c.ClientKey == "" {
		c.ClientKey = defaults.NomadClientKey
	}
	if c.FieldLogger == nil {
		c.FieldLogger = logrus.WithField(trace.Component, constants.ComponentNomad)
	}
	return nil
}

// Client provides access to the orchestrator agent API
type Client struct {
	// Config is the client configuration
	Config
	// client is the underlying API client, nil when all API interfaces
	// have been injected
	client *api.Client
}

// New returns a new orchestrator API client
func New(config Config) (*Client, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	c := &Client{Config: config}
	if config.Status != nil && config.Policies != nil &&
		config.Tokens != nil && config.Operator != nil {
		return c, nil
	}
	client, err := api.NewClient(&api.Config{
		Address: config.Address,
		Region:  config.Region,
		TLSConfig: &api.TLSConfig{
			CACert:     config.CACert,
			ClientCert: config.ClientCert,
			ClientKey:  config.ClientKey,
		},
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}
	c.client = client
	if c.Status == nil {
		c.Status = client.Status()
	}
	if c.Policies == nil {
		c.Policies = client.ACLPolicies()
	}
	if c.Tokens == nil {
		c.Tokens = client.ACLTokens()
	}
	if c.Operator == nil {
		c.Operator = client.Operator()
	}
	return c, nil
}

// SetToken sets the ACL token used to authenticate subsequent API calls
func (c *Client) SetToken(token string) {
	if c.client != nil {
		c.client.SetSecretID(token)
	}
}
