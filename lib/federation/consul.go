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
	capi "github.com/hashicorp/consul/api"
	"github.com/sirupsen/logrus"
)

// ConsulACLAPI is the subset of the service mesh ACL API used by this package
type ConsulACLAPI interface {
	// AuthMethodList returns the registered auth methods
	AuthMethodList(q *capi.QueryOptions) ([]*capi.ACLAuthMethodListEntry, *capi.QueryMeta, error)
	// AuthMethodCreate registers the provided auth method
	AuthMethodCreate(method *capi.ACLAuthMethod, w *capi.WriteOptions) (*capi.ACLAuthMethod, *capi.WriteMeta, error)
	// BindingRuleList returns the binding rules of the named auth method
	BindingRuleList(methodName string, q *capi.QueryOptions) ([]*capi.ACLBindingRule, *capi.QueryMeta, error)
	// BindingRuleCreate registers the provided binding rule
	BindingRuleCreate(rule *capi.ACLBindingRule, w *capi.WriteOptions) (*capi.ACLBindingRule, *capi.WriteMeta, error)
}

// ConsulConfig is the service mesh configurator configuration
type ConsulConfig struct {
	// Address is the service mesh agent address
	Address string
	// Token is the ACL token used to authenticate
	Token string
	// AuthMethod is the name of the workload identity auth method
	AuthMethod string
	// JWKSURL is the orchestrator's JWKS endpoint
	JWKSURL string
	// CACert is the PEM-encoded CA certificate of the JWKS endpoint
	CACert []byte
	// FieldLogger is used for logging
	logrus.FieldLogger
	// ACL is optional ACL API client
	ACL ConsulACLAPI
}

// CheckAndSetDefaults validates config and sets defaults
func (c *ConsulConfig) CheckAndSetDefaults() error {
	if len(c.CACert) == 0 {
		return trace.BadParameter("missing parameter CACert")
	}
	if c.Address == "" {
		c.Address = defaults.ConsulAddr
	}
	if c.AuthMethod == "" {
		c.AuthMethod = defaults.AuthMethodName
	}
	if c.JWKSURL == "" {
		c.JWKSURL = defaults.NomadAddr + defaults.JWKSPath
	}
	if c.FieldLogger == nil {
		c.FieldLogger = logrus.WithField(trace.Component, constants.ComponentFederation)
	}
	if c.ACL == nil {
		client, err := capi.NewClient(&capi.Config{
			Address: c.Address,
			Token:   c.Token,
		})
		if err != nil {
			return trace.Wrap(err)
		}
		c.ACL = client.ACL()
	}
	return nil
}

// consulConfigurator registers the orchestrator as an identity issuer with
// the service mesh
type consulConfigurator struct {
	// ConsulConfig is the configurator configuration
	ConsulConfig
}

// NewConsul returns a service mesh federation configurator
func NewConsul(config ConsulConfig) (Configurator, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &consulConfigurator{ConsulConfig: config}, nil
}

// Name returns the name of the trust system
func (c *consulConfigurator) Name() string { return "consul" }

// Configure registers the workload identity auth method and its binding
// rule, creating only the pieces that do not exist yet
func (c *consulConfigurator) Configure() error {
	if err := c.ensureAuthMethod(); err != nil {
		return trace.Wrap(err)
	}
	if err := c.ensureBindingRule(); err != nil {
		return trace.Wrap(err)
	}
	return nil
}

func (c *consulConfigurator) ensureAuthMethod() error {
	methods, _, err := c.ACL.AuthMethodList(nil)
	if err != nil {
		return trace.Wrap(err)
	}
	for _, method := range methods {
		if method.Name == c.AuthMethod {
			c.Debugf("Auth method %q already registered.", c.AuthMethod)
			return nil
		}
	}
	_, _, err = c.ACL.AuthMethodCreate(&capi.ACLAuthMethod{
		Name:        c.AuthMethod,
		Type:        "jwt",
		Description: "Workload identities issued by the cluster orchestrator",
		Config: map[string]interface{}{
			"JWKSURL":          c.JWKSURL,
			"JWKSCACert":       string(c.CACert),
			"JWTSupportedAlgs": []string{"RS256"},
			"BoundAudiences":   []string{"consul.io"},
			"ClaimMappings":    claimMappings,
		},
	}, nil)
	if err != nil {
		return trace.Wrap(err)
	}
	c.Infof("Registered auth method %q.", c.AuthMethod)
	return nil
}

func (c *consulConfigurator) ensureBindingRule() error {
	rules, _, err := c.ACL.BindingRuleList(c.AuthMethod, nil)
	if err != nil {
		return trace.Wrap(err)
	}
	if len(rules) != 0 {
		c.Debugf("Binding rule for %q already registered.", c.AuthMethod)
		return nil
	}
	_, _, err = c.ACL.BindingRuleCreate(&capi.ACLBindingRule{
		AuthMethod:  c.AuthMethod,
		Description: "Bind orchestrator workloads to mesh services",
		BindType:    capi.BindingRuleBindTypeService,
		BindName:    "${value.nomad_service}",
		Selector:    `"nomad_service" in value`,
	}, nil)
	if err != nil {
		return trace.Wrap(err)
	}
	c.Infof("Registered binding rule for %q.", c.AuthMethod)
	return nil
}
