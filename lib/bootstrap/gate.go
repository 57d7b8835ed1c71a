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

// Package bootstrap implements the leader-gated idempotent cluster
// bootstrap sequence.
//
// The gate is a state machine over {not bootstrapped, bootstrapped} x
// {leader, not leader}: only the current cluster leader ever acts, a
// non-leader run is a clean no-op. The one-time ACL bootstrap call is
// serialized cluster-wide by the orchestrator's bootstrap endpoint; the
// configuration stages that follow are individually idempotent so the
// whole sequence is safe to re-run from any node at any time.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/quayside/stevedore/lib/constants"
	"github.com/quayside/stevedore/lib/defaults"
	"github.com/quayside/stevedore/lib/federation"
	"github.com/quayside/stevedore/lib/nomad"
	"github.com/quayside/stevedore/lib/secrets"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Orchestrator is the subset of the orchestrator client used by the gate
type Orchestrator interface {
	// SetToken sets the ACL token used to authenticate subsequent calls
	SetToken(token string)
	// IsLeader determines whether the node advertising the provided
	// address is the current cluster leader
	IsLeader(advertiseAddr string) nomad.Status
	// Bootstrapped determines whether the cluster ACL system has been
	// bootstrapped
	Bootstrapped() bool
	// Bootstrap submits the provided management token to the one-time
	// cluster bootstrap endpoint
	Bootstrap(token string) error
	// PolicyExists determines whether the named ACL policy is registered
	PolicyExists(name string) (bool, error)
	// UpsertPolicy registers the named ACL policy
	UpsertPolicy(name, description, rules string) error
}

// Restorer restores the orchestrator keystore from a backup
type Restorer interface {
	// Restore restores the keystore, a missing backup is not an error
	Restore() error
}

// Config is the bootstrap gate configuration
type Config struct {
	// AdvertiseAddr is the address the local node advertises to its peers
	AdvertiseAddr string
	// TokenSecret is the secret store key of the management token
	TokenSecret string
	// Policies is the list of ACL policy names to apply
	Policies []string
	// Secrets is the cluster secret store
	Secrets secrets.Store
	// Orchestrator is the orchestrator API client
	Orchestrator Orchestrator
	// Keystore is optional keystore restorer
	Keystore Restorer
	// Configurators is the list of trust systems to federate with
	Configurators []federation.Configurator
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults checks and sets default values
func (c *Config) CheckAndSetDefaults() error {
	if c.AdvertiseAddr == "" {
		return trace.BadParameter("missing parameter AdvertiseAddr")
	}
	if c.Secrets == nil {
		return trace.BadParameter("missing parameter Secrets")
	}
	if c.Orchestrator == nil {
		return trace.BadParameter("missing parameter Orchestrator")
	}
	if c.TokenSecret == "" {
		c.TokenSecret = defaults.OperatorTokenSecret
	}
	if c.Policies == nil {
		c.Policies = defaults.BootstrapPolicies
	}
	if c.FieldLogger == nil {
		c.FieldLogger = logrus.WithField(trace.Component, constants.ComponentBootstrap)
	}
	return nil
}

// Gate runs the leader-gated bootstrap sequence
type Gate struct {
	// Config is the gate configuration
	Config
}

// New returns a new bootstrap gate
func New(config Config) (*Gate, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Gate{Config: config}, nil
}

// Result describes the outcome of a bootstrap run
type Result struct {
	// Status is the leadership status observed at the start of the run
	Status nomad.Status
	// Bootstrapped is true when this run performed the one-time
	// bootstrap call
	Bootstrapped bool
	// Stages lists the configuration stages that ran to completion
	Stages []string
}

// Run executes the bootstrap sequence.
//
// A non-leader (or leadership-unknown) run returns a nil error without
// performing any mutating call: some other node is, or will become, the
// leader and bootstrap the cluster. Once the one-time bootstrap call has
// been made it is never unwound: a failure in a subsequent configuration
// stage is surfaced to the caller so an external re-invocation retries
// the remaining idempotent stages only.
func (g *Gate) Run(ctx context.Context) (*Result, error) {
	token, err := secrets.GetString(g.Secrets, g.TokenSecret)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	g.Orchestrator.SetToken(token)

	result := &Result{Status: g.Orchestrator.IsLeader(g.AdvertiseAddr)}
	if result.Status != nomad.StatusLeader {
		g.Infof("Local node is %v, nothing to do.", result.Status)
		return result, nil
	}

	if !g.Orchestrator.Bootstrapped() {
		err := g.Orchestrator.Bootstrap(token)
		switch {
		case err == nil:
			result.Bootstrapped = true
		case trace.IsAlreadyExists(err):
			g.Info("Another node won the bootstrap race.")
		default:
			return result, trace.Wrap(err)
		}
	}

	for _, stage := range g.stages() {
		g.Infof("Executing stage %q.", stage.Name)
		if err := stage.Run(ctx); err != nil {
			g.WithError(err).Errorf("Stage %q failed.", stage.Name)
			return result, trace.Wrap(err, "stage %q failed", stage.Name)
		}
		result.Stages = append(result.Stages, stage.Name)
	}
	g.Info("Bootstrap sequence complete.")
	return result, nil
}

// Stage is a named idempotent step of the configuration pipeline
type Stage struct {
	// Name identifies the stage in logs and results
	Name string
	// Run executes the stage
	Run func(ctx context.Context) error
}

// stages returns the ordered configuration pipeline: keystore restore,
// then policies, then federation
func (g *Gate) stages() []Stage {
	var stages []Stage
	if g.Keystore != nil {
		stages = append(stages, Stage{
			Name: "restore-keystore",
			Run: func(context.Context) error {
				return trace.Wrap(g.Keystore.Restore())
			},
		})
	}
	applier := &Applier{
		Orchestrator: g.Orchestrator,
		Secrets:      g.Secrets,
		FieldLogger:  g.FieldLogger,
	}
	for _, policy := range g.Policies {
		policy := policy
		stages = append(stages, Stage{
			Name: fmt.Sprintf("apply-policy/%v", policy),
			Run: func(context.Context) error {
				return trace.Wrap(applier.Apply(policy))
			},
		})
	}
	for _, configurator := range g.Configurators {
		configurator := configurator
		stages = append(stages, Stage{
			Name: fmt.Sprintf("configure-federation/%v", configurator.Name()),
			Run: func(context.Context) error {
				return trace.Wrap(configurator.Configure())
			},
		})
	}
	return stages
}
