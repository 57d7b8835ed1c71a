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

// Package federation registers the orchestrator as a trusted workload
// identity issuer with the external trust systems: the service mesh and
// the secrets manager.
//
// Every creation step is independently existence-guarded so a partially
// completed prior run is resumable by simply re-running the whole
// sequence, and a fully configured system observes zero additional
// creations.
package federation

import (
	"io/ioutil"

	"github.com/gravitational/trace"
)

// claimMappings maps workload identity claims to trusted metadata fields
// shared by both trust systems
var claimMappings = map[string]string{
	"nomad_namespace": "nomad_namespace",
	"nomad_job_id":    "nomad_job_id",
	"nomad_task":      "nomad_task",
	"nomad_service":   "nomad_service",
}

// Configurator registers an auth method and its dependent binding rules
// with a single trust system
type Configurator interface {
	// Name returns the name of the trust system
	Name() string
	// Configure brings the trust system to the desired state, creating
	// only the pieces that do not exist yet
	Configure() error
}

// ReadCACert reads the PEM-encoded CA certificate at the specified path
// for embedding into auth method configurations
func ReadCACert(path string) ([]byte, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, trace.ConvertSystemError(err)
	}
	if len(data) == 0 {
		return nil, trace.BadParameter("CA certificate %v is empty", path)
	}
	return data, nil
}
