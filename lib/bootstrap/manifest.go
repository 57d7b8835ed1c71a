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

package bootstrap

import (
	"io/ioutil"
	"os"

	"github.com/quayside/stevedore/lib/defaults"

	"github.com/ghodss/yaml"
	"github.com/gravitational/trace"
)

// Manifest describes the configuration the gate applies after bootstrap
type Manifest struct {
	// Policies lists the ACL policy names applied at bootstrap
	Policies []string `json:"policies"`
	// Consul enables federation with the service mesh
	Consul bool `json:"consul"`
	// Vault enables federation with the secrets manager
	Vault bool `json:"vault"`
}

// DefaultManifest returns the manifest used when none is provided
func DefaultManifest() Manifest {
	return Manifest{
		Policies: defaults.BootstrapPolicies,
		Consul:   true,
		Vault:    true,
	}
}

// LoadManifest reads a manifest from the file at the specified path.
// A missing file yields the default manifest.
func LoadManifest(path string) (Manifest, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultManifest(), nil
		}
		return Manifest{}, trace.ConvertSystemError(err)
	}
	manifest := DefaultManifest()
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, trace.Wrap(err)
	}
	return manifest, nil
}
