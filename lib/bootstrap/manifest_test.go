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
	"path/filepath"

	"gopkg.in/check.v1"
)

type ManifestSuite struct{}

var _ = check.Suite(&ManifestSuite{})

func (s *ManifestSuite) TestMissingFileYieldsDefaults(c *check.C) {
	manifest, err := LoadManifest(filepath.Join(c.MkDir(), "manifest.yaml"))
	c.Assert(err, check.IsNil)
	c.Assert(manifest, check.DeepEquals, DefaultManifest())
}

func (s *ManifestSuite) TestOverridesDefaults(c *check.C) {
	path := filepath.Join(c.MkDir(), "manifest.yaml")
	err := ioutil.WriteFile(path, []byte(`policies: [operator]
vault: false
`), 0644)
	c.Assert(err, check.IsNil)

	manifest, err := LoadManifest(path)
	c.Assert(err, check.IsNil)
	c.Assert(manifest, check.DeepEquals, Manifest{
		Policies: []string{"operator"},
		Consul:   true,
		Vault:    false,
	})
}

func (s *ManifestSuite) TestRejectsMalformedManifest(c *check.C) {
	path := filepath.Join(c.MkDir(), "manifest.yaml")
	err := ioutil.WriteFile(path, []byte(`policies: {not: a list}`), 0644)
	c.Assert(err, check.IsNil)

	_, err = LoadManifest(path)
	c.Assert(err, check.NotNil)
}
