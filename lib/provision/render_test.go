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

package provision

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gravitational/trace"
	"gopkg.in/check.v1"
)

func TestProvision(t *testing.T) { check.TestingT(t) }

type RenderSuite struct{}

var _ = check.Suite(&RenderSuite{})

type fakeMetadata struct {
	values map[string]string
	region string
	err    error
}

func (m *fakeMetadata) GetMetadata(path string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.values[path], nil
}

func (m *fakeMetadata) Region() (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.region, nil
}

func (s *RenderSuite) TestDiscoversInstance(c *check.C) {
	instance, err := DiscoverInstance(&fakeMetadata{
		values: map[string]string{"local-ipv4": "10.0.0.5"},
		region: "us-east-1",
	})
	c.Assert(err, check.IsNil)
	c.Assert(instance, check.DeepEquals, &Instance{
		PrivateIP: "10.0.0.5",
		Region:    "us-east-1",
	})
}

func (s *RenderSuite) TestEmptyPrivateIPIsAnError(c *check.C) {
	_, err := DiscoverInstance(&fakeMetadata{region: "us-east-1"})
	c.Assert(err, check.NotNil)
	c.Assert(trace.IsNotFound(err), check.Equals, true)
}

func (s *RenderSuite) TestRendersConfiguration(c *check.C) {
	var buf bytes.Buffer
	err := Render(&buf, TemplateData{
		Datacenter:    "us-east-1",
		AdvertiseAddr: "10.0.0.5",
	})
	c.Assert(err, check.IsNil)
	rendered := buf.String()
	c.Assert(strings.Contains(rendered, `datacenter = "us-east-1"`), check.Equals, true)
	c.Assert(strings.Contains(rendered, `http = "10.0.0.5"`), check.Equals, true)
	c.Assert(strings.Contains(rendered, `region     = "global"`), check.Equals, true)
	c.Assert(strings.Contains(rendered, "bootstrap_expect = 3"), check.Equals, true)
	c.Assert(strings.Contains(rendered, `ca_file   = "/etc/nomad.d/tls/ca.pem"`), check.Equals, true)
}

func (s *RenderSuite) TestRequiresAdvertiseAddr(c *check.C) {
	var buf bytes.Buffer
	err := Render(&buf, TemplateData{Datacenter: "us-east-1"})
	c.Assert(err, check.NotNil)
	c.Assert(trace.IsBadParameter(err), check.Equals, true)
}

func (s *RenderSuite) TestWritesConfigurationFile(c *check.C) {
	path := filepath.Join(c.MkDir(), "conf.d", "nomad.hcl")
	err := WriteConfig(path, TemplateData{
		Datacenter:    "us-east-1",
		AdvertiseAddr: "10.0.0.5",
	})
	c.Assert(err, check.IsNil)
	data, err := ioutil.ReadFile(path)
	c.Assert(err, check.IsNil)
	c.Assert(strings.Contains(string(data), `serf = "10.0.0.5"`), check.Equals, true)
}
