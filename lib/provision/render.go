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
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/quayside/stevedore/lib/defaults"

	"github.com/gravitational/trace"
)

// configTemplate is the orchestrator server agent configuration
var configTemplate = template.Must(template.New("nomad").Parse(`datacenter = "{{.Datacenter}}"
region     = "{{.Region}}"
data_dir   = "{{.DataDir}}"
bind_addr  = "0.0.0.0"

advertise {
  http = "{{.AdvertiseAddr}}"
  rpc  = "{{.AdvertiseAddr}}"
  serf = "{{.AdvertiseAddr}}"
}

server {
  enabled          = true
  bootstrap_expect = {{.BootstrapExpect}}
}

acl {
  enabled = true
}

tls {
  http      = true
  rpc       = true
  ca_file   = "{{.CAFile}}"
  cert_file = "{{.CertFile}}"
  key_file  = "{{.KeyFile}}"

  verify_server_hostname = true
}
`))

// TemplateData is the input of the agent configuration template
type TemplateData struct {
	// Datacenter is the name of the datacenter the agent joins
	Datacenter string
	// Region is the orchestrator region the agent joins
	Region string
	// DataDir is the agent data directory
	DataDir string
	// AdvertiseAddr is the address the agent advertises to its peers
	AdvertiseAddr string
	// BootstrapExpect is the number of servers expected for raft quorum
	BootstrapExpect int
	// CAFile is the path to the cluster CA certificate
	CAFile string
	// CertFile is the path to the agent certificate
	CertFile string
	// KeyFile is the path to the agent private key
	KeyFile string
}

// CheckAndSetDefaults checks and sets default values
func (d *TemplateData) CheckAndSetDefaults() error {
	if d.AdvertiseAddr == "" {
		return trace.BadParameter("missing parameter AdvertiseAddr")
	}
	if d.Datacenter == "" {
		return trace.BadParameter("missing parameter Datacenter")
	}
	if d.Region == "" {
		d.Region = defaults.NomadRegion
	}
	if d.DataDir == "" {
		d.DataDir = defaults.NomadDataDir
	}
	if d.BootstrapExpect == 0 {
		d.BootstrapExpect = defaults.MinPeers + 1
	}
	if d.CAFile == "" {
		d.CAFile = defaults.NomadCACert
	}
	if d.CertFile == "" {
		d.CertFile = defaults.NomadClientCert
	}
	if d.KeyFile == "" {
		d.KeyFile = defaults.NomadClientKey
	}
	return nil
}

// Render writes the agent configuration for the provided data to w
func Render(w io.Writer, data TemplateData) error {
	if err := data.CheckAndSetDefaults(); err != nil {
		return trace.Wrap(err)
	}
	return trace.Wrap(configTemplate.Execute(w, data))
}

// WriteConfig renders the agent configuration to the file at path
func WriteConfig(path string, data TemplateData) error {
	if err := os.MkdirAll(filepath.Dir(path), defaults.SharedDirMask); err != nil {
		return trace.ConvertSystemError(err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, defaults.SharedReadMask)
	if err != nil {
		return trace.ConvertSystemError(err)
	}
	defer file.Close()
	return trace.Wrap(Render(file, data))
}
