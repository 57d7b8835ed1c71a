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

package systemservice

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/quayside/stevedore/lib/defaults"
	"github.com/quayside/stevedore/lib/utils"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField(trace.Component, "systemd")

const unitFileTemplate = `[Unit]
Description={{.Description}}
{{with .Dependencies}}{{if .Requires}}Requires={{.Requires}}
{{end}}{{if .After}}After={{.After}}
{{end}}{{if .Before}}Before={{.Before}}
{{end}}{{end}}{{if .ConditionPathExists}}ConditionPathExists={{.ConditionPathExists}}
{{end}}
[Service]
{{if .Type}}Type={{.Type}}
{{end}}{{if .User}}User={{.User}}
{{end}}{{if .StartPreCommand}}ExecStartPre={{.StartPreCommand}}
{{end}}ExecStart={{.StartCommand}}
{{if .Restart}}Restart={{.Restart}}
{{end}}{{if .RestartSec}}RestartSec={{.RestartSec}}
{{end}}{{if .RemainAfterExit}}RemainAfterExit=yes
{{end}}{{if .WorkingDirectory}}WorkingDirectory={{.WorkingDirectory}}
{{end}}{{range $k, $v := .Environment}}Environment={{$k}}={{$v}}
{{end}}
[Install]
WantedBy={{.WantedBy}}
`

var unitTemplate = template.Must(template.New("unit").Parse(unitFileTemplate))

type systemdManager struct{}

// InstallService writes the unit file, reloads the manager configuration
// and enables and starts the service
func (s *systemdManager) InstallService(ctx context.Context, req NewServiceRequest) error {
	if err := req.CheckAndSetDefaults(); err != nil {
		return trace.Wrap(err)
	}
	path := unitPath(req.Name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, defaults.SharedReadMask)
	if err != nil {
		return trace.Wrap(trace.ConvertSystemError(err),
			"error creating systemd unit file at %v", path)
	}
	defer f.Close()
	if err := renderUnit(f, req); err != nil {
		return trace.Wrap(err)
	}
	if out, err := invokeSystemctl(ctx, "daemon-reload"); err != nil {
		return trace.Wrap(err, "failed to reload manager configuration: %s", out)
	}
	if err := s.EnableService(ctx, req.Name); err != nil {
		return trace.Wrap(err)
	}
	args := []string{"start", req.Name}
	if req.NoBlock {
		args = append(args, "--no-block")
	}
	out, err := invokeSystemctl(ctx, args...)
	return trace.Wrap(err, "failed to start service %v: %s", req.Name, out)
}

// UninstallService stops and disables the named service and removes its
// unit file. An unknown service is not an error.
func (s *systemdManager) UninstallService(ctx context.Context, name string) error {
	name = FullServiceName(name)
	logger := log.WithField("service", name)
	out, err := invokeSystemctl(ctx, "stop", name)
	if err != nil {
		if isUnknownServiceError(out) {
			logger.Info("Service not found.")
			return nil
		}
		return trace.Wrap(err, "error stopping %v: %s", name, out)
	}
	if out, err := invokeSystemctl(ctx, "disable", name); err != nil {
		return trace.Wrap(err, "error disabling %v: %s", name, out)
	}
	if err := os.Remove(unitPath(name)); err != nil && !os.IsNotExist(err) {
		return trace.ConvertSystemError(err)
	}
	logger.Info("Service uninstalled.")
	return nil
}

// StartService starts the named service
func (s *systemdManager) StartService(ctx context.Context, name string) error {
	out, err := invokeSystemctl(ctx, "start", FullServiceName(name))
	return trace.Wrap(err, "failed to start service %v: %s", name, out)
}

// StopService stops the named service
func (s *systemdManager) StopService(ctx context.Context, name string) error {
	out, err := invokeSystemctl(ctx, "stop", FullServiceName(name))
	return trace.Wrap(err, "error stopping %v: %s", name, out)
}

// EnableService enables the named service
func (s *systemdManager) EnableService(ctx context.Context, name string) error {
	out, err := invokeSystemctl(ctx, "enable", FullServiceName(name))
	return trace.Wrap(err, "failed to enable %v: %s", name, out)
}

// StatusService returns the activation state of the named service.
// The is-active predicate always reports a state, with a non-zero exit
// code for anything but active, so a known state suppresses the error.
func (s *systemdManager) StatusService(ctx context.Context, name string) (string, error) {
	out, err := invokeSystemctl(ctx, "is-active", FullServiceName(name))
	status := strings.TrimSpace(out)
	switch status {
	case ServiceStatusActive, ServiceStatusInactive,
		ServiceStatusFailed, ServiceStatusUnknown,
		ServiceStatusActivating:
		return status, nil
	}
	return status, trace.Wrap(err)
}

func renderUnit(w io.Writer, req NewServiceRequest) error {
	return trace.Wrap(unitTemplate.Execute(w, req), "error rendering unit file")
}

func invokeSystemctl(ctx context.Context, args ...string) (string, error) {
	out, err := utils.Exec(ctx, "systemctl", append(args, "--no-pager")...)
	return string(out), trace.Wrap(err)
}

func isUnknownServiceError(out string) bool {
	return strings.Contains(out, "not loaded") ||
		strings.Contains(out, "could not be found")
}

// unitPath returns the path of the unit file for the named service
func unitPath(name string) string {
	return filepath.Join(defaults.SystemUnitDir, SystemdNameEscape(name))
}
