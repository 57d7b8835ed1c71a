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

// Package systemservice manages the systemd units the provisioner
// installs on cluster instances
package systemservice

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gravitational/trace"
)

const (
	// ServiceStatusActivating indicates that service is activating
	ServiceStatusActivating = "activating"
	// ServiceStatusFailed means that service has failed
	ServiceStatusFailed = "failed"
	// ServiceStatusActive means that service is active
	ServiceStatusActive = "active"
	// ServiceStatusInactive indicates that service is not running
	ServiceStatusInactive = "inactive"
	// ServiceStatusUnknown indicates that service does not exist or the
	// status could not be determined
	ServiceStatusUnknown = "unknown"
)

// ServiceSuffix specifies the suffix of the systemd service file
const ServiceSuffix = ".service"

// FullServiceName returns the full service name (incl. the suffix).
// It will append the service suffix if necessary
func FullServiceName(serviceName string) string {
	if filepath.Ext(serviceName) != ServiceSuffix {
		return fmt.Sprint(serviceName, ServiceSuffix)
	}
	return serviceName
}

// Dependencies defines dependencies to other units
type Dependencies struct {
	// Requires configures requirement dependencies on other units
	Requires string `json:"Requires"`
	// After orders this unit after the listed units
	After string `json:"After"`
	// Before orders this unit before the listed units
	Before string `json:"Before"`
}

// ServiceSpec is a systemd service specification
type ServiceSpec struct {
	// Dependencies defines dependencies to other units
	Dependencies Dependencies `json:"Dependencies"`
	// StartCommand defines the command to execute when the service starts
	StartCommand string `json:"StartCommand"`
	// StartPreCommand defines the command to execute before the service starts
	StartPreCommand string `json:"StartPreCommand,omitempty"`
	// Type is a service type
	Type string `json:"Type"`
	// User is a user name owning the process
	User string `json:"User"`
	// Restart sets restart policy
	Restart string `json:"Restart"`
	// RestartSec is a period between restarts
	RestartSec int `json:"RestartSec"`
	// WantedBy sets up the target this service is wanted by
	WantedBy string `json:"WantedBy"`
	// RemainAfterExit tells service to remain after the process has exited
	RemainAfterExit bool `json:"RemainAfterExit"`
	// Environment is environment variables to set for the service
	Environment map[string]string `json:"Environment"`
	// WorkingDirectory sets the working directory for executed processes
	WorkingDirectory string `json:"WorkingDirectory"`
	// ConditionPathExists gates the start on existence of the specified
	// file, can be negated by prefixing the path with "!"
	ConditionPathExists string `json:"ConditionPathExists"`
}

// NewServiceRequest describes a request to create a systemd service
type NewServiceRequest struct {
	// ServiceSpec defines the service
	ServiceSpec
	// Name is the service name
	Name string `json:"Name"`
	// Description is the human-readable unit description
	Description string `json:"Description"`
	// NoBlock means we won't block and wait until service starts
	NoBlock bool `json:"-"`
}

// CheckAndSetDefaults checks and sets default values
func (r *NewServiceRequest) CheckAndSetDefaults() error {
	if r.Name == "" {
		return trace.BadParameter("missing parameter Name")
	}
	if r.StartCommand == "" {
		return trace.BadParameter("missing parameter StartCommand")
	}
	r.Name = FullServiceName(r.Name)
	if r.Description == "" {
		r.Description = fmt.Sprintf("Auto-generated service for %v", r.Name)
	}
	if r.WantedBy == "" {
		r.WantedBy = "multi-user.target"
	}
	return nil
}

// Manager is the system service manager
type Manager interface {
	// InstallService installs, enables and starts a new service
	InstallService(ctx context.Context, req NewServiceRequest) error
	// UninstallService stops, disables and removes the named service
	UninstallService(ctx context.Context, name string) error
	// StartService starts the named service
	StartService(ctx context.Context, name string) error
	// StopService stops the named service
	StopService(ctx context.Context, name string) error
	// EnableService enables the named service
	EnableService(ctx context.Context, name string) error
	// StatusService returns the activation state of the named service
	StatusService(ctx context.Context, name string) (string, error)
}

// New returns the system service manager for this host
func New() (Manager, error) {
	return &systemdManager{}, nil
}
