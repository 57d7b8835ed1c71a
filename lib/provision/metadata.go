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

// Package provision renders the orchestrator agent configuration and
// installs its system services on a fresh instance
package provision

import (
	"github.com/gravitational/trace"

	"github.com/aws/aws-sdk-go/aws/ec2metadata"
	"github.com/aws/aws-sdk-go/aws/session"
)

// Metadata is the subset of the instance metadata service API used by this
// package
type Metadata interface {
	// GetMetadata returns the metadata value at the specified path
	GetMetadata(path string) (string, error)
	// Region returns the region the instance is running in
	Region() (string, error)
}

// Instance describes the instance this process is running on
type Instance struct {
	// PrivateIP is the primary private IPv4 address of the instance
	PrivateIP string
	// Region is the region the instance is running in
	Region string
}

// NewLocalMetadata returns a metadata client for the instance this process
// is running on
func NewLocalMetadata() (Metadata, error) {
	session, err := session.NewSession()
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return ec2metadata.New(session), nil
}

// DiscoverInstance queries the instance metadata service for the
// attributes of the local instance
func DiscoverInstance(metadata Metadata) (*Instance, error) {
	privateIP, err := metadata.GetMetadata("local-ipv4")
	if err != nil {
		return nil, trace.Wrap(err, "failed to fetch local-ipv4 from instance metadata")
	}
	if privateIP == "" {
		return nil, trace.NotFound("instance metadata returned an empty private IP")
	}
	region, err := metadata.Region()
	if err != nil {
		return nil, trace.Wrap(err, "failed to determine instance region")
	}
	return &Instance{PrivateIP: privateIP, Region: region}, nil
}
