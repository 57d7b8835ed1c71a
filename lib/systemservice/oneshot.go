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

	"github.com/gravitational/trace"
)

// InstallOneshotService installs a systemd service of type=oneshot with
// the provided spec. The unit remains after exit so a completed run
// (status active) can be told apart from one still in progress (status
// activating). The operation is non-blocking and returns without waiting
// for the service to start.
func InstallOneshotService(ctx context.Context, name string, spec ServiceSpec) error {
	services, err := New()
	if err != nil {
		return trace.Wrap(err)
	}
	spec.Type = "oneshot"
	spec.RemainAfterExit = true
	err = services.InstallService(ctx, NewServiceRequest{
		ServiceSpec: spec,
		Name:        name,
		NoBlock:     true,
	})
	return trace.Wrap(err)
}
