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

package utils

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

// Exec runs the specified command and returns its combined output.
// The command's stderr is included in the returned error on failure.
func Exec(ctx context.Context, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	log.WithField("cmd", cmd.Args).Debug("Exec.")
	if err := cmd.Run(); err != nil {
		return out.Bytes(), trace.Wrap(err, "command %v failed: %s", cmd.Args, out.String())
	}
	return out.Bytes(), nil
}
