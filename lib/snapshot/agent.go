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

// Package snapshot implements the periodic cluster state backup agent
package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/quayside/stevedore/lib/constants"
	"github.com/quayside/stevedore/lib/defaults"
	"github.com/quayside/stevedore/lib/secrets"

	"github.com/dustin/go-humanize"
	"github.com/gravitational/trace"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Source produces point-in-time snapshots of the cluster raft state
type Source interface {
	// Snapshot returns a snapshot stream, the caller closes it
	Snapshot() (io.ReadCloser, error)
}

// Backuper archives the orchestrator keystore
type Backuper interface {
	// Backup writes a compressed keystore archive to the provided writer
	Backup(w io.Writer) error
}

// Config is the snapshot agent configuration
type Config struct {
	// Orchestrator is the snapshot source
	Orchestrator Source
	// Keystore is optional keystore backuper
	Keystore Backuper
	// Secrets is the cluster secret store snapshots are uploaded to
	Secrets secrets.Store
	// Prefix is the secret store key prefix for uploads
	Prefix string
	// Schedule is the cron schedule of the periodic run
	Schedule string
	// FieldLogger is used for logging
	logrus.FieldLogger
	// clock returns the current time, overridden in tests
	clock func() time.Time
}

// CheckAndSetDefaults checks and sets default values
func (c *Config) CheckAndSetDefaults() error {
	if c.Orchestrator == nil {
		return trace.BadParameter("missing parameter Orchestrator")
	}
	if c.Secrets == nil {
		return trace.BadParameter("missing parameter Secrets")
	}
	if c.Prefix == "" {
		c.Prefix = defaults.SnapshotPrefix
	}
	if c.Schedule == "" {
		c.Schedule = defaults.SnapshotSchedule
	}
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return trace.BadParameter("invalid schedule %q: %v", c.Schedule, err)
	}
	if c.FieldLogger == nil {
		c.FieldLogger = logrus.WithField(trace.Component, constants.ComponentSnapshot)
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	return nil
}

// Agent uploads periodic cluster state backups to the secret store
type Agent struct {
	// Config is the agent configuration
	Config
}

// New returns a new snapshot agent
func New(config Config) (*Agent, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Agent{Config: config}, nil
}

// Run executes snapshot uploads on the configured schedule until the
// context is cancelled
func (a *Agent) Run(ctx context.Context) error {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(a.Schedule, func() {
		if err := a.RunOnce(ctx); err != nil {
			a.WithError(err).Error("Snapshot upload failed.")
		}
	})
	if err != nil {
		return trace.Wrap(err)
	}
	a.Infof("Starting snapshot agent with schedule %q.", a.Schedule)
	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()
	a.Info("Snapshot agent stopped.")
	return nil
}

// RunOnce takes a single snapshot of the cluster state and uploads it,
// along with a keystore archive when a keystore is configured
func (a *Agent) RunOnce(ctx context.Context) error {
	stamp := a.clock().UTC().Format("20060102-150405")
	if err := a.uploadSnapshot(stamp); err != nil {
		return trace.Wrap(err)
	}
	if a.Keystore != nil {
		if err := a.uploadKeystore(stamp); err != nil {
			return trace.Wrap(err)
		}
	}
	return nil
}

func (a *Agent) uploadSnapshot(stamp string) error {
	snapshot, err := a.Orchestrator.Snapshot()
	if err != nil {
		return trace.Wrap(err)
	}
	defer snapshot.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, snapshot); err != nil {
		return trace.Wrap(err)
	}
	name := path.Join(a.Prefix, fmt.Sprintf("raft-%v.snap", stamp))
	size := uint64(buf.Len())
	if err := a.Secrets.Put(name, &buf); err != nil {
		return trace.Wrap(err)
	}
	a.Infof("Uploaded %v (%v).", name, humanize.Bytes(size))
	return nil
}

func (a *Agent) uploadKeystore(stamp string) error {
	var buf bytes.Buffer
	if err := a.Keystore.Backup(&buf); err != nil {
		return trace.Wrap(err)
	}
	archive := buf.Bytes()
	// the fixed well-known key is what the bootstrap restorer consumes,
	// the timestamped copy keeps history alongside the raft snapshots
	err := a.Secrets.Put(defaults.KeystoreArchive, bytes.NewReader(archive))
	if err != nil {
		return trace.Wrap(err)
	}
	name := path.Join(a.Prefix, fmt.Sprintf("keyring-%v.tar.gz", stamp))
	if err := a.Secrets.Put(name, bytes.NewReader(archive)); err != nil {
		return trace.Wrap(err)
	}
	a.Infof("Uploaded %v and %v (%v).", defaults.KeystoreArchive, name,
		humanize.Bytes(uint64(len(archive))))
	return nil
}
