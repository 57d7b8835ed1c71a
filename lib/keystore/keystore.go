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

// Package keystore manages backup and restore of the orchestrator's
// variable encryption keys
package keystore

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/quayside/stevedore/lib/constants"
	"github.com/quayside/stevedore/lib/defaults"
	"github.com/quayside/stevedore/lib/secrets"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Config is the keystore configuration
type Config struct {
	// Secrets is the cluster secret store
	Secrets secrets.Store
	// Dir is the directory the encryption keys live in
	Dir string
	// Archive is the secret store key of the backup archive
	Archive string
	// FieldLogger is used for logging
	logrus.FieldLogger
}

// CheckAndSetDefaults validates config and sets defaults
func (c *Config) CheckAndSetDefaults() error {
	if c.Secrets == nil {
		return trace.BadParameter("missing parameter Secrets")
	}
	if c.Dir == "" {
		c.Dir = defaults.KeystoreDir
	}
	if c.Archive == "" {
		c.Archive = defaults.KeystoreArchive
	}
	if c.FieldLogger == nil {
		c.FieldLogger = logrus.WithField(trace.Component, constants.ComponentKeystore)
	}
	return nil
}

// Keystore restores and backs up the orchestrator key directory
type Keystore struct {
	// Config is the keystore configuration
	Config
}

// New returns a new keystore for the directory specified in config
func New(config Config) (*Keystore, error) {
	if err := config.CheckAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Keystore{Config: config}, nil
}

// Restore fetches the backup archive from the secret store and unpacks it
// into the key directory.
//
// A missing archive is a legitimate empty state (no snapshot has been
// taken yet) and is skipped without failing the run. Files that already
// exist at the destination are never overwritten so that a newer local
// keystore cannot be rolled back by a stale backup.
func (k *Keystore) Restore() error {
	data, err := k.Secrets.Get(k.Archive)
	if err != nil {
		if trace.IsNotFound(err) {
			k.Info("No keystore backup found, skipping restore.")
			return nil
		}
		return trace.Wrap(err)
	}
	if err := os.MkdirAll(k.Dir, defaults.PrivateDirMask); err != nil {
		return trace.ConvertSystemError(err)
	}
	if err := k.extract(bytes.NewReader(data)); err != nil {
		return trace.Wrap(err)
	}
	k.Infof("Keystore restored to %v.", k.Dir)
	return nil
}

// Backup writes a compressed archive of the key directory to the provided
// writer
func (k *Keystore) Backup(w io.Writer) error {
	gz := gzip.NewWriter(w)
	archive := tar.NewWriter(gz)
	err := filepath.Walk(k.Dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return trace.ConvertSystemError(err)
		}
		localPath, err := filepath.Rel(k.Dir, path)
		if err != nil {
			return trace.Wrap(err)
		}
		if localPath == "." {
			return nil
		}
		header, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return trace.Wrap(err)
		}
		header.Name = localPath
		if err := archive.WriteHeader(header); err != nil {
			return trace.Wrap(err)
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		file, err := os.Open(path)
		if err != nil {
			return trace.ConvertSystemError(err)
		}
		defer file.Close()
		_, err = io.Copy(archive, file)
		return trace.Wrap(err)
	})
	if err != nil {
		return trace.Wrap(err)
	}
	if err := archive.Close(); err != nil {
		return trace.Wrap(err)
	}
	return trace.Wrap(gz.Close())
}

// extract unpacks the archive into the key directory with skip-old-files
// semantics
func (k *Keystore) extract(r io.Reader) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return trace.Wrap(err)
	}
	defer gz.Close()
	archive := tar.NewReader(gz)
	for {
		header, err := archive.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return trace.Wrap(err)
		}
		path, err := sanitizePath(k.Dir, header.Name)
		if err != nil {
			return trace.Wrap(err)
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, defaults.PrivateDirMask); err != nil {
				return trace.ConvertSystemError(err)
			}
		case tar.TypeReg:
			if _, err := os.Stat(path); err == nil {
				k.Debugf("Skipping existing %v.", path)
				continue
			}
			data, err := ioutil.ReadAll(archive)
			if err != nil {
				return trace.Wrap(err)
			}
			if err := os.MkdirAll(filepath.Dir(path), defaults.PrivateDirMask); err != nil {
				return trace.ConvertSystemError(err)
			}
			err = ioutil.WriteFile(path, data, defaults.PrivateFileMask)
			if err != nil {
				return trace.ConvertSystemError(err)
			}
		default:
			k.Warnf("Skipping unsupported archive entry %v (%v).",
				header.Name, header.Typeflag)
		}
	}
}

// sanitizePath resolves name inside dir rejecting path traversal outside
// of dir
func sanitizePath(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if !strings.HasPrefix(path, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", trace.BadParameter("archive entry %q escapes %v", name, dir)
	}
	return path, nil
}
