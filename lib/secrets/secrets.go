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

// Package secrets implements access to the cluster secret store.
//
// The store is backed by S3 and uses the following key scheme:
//
//	<bucket>
//	∟ <region>
//	  ∟ <role>
//	    ∟ nomad
//	      ∟ operator-token
//	      ∟ operator.hcl
//	      ∟ keyring.tar.gz
//
// Secrets are produced out of band by the provisioning pipeline; this
// package only ever reads them, with the exception of Put which is used by
// the snapshot agent to publish backup artifacts under the same scheme.
package secrets

import (
	"bytes"
	"io"
	"io/ioutil"
	"path"

	"github.com/quayside/stevedore/lib/constants"
	"github.com/quayside/stevedore/lib/defaults"
	"github.com/quayside/stevedore/lib/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/dustin/go-humanize"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

// Store provides access to named cluster secrets
type Store interface {
	// Get returns the contents of the named secret
	Get(name string) ([]byte, error)
	// Download streams the named secret into the provided writer
	Download(w io.WriterAt, name string) error
	// Put uploads the named secret from the provided reader
	Put(name string, r io.Reader) error
}

// Config is the S3-backed secret store configuration
type Config struct {
	// Bucket is the S3 bucket name
	Bucket string
	// Region is the AWS region, also the first component of every key
	Region string
	// Role is the instance role component of every key
	Role string
	// FieldLogger is used for logging
	logrus.FieldLogger
	// S3 is optional S3 API client
	S3 s3iface.S3API
}

// CheckAndSetDefaults validates config and sets defaults
func (c *Config) CheckAndSetDefaults() error {
	if c.Bucket == "" {
		return trace.BadParameter("missing parameter Bucket")
	}
	if c.Region == "" {
		return trace.BadParameter("missing parameter Region")
	}
	if c.Role == "" {
		c.Role = defaults.SecretsRole
	}
	if c.FieldLogger == nil {
		c.FieldLogger = logrus.WithField(trace.Component, constants.ComponentSecrets)
	}
	if c.S3 == nil {
		session, err := session.NewSession(&aws.Config{
			Region: aws.String(c.Region),
		})
		if err != nil {
			return trace.Wrap(err)
		}
		c.S3 = s3.New(session)
	}
	return nil
}

// s3Store is the S3-backed secret store implementation
type s3Store struct {
	// Config is the store configuration
	Config
	// downloader is the S3 download manager
	downloader *s3manager.Downloader
	// uploader is the S3 upload manager
	uploader *s3manager.Uploader
}

// New returns a new S3-backed secret store
func New(config Config) (*s3Store, error) {
	err := config.CheckAndSetDefaults()
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &s3Store{
		Config:     config,
		downloader: s3manager.NewDownloaderWithClient(config.S3),
		uploader:   s3manager.NewUploaderWithClient(config.S3),
	}, nil
}

// Get returns the contents of the named secret
func (s *s3Store) Get(name string) ([]byte, error) {
	object, err := s.S3.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		err = utils.ConvertS3Error(err)
		if trace.IsNotFound(err) {
			return nil, trace.NotFound("secret %v not found in %v",
				s.key(name), s.Bucket)
		}
		return nil, trace.Wrap(err)
	}
	defer object.Body.Close()
	data, err := ioutil.ReadAll(object.Body)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	s.Debugf("Fetched %v: %v.", s.key(name), humanize.Bytes(uint64(len(data))))
	return data, nil
}

// Download streams the named secret into the provided writer
func (s *s3Store) Download(w io.WriterAt, name string) error {
	n, err := s.downloader.Download(w, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		err = utils.ConvertS3Error(err)
		if trace.IsNotFound(err) {
			return trace.NotFound("secret %v not found in %v",
				s.key(name), s.Bucket)
		}
		return trace.Wrap(err)
	}
	s.Infof("Download complete: %v %v.", s.key(name), humanize.Bytes(uint64(n)))
	return nil
}

// Put uploads the named secret from the provided reader
func (s *s3Store) Put(name string, r io.Reader) error {
	_, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.key(name)),
		Body:   r,
	})
	if err != nil {
		return trace.Wrap(utils.ConvertS3Error(err))
	}
	s.Infof("Upload complete: %v.", s.key(name))
	return nil
}

// key composes the storage key of the named secret
func (s *s3Store) key(name string) string {
	return path.Join(s.Region, s.Role, "nomad", name)
}

// GetString is a convenience wrapper around Store.Get that trims
// surrounding whitespace from the secret payload
func GetString(store Store, name string) (string, error) {
	data, err := store.Get(name)
	if err != nil {
		return "", trace.Wrap(err)
	}
	return string(bytes.TrimSpace(data)), nil
}
