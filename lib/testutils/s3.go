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

// Package testutils provides fakes shared between package tests
package testutils

import (
	"bytes"
	"context"
	"io/ioutil"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3 is the mocked S3 API client
type S3 struct {
	s3iface.S3API
	// Objects is the objects stored in the fake S3, keyed by object key
	Objects map[string][]byte

	mu sync.Mutex
	// getCount is the number of GetObject calls served
	getCount int
}

// NewS3 returns a new fake S3 implementation
func NewS3() *S3 {
	return &S3{
		Objects: make(map[string][]byte),
	}
}

// GetCount returns the number of GetObject calls served so far
func (s *S3) GetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCount
}

func (s *S3) GetObject(input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	return s.GetObjectWithContext(context.TODO(), input)
}

func (s *S3) GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, options ...request.Option) (*s3.GetObjectOutput, error) {
	s.mu.Lock()
	s.getCount++
	s.mu.Unlock()
	object, ok := s.Objects[aws.StringValue(input.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey,
			"key "+aws.StringValue(input.Key)+" not found", nil)
	}
	return &s3.GetObjectOutput{
		Body:          ioutil.NopCloser(bytes.NewBuffer(object)),
		ContentLength: aws.Int64(int64(len(object))),
	}, nil
}

func (s *S3) PutObject(input *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	return s.PutObjectWithContext(context.TODO(), input)
}

func (s *S3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, options ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := ioutil.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[aws.StringValue(input.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (s *S3) ListObjectsV2(input *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
	var objects []*s3.Object
	for key, object := range s.Objects {
		if aws.StringValue(input.Prefix) != "" && !strings.HasPrefix(key, aws.StringValue(input.Prefix)) {
			continue
		}
		objects = append(objects, &s3.Object{
			Key:  aws.String(key),
			Size: aws.Int64(int64(len(object))),
		})
	}
	return &s3.ListObjectsV2Output{
		Contents: objects,
		KeyCount: aws.Int64(int64(len(objects))),
		Prefix:   input.Prefix,
	}, nil
}
