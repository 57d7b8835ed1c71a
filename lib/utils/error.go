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
	"strings"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gravitational/trace"
)

// ConvertS3Error converts an error from the AWS S3 API to an appropriate
// trace error
func ConvertS3Error(err error, args ...interface{}) error {
	if err == nil {
		return nil
	}
	awsErr, ok := trace.Unwrap(err).(awserr.Error)
	if !ok {
		return err
	}
	switch awsErr.Code() {
	case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket:
		return trace.NotFound(awsErr.Message(), args...)
	}
	return err
}

// ConvertNomadError converts an error from the orchestrator API to an
// appropriate trace error.
//
// The orchestrator's bootstrap endpoint acts as the cluster-wide
// compare-and-swap: the first caller succeeds and subsequent callers receive
// a distinguishable "already bootstrapped" response which is mapped to
// trace.AlreadyExists here so callers can treat it as a benign terminal state.
func ConvertNomadError(err error) error {
	if err == nil {
		return nil
	}
	message := err.Error()
	switch {
	case strings.Contains(message, "ACL bootstrap already done"):
		return trace.AlreadyExists("cluster ACL system is already bootstrapped")
	case strings.Contains(message, "404"), strings.Contains(message, "not found"):
		return trace.NotFound(message)
	}
	return err
}
