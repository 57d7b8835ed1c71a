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

import "gopkg.in/check.v1"

type EscapeSuite struct{}

var _ = check.Suite(&EscapeSuite{})

func (s *EscapeSuite) TestEscapesServiceNames(c *check.C) {
	var testCases = []struct {
		name    string
		escaped string
	}{
		{name: "stevedore-bootstrap.service", escaped: "stevedore-bootstrap.service"},
		{name: "unit with spaces", escaped: `unit\x20with\x20spaces`},
		{name: "unit#hash", escaped: `unit\x23hash`},
		{name: "@unit:name_0", escaped: "@unit:name_0"},
	}
	for _, tc := range testCases {
		c.Assert(SystemdNameEscape(tc.name), check.Equals, tc.escaped)
	}
}
