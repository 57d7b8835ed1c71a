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

package nomad

import (
	"context"
	"fmt"
	"testing"

	"gopkg.in/check.v1"
)

func TestNomad(t *testing.T) { check.TestingT(t) }

type LeaderSuite struct{}

var _ = check.Suite(&LeaderSuite{})

func (s *LeaderSuite) TestLeaderMatch(c *check.C) {
	client, err := newTestClient(&mockStatus{leader: "10.0.0.5:4647"}, newMockACL(true), nil)
	c.Assert(err, check.IsNil)

	c.Assert(client.IsLeader("10.0.0.5"), check.Equals, StatusLeader)
	c.Assert(client.IsLeader("10.0.0.5:4646"), check.Equals, StatusLeader)
	c.Assert(client.IsLeader("https://10.0.0.5:4646"), check.Equals, StatusLeader)
}

func (s *LeaderSuite) TestNotLeader(c *check.C) {
	client, err := newTestClient(&mockStatus{leader: "10.0.0.5:4647"}, newMockACL(true), nil)
	c.Assert(err, check.IsNil)

	c.Assert(client.IsLeader("10.0.0.6"), check.Equals, StatusNotLeader)
}

// A node whose address is a prefix of the leader's must not be considered
// the leader
func (s *LeaderSuite) TestNoFalsePositiveOnCommonPrefix(c *check.C) {
	client, err := newTestClient(&mockStatus{leader: "10.0.0.50:4647"}, newMockACL(true), nil)
	c.Assert(err, check.IsNil)

	c.Assert(client.IsLeader("10.0.0.5"), check.Equals, StatusNotLeader)
}

// A failed leader query yields StatusUnknown: absence of proof of
// leadership is treated the same as confirmed non-leadership
func (s *LeaderSuite) TestQueryFailure(c *check.C) {
	client, err := newTestClient(&mockStatus{
		leaderErr: fmt.Errorf("connection refused"),
	}, newMockACL(true), nil)
	c.Assert(err, check.IsNil)

	c.Assert(client.IsLeader("10.0.0.5"), check.Equals, StatusUnknown)
}

func (s *LeaderSuite) TestWaitPeers(c *check.C) {
	client, err := newTestClient(&mockStatus{
		peers: []string{"10.0.0.5:4647", "10.0.0.6:4647"},
	}, newMockACL(true), nil)
	c.Assert(err, check.IsNil)

	err = client.WaitPeers(context.TODO(), 2)
	c.Assert(err, check.IsNil)
}

func (s *LeaderSuite) TestWaitPeersExpires(c *check.C) {
	client, err := newTestClient(&mockStatus{
		peers: []string{"10.0.0.5:4647"},
	}, newMockACL(true), nil)
	c.Assert(err, check.IsNil)

	ctx, cancel := context.WithCancel(context.TODO())
	cancel()
	err = client.WaitPeers(ctx, 2)
	c.Assert(err, check.NotNil)
}

func (s *LeaderSuite) TestHostOf(c *check.C) {
	var testCases = []struct {
		addr string
		host string
		err  bool
	}{
		{addr: "10.0.0.5", host: "10.0.0.5"},
		{addr: "10.0.0.5:4647", host: "10.0.0.5"},
		{addr: "https://10.0.0.5:4646", host: "10.0.0.5"},
		{addr: " 10.0.0.5:4647 ", host: "10.0.0.5"},
		{addr: "", err: true},
	}
	for _, tc := range testCases {
		host, err := hostOf(tc.addr)
		if tc.err {
			c.Assert(err, check.NotNil, check.Commentf("%q", tc.addr))
			continue
		}
		c.Assert(err, check.IsNil)
		c.Assert(host, check.Equals, tc.host, check.Commentf("%q", tc.addr))
	}
}
