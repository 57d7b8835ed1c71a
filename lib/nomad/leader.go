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
	"net"
	"net/url"
	"strings"

	"github.com/quayside/stevedore/lib/defaults"
	"github.com/quayside/stevedore/lib/utils"

	"github.com/gravitational/trace"
)

// Status indicates leadership status of the local node
type Status int

const (
	// StatusUnknown means the leadership could not be determined, for
	// example because no leader is reachable. Consumers treat it the same
	// as StatusNotLeader: absence of proof of leadership is not leadership.
	StatusUnknown Status = iota
	// StatusLeader means the local node is the current cluster leader
	StatusLeader
	// StatusNotLeader means some other node is the current cluster leader
	StatusNotLeader
)

// String returns the status text representation
func (s Status) String() string {
	switch s {
	case StatusLeader:
		return "leader"
	case StatusNotLeader:
		return "not leader"
	}
	return "unknown"
}

// LeaderStatus returns the advertised address of the current cluster leader
func (c *Client) LeaderStatus() (string, error) {
	leader, err := c.Status.Leader()
	if err != nil {
		return "", trace.Wrap(err)
	}
	return leader, nil
}

// IsLeader determines whether the node advertising the provided address is
// the current cluster leader.
//
// The comparison is an exact match of the parsed hosts rather than
// substring containment so that addresses sharing a common prefix do not
// produce false positives. Any query or parse failure yields StatusUnknown.
func (c *Client) IsLeader(advertiseAddr string) Status {
	leader, err := c.Status.Leader()
	if err != nil {
		c.WithError(err).Warn("Failed to query cluster leader.")
		return StatusUnknown
	}
	leaderHost, err := hostOf(leader)
	if err != nil {
		c.WithError(err).Warnf("Failed to parse leader address %q.", leader)
		return StatusUnknown
	}
	selfHost, err := hostOf(advertiseAddr)
	if err != nil {
		c.WithError(err).Warnf("Failed to parse advertise address %q.", advertiseAddr)
		return StatusUnknown
	}
	if leaderHost == selfHost {
		return StatusLeader
	}
	c.Debugf("Leader is %v, self is %v.", leaderHost, selfHost)
	return StatusNotLeader
}

// Peers returns the addresses of the current raft peers
func (c *Client) Peers() ([]string, error) {
	peers, err := c.Status.Peers()
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return peers, nil
}

// WaitPeers blocks until the cluster reports at least min raft peers or
// the provided context expires
func (c *Client) WaitPeers(ctx context.Context, min int) error {
	b := utils.NewExponentialBackOff(defaults.PeersWaitTimeout)
	return utils.RetryWithInterval(ctx, b, func() error {
		peers, err := c.Peers()
		if err != nil {
			return trace.Wrap(err)
		}
		if len(peers) < min {
			return trace.BadParameter("cluster has %v peers, need at least %v",
				len(peers), min)
		}
		return nil
	})
}

// hostOf extracts the host portion of the provided address which may carry
// an optional scheme prefix and port suffix
func hostOf(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", trace.BadParameter("empty address")
	}
	if strings.Contains(addr, "://") {
		url, err := url.Parse(addr)
		if err != nil {
			return "", trace.Wrap(err)
		}
		addr = url.Host
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host, nil
	}
	return addr, nil
}
