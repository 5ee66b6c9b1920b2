// Package tailscale provides a collector for the optional tailnet block. It
// asks the local tailscaled daemon, via the LocalAPI unix socket, whether
// the node is up and which Tailscale addresses it holds.
package tailscale

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tailscale.com/client/local"
	"tailscale.com/ipn/ipnstate"
)

// runningState is the ipn backend state of a connected node.
const runningState = "Running"

// StatusClient abstracts the local Tailscale daemon API for testability.
// The real implementation is tailscale.com/client/local.Client, whose
// Status method satisfies this interface.
type StatusClient interface {
	Status(ctx context.Context) (*ipnstate.Status, error)
}

// Config holds the configuration for the Tailscale collector.
type Config struct {
	// SocketPath is an optional custom tailscaled socket path.
	// When empty, the platform default is used.
	SocketPath string
}

// Status is the data returned by a single Collect call.
type Status struct {
	Online   bool     `json:"online"`
	HostName string   `json:"hostname"`
	IPs      []string `json:"tailscale_ips"`
}

// Text renders the block text: the node's addresses when connected,
// otherwise "ts offline".
func (s Status) Text() string {
	if !s.Online || len(s.IPs) == 0 {
		return "ts offline"
	}
	return "ts " + strings.Join(s.IPs, " ")
}

// Collector gathers Tailscale status from the local daemon.
type Collector struct {
	client StatusClient

	mu      sync.Mutex
	healthy bool
}

// New creates a new Tailscale collector. A nil client talks to the local
// daemon at cfg.SocketPath.
func New(cfg Config, client StatusClient) *Collector {
	if client == nil {
		client = NewLocalClient(cfg.SocketPath)
	}
	return &Collector{
		client:  client,
		healthy: true, // healthy until first failure
	}
}

// Name returns the collector identifier.
func (c *Collector) Name() string {
	return "tailscale"
}

// Healthy returns whether the last collection succeeded.
func (c *Collector) Healthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy
}

func (c *Collector) setHealthy(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthy = v
}

// Collect calls the local Tailscale daemon and returns a Status snapshot.
// A stopped or logged-out daemon is a valid reading (Online false); only an
// unreachable daemon is an error.
func (c *Collector) Collect(ctx context.Context) (interface{}, error) {
	st, err := c.client.Status(ctx)
	if err != nil {
		c.setHealthy(false)
		return nil, fmt.Errorf("tailscale status: %w", err)
	}

	if st == nil {
		c.setHealthy(false)
		return nil, fmt.Errorf("tailscale status: nil response")
	}

	c.setHealthy(true)
	return mapStatus(st), nil
}

// mapStatus converts the ipnstate.Status into our simplified Status.
func mapStatus(st *ipnstate.Status) Status {
	s := Status{Online: st.BackendState == runningState}

	addrs := st.TailscaleIPs
	if st.Self != nil {
		s.HostName = st.Self.HostName
		if len(addrs) == 0 {
			addrs = st.Self.TailscaleIPs
		}
	}
	for _, a := range addrs {
		s.IPs = append(s.IPs, a.String())
	}
	return s
}

// NewLocalClient creates a StatusClient backed by the real Tailscale local
// daemon. The underlying client is built on first use.
func NewLocalClient(socketPath string) StatusClient {
	return &localClientAdapter{socketPath: socketPath}
}

// localClientAdapter wraps tailscale.com/client/local.Client so we can
// lazily construct it and set the Socket field.
type localClientAdapter struct {
	socketPath string
	once       sync.Once
	client     StatusClient
}

func (a *localClientAdapter) Status(ctx context.Context) (*ipnstate.Status, error) {
	a.once.Do(func() {
		lc := &local.Client{}
		if a.socketPath != "" {
			lc.Socket = a.socketPath
		}
		a.client = lc
	})
	return a.client.Status(ctx)
}
