// Package network provides a collector that lists the host's routable IP
// addresses. Interfaces are enumerated with gopsutil; loopback addresses of
// both families and IPv6 link-local addresses are dropped.
package network

import (
	"context"
	"fmt"
	"net/netip"
	"sort"
	"strings"
	"sync"

	psnet "github.com/shirou/gopsutil/v4/net"
)

// Interface is one host interface and the addresses bound to it, as
// "addr/prefix" or bare address strings.
type Interface struct {
	Name  string
	Addrs []string
}

// Lister enumerates host interfaces in platform order.
type Lister func(ctx context.Context) ([]Interface, error)

// Config holds the network collector options.
type Config struct {
	// Sort orders addresses lexicographically instead of enumeration order.
	Sort bool
}

// Collector reports display addresses for all interfaces.
type Collector struct {
	cfg  Config
	list Lister

	mu      sync.Mutex
	healthy bool
}

// New creates a network collector. A nil lister uses gopsutil.
func New(cfg Config, list Lister) *Collector {
	if list == nil {
		list = SystemInterfaces
	}
	return &Collector{
		cfg:     cfg,
		list:    list,
		healthy: true,
	}
}

// Name returns the collector identifier.
func (c *Collector) Name() string {
	return "network"
}

// Healthy reports whether the last enumeration succeeded.
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

// Collect returns the filtered addresses as a []string. It is never nil on
// success.
func (c *Collector) Collect(ctx context.Context) (interface{}, error) {
	ifaces, err := c.list(ctx)
	if err != nil {
		c.setHealthy(false)
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	c.setHealthy(true)

	addrs := Addresses(ifaces)
	if c.cfg.Sort {
		sort.Strings(addrs)
	}
	return addrs, nil
}

// Read returns the display addresses, or an empty slice if enumeration
// failed.
func (c *Collector) Read(ctx context.Context) []string {
	data, err := c.Collect(ctx)
	if err != nil {
		return []string{}
	}
	addrs, _ := data.([]string)
	return addrs
}

// Addresses flattens ifaces into display strings in enumeration order,
// keeping only addresses that pass Displayable.
func Addresses(ifaces []Interface) []string {
	out := []string{}
	for _, iface := range ifaces {
		for _, raw := range iface.Addrs {
			addr, ok := parseAddr(raw)
			if !ok || !Displayable(addr) {
				continue
			}
			out = append(out, addr.String())
		}
	}
	return out
}

// Displayable reports whether addr should appear on the bar. IPv4 loopback
// is excluded; IPv6 loopback and addresses whose first segment is fe80 are
// excluded.
func Displayable(addr netip.Addr) bool {
	if addr.Is4() {
		return !addr.IsLoopback()
	}
	if addr.IsLoopback() {
		return false
	}
	b := addr.As16()
	return !(b[0] == 0xfe && b[1] == 0x80)
}

// parseAddr accepts "192.168.1.5/24", "fe80::1%eth0" or a bare address.
func parseAddr(raw string) (netip.Addr, bool) {
	raw = strings.TrimSpace(raw)
	if p, err := netip.ParsePrefix(raw); err == nil {
		return p.Addr(), true
	}
	if a, err := netip.ParseAddr(raw); err == nil {
		return a.WithZone(""), true
	}
	return netip.Addr{}, false
}

// SystemInterfaces enumerates host interfaces with gopsutil.
func SystemInterfaces(ctx context.Context) ([]Interface, error) {
	stats, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	ifaces := make([]Interface, 0, len(stats))
	for _, st := range stats {
		iface := Interface{Name: st.Name}
		for _, a := range st.Addrs {
			iface.Addrs = append(iface.Addrs, a.Addr)
		}
		ifaces = append(ifaces, iface)
	}
	return ifaces, nil
}
