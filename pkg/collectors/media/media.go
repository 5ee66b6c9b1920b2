// Package media provides a collector that reports the title of the active
// media player. Player discovery sits behind PlayerFinder; production wiring
// uses MPRIS over the D-Bus session bus (see NewMPRISFinder).
package media

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

// ErrNoPlayer is returned by Collect when no player could be queried.
var ErrNoPlayer = errors.New("no active media player")

// ellipsis is appended to titles cut down to Config.MaxWidth.
const ellipsis = "…"

// PlayerFinder locates the currently active player.
type PlayerFinder interface {
	FindActive(ctx context.Context) (Player, error)
}

// Player exposes the track metadata of one player.
type Player interface {
	Metadata(ctx context.Context) (Metadata, error)
}

// Metadata is the subset of track metadata pulsebar reads. Title is nil when
// the player did not set the tag.
type Metadata struct {
	Title  *string
	Artist []string
	Album  string
}

// Track is the data returned by a successful Collect.
type Track struct {
	Title string `json:"title"`
}

// Config holds the media collector options.
type Config struct {
	// MaxWidth truncates titles to this many terminal cells. Zero disables
	// truncation.
	MaxWidth int
}

// Collector reads the active player's title. A nil finder (no session bus
// at startup) makes every Collect fail with ErrNoPlayer.
type Collector struct {
	cfg    Config
	finder PlayerFinder

	mu      sync.Mutex
	healthy bool
}

// New creates a media collector backed by finder.
func New(cfg Config, finder PlayerFinder) *Collector {
	if cfg.MaxWidth < 0 {
		cfg.MaxWidth = 0
	}
	return &Collector{
		cfg:     cfg,
		finder:  finder,
		healthy: finder != nil,
	}
}

// Name returns the collector identifier.
func (c *Collector) Name() string {
	return "media"
}

// Healthy reports whether a player finder is available. No player playing
// is a normal state and does not make the collector unhealthy.
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

// Collect returns a Track for the active player. Every failure is reported
// as an error wrapping ErrNoPlayer.
func (c *Collector) Collect(ctx context.Context) (interface{}, error) {
	if c.finder == nil {
		c.setHealthy(false)
		return nil, ErrNoPlayer
	}
	c.setHealthy(true)

	player, err := c.finder.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPlayer, err)
	}
	if player == nil {
		return nil, ErrNoPlayer
	}

	md, err := player.Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", ErrNoPlayer, err)
	}

	var title string
	if md.Title != nil {
		title = *md.Title
	}
	if c.cfg.MaxWidth > 0 {
		title = ansi.Truncate(title, c.cfg.MaxWidth, ellipsis)
	}
	return Track{Title: title}, nil
}

// Read returns the active player's title and true, or "" and false when no
// player could be queried. It never returns an error.
func (c *Collector) Read(ctx context.Context) (string, bool) {
	data, err := c.Collect(ctx)
	if err != nil {
		return "", false
	}
	track, ok := data.(Track)
	if !ok {
		return "", false
	}
	return track.Title, true
}
