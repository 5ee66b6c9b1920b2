package media

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	mprisBusPrefix      = "org.mpris.MediaPlayer2."
	mprisObjectPath     = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	mprisPlayerIface    = "org.mpris.MediaPlayer2.Player"
	propertiesGetMethod = "org.freedesktop.DBus.Properties.Get"
	listNamesMethod     = "org.freedesktop.DBus.ListNames"
)

var errNoMPRISPlayers = errors.New("no MPRIS players on the session bus")

// MPRISFinder discovers players on a long-lived D-Bus connection. Players
// are re-resolved on every call so that players appearing or vanishing
// between ticks are picked up without reconnecting.
type MPRISFinder struct {
	conn *dbus.Conn
}

// NewMPRISFinder connects to the session bus. The connection is shared by
// all later calls and released by Close.
func NewMPRISFinder() (*MPRISFinder, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &MPRISFinder{conn: conn}, nil
}

// Close releases the bus connection.
func (f *MPRISFinder) Close() error {
	return f.conn.Close()
}

// FindActive returns the player to display: the first one playing, else
// the first one paused, else the first one found.
func (f *MPRISFinder) FindActive(ctx context.Context) (Player, error) {
	names, err := f.playerNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errNoMPRISPlayers
	}

	statuses := make(map[string]string, len(names))
	for _, name := range names {
		status, err := f.playbackStatus(ctx, name)
		if err != nil {
			continue
		}
		statuses[name] = status
	}

	return &mprisPlayer{conn: f.conn, name: pickActive(names, statuses)}, nil
}

func (f *MPRISFinder) playerNames(ctx context.Context) ([]string, error) {
	var all []string
	if err := f.conn.BusObject().CallWithContext(ctx, listNamesMethod, 0).Store(&all); err != nil {
		return nil, fmt.Errorf("list bus names: %w", err)
	}
	var names []string
	for _, n := range all {
		if strings.HasPrefix(n, mprisBusPrefix) {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *MPRISFinder) playbackStatus(ctx context.Context, name string) (string, error) {
	v, err := getProperty(ctx, f.conn, name, "PlaybackStatus")
	if err != nil {
		return "", err
	}
	s, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("PlaybackStatus of %s has type %s", name, v.Signature())
	}
	return s, nil
}

// pickActive applies the playing > paused > first preference to names,
// which must be non-empty.
func pickActive(names []string, statuses map[string]string) string {
	for _, want := range []string{"Playing", "Paused"} {
		for _, n := range names {
			if statuses[n] == want {
				return n
			}
		}
	}
	return names[0]
}

type mprisPlayer struct {
	conn *dbus.Conn
	name string
}

func (p *mprisPlayer) Metadata(ctx context.Context) (Metadata, error) {
	v, err := getProperty(ctx, p.conn, p.name, "Metadata")
	if err != nil {
		return Metadata{}, err
	}
	raw, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		return Metadata{}, fmt.Errorf("Metadata of %s has type %s", p.name, v.Signature())
	}
	return parseMetadata(raw), nil
}

// parseMetadata extracts the xesam fields pulsebar cares about. Entries of
// an unexpected type are ignored.
func parseMetadata(raw map[string]dbus.Variant) Metadata {
	var md Metadata
	if v, ok := raw["xesam:title"]; ok {
		if s, ok := v.Value().(string); ok {
			md.Title = &s
		}
	}
	if v, ok := raw["xesam:artist"]; ok {
		if s, ok := v.Value().([]string); ok {
			md.Artist = s
		}
	}
	if v, ok := raw["xesam:album"]; ok {
		if s, ok := v.Value().(string); ok {
			md.Album = s
		}
	}
	return md
}

func getProperty(ctx context.Context, conn *dbus.Conn, dest, prop string) (dbus.Variant, error) {
	var v dbus.Variant
	obj := conn.Object(dest, mprisObjectPath)
	if err := obj.CallWithContext(ctx, propertiesGetMethod, 0, mprisPlayerIface, prop).Store(&v); err != nil {
		return dbus.Variant{}, fmt.Errorf("get %s.%s: %w", dest, prop, err)
	}
	return v, nil
}
