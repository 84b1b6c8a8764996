// Package store holds the four in-memory registries. Each registry owns its
// own lock and prunes expired entries at the start of every operation; there
// is no background sweeper.
package store

import (
	"time"

	"HelpBeacon/internal/models"
	"HelpBeacon/pkg/errors"
	"HelpBeacon/pkg/geo"
	"HelpBeacon/pkg/util"
)

const (
	PresenceTTL      = 2 * time.Minute
	PublicMessageTTL = 30 * time.Minute
	PublicMessageCap = 200
	HelpAlertTTL     = time.Hour
	DirectMessageTTL = time.Hour
)

// Stores bundles one instance of every registry. Built once per process.
type Stores struct {
	Presence *PresenceStore
	Messages *MessageStore
	Alerts   *AlertStore
	Direct   *DirectMessageStore
}

// New builds all registries on the given clock and id generator.
// nil arguments fall back to the wall clock and util.NewID.
func New(clock util.Clock, ids util.IDGenerator) *Stores {
	if clock == nil {
		clock = util.SystemClock()
	}
	if ids == nil {
		ids = util.NewID
	}
	return &Stores{
		Presence: NewPresenceStore(clock),
		Messages: NewMessageStore(clock, ids),
		Alerts:   NewAlertStore(clock, ids),
		Direct:   NewDirectMessageStore(clock, ids),
	}
}

// Sizes reports the current length of every registry without pruning.
func (s *Stores) Sizes() map[string]int {
	return map[string]int{
		"presence":        s.Presence.Len(),
		"messages":        s.Messages.Len(),
		"help_alerts":     s.Alerts.Len(),
		"direct_messages": s.Direct.Len(),
	}
}

// expired reports whether a timestamp (unix ms) is older than ttl at now.
func expired(now time.Time, ts int64, ttl time.Duration) bool {
	return now.UnixMilli()-ts > ttl.Milliseconds()
}

// pruneFront drops the leading entries older than ttl. Entries are appended in
// creation order, so the first survivor ends the scan.
func pruneFront[T any](items []T, now time.Time, ttl time.Duration, createdAt func(T) int64) []T {
	i := 0
	for i < len(items) && expired(now, createdAt(items[i]), ttl) {
		i++
	}
	if i == 0 {
		return items
	}
	return append(items[:0], items[i:]...)
}

func requireID(field, v string) error {
	if v == "" {
		return errors.Validation("%s is required", field)
	}
	return nil
}

func requirePoint(lat, lng *float64) (geo.Point, error) {
	if lat == nil || lng == nil {
		return geo.Point{}, errors.Validation("latitude and longitude are required")
	}
	p := geo.Point{Lat: *lat, Lng: *lng}
	if !p.Valid() {
		return geo.Point{}, errors.Validation("latitude and longitude must be finite numbers")
	}
	return p, nil
}

func checkQuery(q models.NearbyQuery) error {
	if !q.Center.Valid() {
		return errors.Validation("lat and lng must be numbers")
	}
	return nil
}
