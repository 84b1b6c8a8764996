package store

import (
	"sort"
	"sync"

	"HelpBeacon/internal/models"
	"HelpBeacon/pkg/util"
)

// PresenceStore keeps the latest location report per device id.
type PresenceStore struct {
	mu      sync.Mutex
	clock   util.Clock
	records map[string]models.PresenceRecord
}

func NewPresenceStore(clock util.Clock) *PresenceStore {
	return &PresenceStore{
		clock:   clock,
		records: make(map[string]models.PresenceRecord),
	}
}

// Report upserts the caller's record and then prunes stale ones.
func (s *PresenceStore) Report(in models.PresenceReport) error {
	if err := requireID("id", in.ID); err != nil {
		return err
	}
	p, err := requirePoint(in.Latitude, in.Longitude)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.records[in.ID] = models.PresenceRecord{
		ID:         in.ID,
		Name:       util.Coalesce(in.Name, models.DefaultDisplayName),
		Profession: util.Coalesce(in.Profession, models.DefaultProfession),
		Latitude:   p.Lat,
		Longitude:  p.Lng,
		LastSeen:   now.UnixMilli(),
	}
	s.pruneLocked()
	return nil
}

// Nearby returns live records within the radius, closest first.
func (s *PresenceStore) Nearby(q models.NearbyQuery) ([]models.NearbyUser, error) {
	if err := checkQuery(q); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	out := make([]models.NearbyUser, 0)
	for id, r := range s.records {
		if q.ExcludeID != "" && id == q.ExcludeID {
			continue
		}
		d, ok := q.Center.Within(r.Point(), q.RadiusKm)
		if !ok {
			continue
		}
		out = append(out, models.NearbyUser{
			ID:         r.ID,
			Name:       r.Name,
			Profession: r.Profession,
			Latitude:   r.Latitude,
			Longitude:  r.Longitude,
			DistanceKm: d,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Len returns the number of stored records, stale ones included.
func (s *PresenceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *PresenceStore) pruneLocked() {
	now := s.clock.Now()
	for id, r := range s.records {
		if expired(now, r.LastSeen, PresenceTTL) {
			delete(s.records, id)
		}
	}
}
