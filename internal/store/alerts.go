package store

import (
	"sort"
	"sync"

	"HelpBeacon/internal/models"
	"HelpBeacon/pkg/errors"
	"HelpBeacon/pkg/util"
)

// AlertStore holds help alerts for HelpAlertTTL regardless of acceptance.
type AlertStore struct {
	mu     sync.Mutex
	clock  util.Clock
	ids    util.IDGenerator
	alerts []models.HelpAlert
}

func NewAlertStore(clock util.Clock, ids util.IDGenerator) *AlertStore {
	return &AlertStore{clock: clock, ids: ids}
}

// Create stores a new open alert.
func (s *AlertStore) Create(in models.HelpAlertForm) (models.HelpAlert, error) {
	if err := requireID("fromId", in.FromID); err != nil {
		return models.HelpAlert{}, err
	}
	if err := requireID("message", in.Message); err != nil {
		return models.HelpAlert{}, err
	}
	p, err := requirePoint(in.Latitude, in.Longitude)
	if err != nil {
		return models.HelpAlert{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alert := models.HelpAlert{
		ID:        s.ids(),
		Type:      util.Coalesce(in.Type, models.DefaultAlertType),
		Message:   util.Truncate(in.Message, util.MaxTextLength),
		Latitude:  p.Lat,
		Longitude: p.Lng,
		FromID:    in.FromID,
		FromName:  util.Coalesce(in.FromName, models.DefaultDisplayName),
		Phone:     models.OptionalString(in.Phone),
		CreatedAt: s.clock.Now().UnixMilli(),
	}
	s.alerts = append(s.alerts, alert)
	s.pruneLocked()
	return alert, nil
}

// Nearby returns live alerts within the radius, newest first. Alerts raised
// by q.ExcludeID are skipped.
func (s *AlertStore) Nearby(q models.NearbyQuery) ([]models.HelpAlert, error) {
	if err := checkQuery(q); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	out := make([]models.HelpAlert, 0)
	for _, a := range s.alerts {
		if q.ExcludeID != "" && a.FromID == q.ExcludeID {
			continue
		}
		if _, ok := q.Center.Within(a.Point(), q.RadiusKm); ok {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// Get returns the alert, or a NotFound error if it never existed or expired.
func (s *AlertStore) Get(id string) (models.HelpAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	i := s.indexLocked(id)
	if i < 0 {
		return models.HelpAlert{}, errors.NotFound("help alert not found")
	}
	return s.alerts[i], nil
}

// Accept records the helper on the alert. An already accepted alert is
// reassigned to the new helper.
func (s *AlertStore) Accept(id string, in models.AcceptForm) (models.HelpAlert, error) {
	if err := requireID("helperId", in.HelperID); err != nil {
		return models.HelpAlert{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	i := s.indexLocked(id)
	if i < 0 {
		return models.HelpAlert{}, errors.NotFound("help alert not found")
	}

	acceptedAt := s.clock.Now().UnixMilli()
	a := &s.alerts[i]
	a.AcceptedByID = models.OptionalString(in.HelperID)
	a.AcceptedByName = models.OptionalString(util.Coalesce(in.HelperName, models.DefaultHelperName))
	a.AcceptedByPhone = models.OptionalString(in.HelperPhone)
	a.AcceptedAt = &acceptedAt
	return *a, nil
}

func (s *AlertStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

func (s *AlertStore) indexLocked(id string) int {
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *AlertStore) pruneLocked() {
	s.alerts = pruneFront(s.alerts, s.clock.Now(), HelpAlertTTL,
		func(a models.HelpAlert) int64 { return a.CreatedAt })
}
