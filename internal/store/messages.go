package store

import (
	"sort"
	"sync"

	"HelpBeacon/internal/models"
	"HelpBeacon/pkg/util"
)

// MessageStore is the bounded public chat log.
type MessageStore struct {
	mu       sync.Mutex
	clock    util.Clock
	ids      util.IDGenerator
	messages []models.PublicMessage
}

func NewMessageStore(clock util.Clock, ids util.IDGenerator) *MessageStore {
	return &MessageStore{clock: clock, ids: ids}
}

// Post appends a message, ages out old ones and trims to PublicMessageCap.
func (s *MessageStore) Post(in models.PublicMessageForm) (models.PublicMessage, error) {
	if err := requireID("fromId", in.FromID); err != nil {
		return models.PublicMessage{}, err
	}
	p, err := requirePoint(in.Latitude, in.Longitude)
	if err != nil {
		return models.PublicMessage{}, err
	}
	if err := requireID("text", in.Text); err != nil {
		return models.PublicMessage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	msg := models.PublicMessage{
		ID:         s.ids(),
		FromID:     in.FromID,
		FromName:   util.Coalesce(in.FromName, models.DefaultDisplayName),
		Profession: util.Coalesce(in.Profession, models.DefaultProfession),
		Latitude:   p.Lat,
		Longitude:  p.Lng,
		Text:       util.Truncate(in.Text, util.MaxTextLength),
		CreatedAt:  now.UnixMilli(),
	}
	s.messages = append(s.messages, msg)
	s.pruneLocked()
	if n := len(s.messages); n > PublicMessageCap {
		s.messages = append(s.messages[:0], s.messages[n-PublicMessageCap:]...)
	}
	return msg, nil
}

// Nearby returns live messages posted within the radius, oldest first.
func (s *MessageStore) Nearby(q models.NearbyQuery) ([]models.PublicMessage, error) {
	if err := checkQuery(q); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	out := make([]models.PublicMessage, 0)
	for _, m := range s.messages {
		if _, ok := q.Center.Within(m.Point(), q.RadiusKm); ok {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (s *MessageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *MessageStore) pruneLocked() {
	s.messages = pruneFront(s.messages, s.clock.Now(), PublicMessageTTL,
		func(m models.PublicMessage) int64 { return m.CreatedAt })
}
