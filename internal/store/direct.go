package store

import (
	"sort"
	"sync"

	"HelpBeacon/internal/models"
	"HelpBeacon/pkg/util"
)

// DirectMessageStore holds the private threads attached to help alerts.
// Messages reference alerts by id only and outlive them if the alert expires first.
type DirectMessageStore struct {
	mu       sync.Mutex
	clock    util.Clock
	ids      util.IDGenerator
	messages []models.DirectMessage
}

func NewDirectMessageStore(clock util.Clock, ids util.IDGenerator) *DirectMessageStore {
	return &DirectMessageStore{clock: clock, ids: ids}
}

// List returns the thread for alertID, oldest first.
func (s *DirectMessageStore) List(alertID string) []models.DirectMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	out := make([]models.DirectMessage, 0)
	for _, m := range s.messages {
		if m.AlertID == alertID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out
}

// Post appends a message to alertID's thread.
func (s *DirectMessageStore) Post(alertID string, in models.DirectMessageForm) (models.DirectMessage, error) {
	if err := requireID("fromId", in.FromID); err != nil {
		return models.DirectMessage{}, err
	}
	if err := requireID("text", in.Text); err != nil {
		return models.DirectMessage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	msg := models.DirectMessage{
		ID:        s.ids(),
		AlertID:   alertID,
		FromID:    in.FromID,
		FromName:  util.Coalesce(in.FromName, models.DefaultDirectSenderName),
		Text:      util.Truncate(in.Text, util.MaxTextLength),
		CreatedAt: s.clock.Now().UnixMilli(),
	}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *DirectMessageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *DirectMessageStore) pruneLocked() {
	s.messages = pruneFront(s.messages, s.clock.Now(), DirectMessageTTL,
		func(m models.DirectMessage) int64 { return m.CreatedAt })
}
