package ledger

import (
	"context"

	"github.com/splitpot/splitpot/internal/models"
	"github.com/splitpot/splitpot/internal/store"
)

// recordActivity appends one entry to the group's journal. The id is
// the journal length plus one, which keeps ids 1-based and gap-free
// under serialized mutation. Called by every mutating operation while
// the write lock is held.
func (s *Service) recordActivity(ctx context.Context, groupID uint32, kind models.ActivityKind, actor, recipient models.Account, amount int64) error {
	var activities []models.Activity
	if _, err := s.getJSON(ctx, store.ActivitiesKey(groupID), &activities); err != nil {
		return err
	}

	activities = append(activities, models.Activity{
		ID:        uint32(len(activities)) + 1,
		Kind:      kind,
		Actor:     actor,
		Recipient: recipient,
		Amount:    amount,
		Timestamp: s.timestamp(),
	})
	return s.setJSON(ctx, store.ActivitiesKey(groupID), activities)
}

// Activities returns the group's journal, oldest first. Unknown groups
// yield an empty journal.
func (s *Service) Activities(ctx context.Context, groupID uint32) ([]models.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var activities []models.Activity
	if _, err := s.getJSON(ctx, store.ActivitiesKey(groupID), &activities); err != nil {
		return nil, err
	}
	return activities, nil
}
