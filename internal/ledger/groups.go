package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/splitpot/splitpot/internal/events"
	"github.com/splitpot/splitpot/internal/models"
	"github.com/splitpot/splitpot/internal/store"
)

// CreateGroup creates a group owned by creator and returns its id.
//
// The final member list is members with the creator appended if absent,
// deduplicated in first-occurrence order. Every listed member must be
// registered (ErrUserNotRegistered otherwise); nothing is written until
// all checks pass. Each final member gets a zero balance and a
// membership-index entry, and the journal opens with a MemberAdded
// entry for the creation.
func (s *Service) CreateGroup(ctx context.Context, creator models.Account, name string, members []models.Account) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.createGroup(ctx, creator, name, members)
	s.metrics.Observe("create_group", err)
	if err != nil {
		return 0, err
	}

	slog.Info("Group created", "group_id", id, "name", name, "creator", creator)
	s.publish(ctx, events.GroupCreated{GroupID: id, Name: name, Creator: creator})
	return id, nil
}

func (s *Service) createGroup(ctx context.Context, creator models.Account, name string, members []models.Account) (uint32, error) {
	if ok, err := s.isRegistered(ctx, creator); err != nil {
		return 0, err
	} else if !ok {
		return 0, fmt.Errorf("creator %s: %w", creator, ErrUserNotRegistered)
	}
	for _, m := range members {
		if ok, err := s.isRegistered(ctx, m); err != nil {
			return 0, err
		} else if !ok {
			return 0, fmt.Errorf("member %s: %w", m, ErrUserNotRegistered)
		}
	}

	// Final member set: listed members plus the creator, insertion
	// order, no duplicates.
	all := make([]models.Account, 0, len(members)+1)
	seen := make(map[models.Account]bool, len(members)+1)
	for _, m := range append(append([]models.Account{}, members...), creator) {
		if !seen[m] {
			seen[m] = true
			all = append(all, m)
		}
	}

	var counter uint32
	if _, err := s.getJSON(ctx, store.CounterKey(), &counter); err != nil {
		return 0, err
	}
	counter++

	group := models.Group{
		ID:      counter,
		Name:    name,
		Creator: creator,
		Members: all,
	}
	if err := s.setJSON(ctx, store.GroupKey(counter), group); err != nil {
		return 0, err
	}
	if err := s.setJSON(ctx, store.CounterKey(), counter); err != nil {
		return 0, err
	}

	for _, m := range all {
		if err := s.setJSON(ctx, store.BalanceKey(counter, m), int64(0)); err != nil {
			return 0, err
		}
		if err := s.indexMemberGroup(ctx, m, counter); err != nil {
			return 0, err
		}
	}

	if err := s.recordActivity(ctx, counter, models.ActivityMemberAdded, creator, "", 0); err != nil {
		return 0, err
	}
	return counter, nil
}

// AddMember appends newMember to the group. The actor must be a
// registered current member, newMember must be registered and not
// already a member.
func (s *Service) AddMember(ctx context.Context, actor models.Account, groupID uint32, newMember models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.addMember(ctx, actor, groupID, newMember)
	s.metrics.Observe("add_member", err)
	if err != nil {
		return err
	}

	slog.Info("Member added", "group_id", groupID, "member", newMember, "actor", actor)
	s.publish(ctx, events.MemberAdded{GroupID: groupID, Member: newMember, Actor: actor})
	return nil
}

func (s *Service) addMember(ctx context.Context, actor models.Account, groupID uint32, newMember models.Account) error {
	for _, account := range []models.Account{actor, newMember} {
		if ok, err := s.isRegistered(ctx, account); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%s: %w", account, ErrUserNotRegistered)
		}
	}

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(actor) {
		return fmt.Errorf("actor %s: %w", actor, ErrNotAMember)
	}
	if group.HasMember(newMember) {
		return fmt.Errorf("%s: %w", newMember, ErrAlreadyMember)
	}

	group.Members = append(group.Members, newMember)
	if err := s.setJSON(ctx, store.GroupKey(groupID), group); err != nil {
		return err
	}
	if err := s.setJSON(ctx, store.BalanceKey(groupID, newMember), int64(0)); err != nil {
		return err
	}
	if err := s.indexMemberGroup(ctx, newMember, groupID); err != nil {
		return err
	}

	return s.recordActivity(ctx, groupID, models.ActivityMemberAdded, actor, newMember, 0)
}

// DeleteGroup removes the group and all state derived from it: member
// balances, membership-index entries, the expense sequence, and the
// activity journal. Only the creator may delete a group; plain
// membership is insufficient (ErrNotAuthorized).
func (s *Service) DeleteGroup(ctx context.Context, actor models.Account, groupID uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.deleteGroup(ctx, actor, groupID)
	s.metrics.Observe("delete_group", err)
	if err != nil {
		return err
	}

	slog.Info("Group deleted", "group_id", groupID, "actor", actor)
	s.publish(ctx, events.GroupDeleted{GroupID: groupID})
	return nil
}

func (s *Service) deleteGroup(ctx context.Context, actor models.Account, groupID uint32) error {
	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if actor != group.Creator {
		return fmt.Errorf("%s is not the creator: %w", actor, ErrNotAuthorized)
	}

	for _, m := range group.Members {
		if err := s.unindexMemberGroup(ctx, m, groupID); err != nil {
			return err
		}
		if err := s.kv.Delete(ctx, store.BalanceKey(groupID, m)); err != nil {
			return err
		}
	}

	if err := s.kv.Delete(ctx, store.GroupKey(groupID)); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, store.ExpensesKey(groupID)); err != nil {
		return err
	}
	// The journal goes too: keeping it would leave unreachable keys
	// behind, since every read path starts from the group record.
	return s.kv.Delete(ctx, store.ActivitiesKey(groupID))
}

// Group returns the group record for id, or ErrGroupNotFound.
func (s *Service) Group(ctx context.Context, groupID uint32) (models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getGroup(ctx, groupID)
}

func (s *Service) getGroup(ctx context.Context, groupID uint32) (models.Group, error) {
	var group models.Group
	ok, err := s.getJSON(ctx, store.GroupKey(groupID), &group)
	if err != nil {
		return models.Group{}, err
	}
	if !ok {
		return models.Group{}, fmt.Errorf("group %d: %w", groupID, ErrGroupNotFound)
	}
	return group, nil
}

// GroupCount returns the number of groups ever created. Deleted groups
// still count: the id counter never goes backwards.
func (s *Service) GroupCount(ctx context.Context) (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counter uint32
	if _, err := s.getJSON(ctx, store.CounterKey(), &counter); err != nil {
		return 0, err
	}
	return counter, nil
}

// GroupsForMember returns the ids of every group the account belongs
// to, oldest first.
func (s *Service) GroupsForMember(ctx context.Context, account models.Account) ([]uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []uint32
	if _, err := s.getJSON(ctx, store.MemberGroupsKey(account), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GroupWithBalances returns the group joined with every member's
// display name and current balance, in member order.
func (s *Service) GroupWithBalances(ctx context.Context, groupID uint32) (models.GroupWithBalances, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, err := s.getGroup(ctx, groupID)
	if err != nil {
		return models.GroupWithBalances{}, err
	}

	view := models.GroupWithBalances{
		ID:      group.ID,
		Name:    group.Name,
		Creator: group.Creator,
		Members: make([]models.MemberBalance, 0, len(group.Members)),
	}
	for _, m := range group.Members {
		balance, err := s.balance(ctx, groupID, m)
		if err != nil {
			return models.GroupWithBalances{}, err
		}
		name, err := s.displayName(ctx, m)
		if err != nil {
			return models.GroupWithBalances{}, err
		}
		view.Members = append(view.Members, models.MemberBalance{
			Account: m,
			Name:    name,
			Balance: balance,
		})
	}
	return view, nil
}

// indexMemberGroup adds groupID to account's membership index unless
// already present, keeping the index duplicate-free.
func (s *Service) indexMemberGroup(ctx context.Context, account models.Account, groupID uint32) error {
	var ids []uint32
	if _, err := s.getJSON(ctx, store.MemberGroupsKey(account), &ids); err != nil {
		return err
	}
	for _, id := range ids {
		if id == groupID {
			return nil
		}
	}
	return s.setJSON(ctx, store.MemberGroupsKey(account), append(ids, groupID))
}

// unindexMemberGroup removes the first occurrence of groupID from
// account's membership index.
func (s *Service) unindexMemberGroup(ctx context.Context, account models.Account, groupID uint32) error {
	var ids []uint32
	if _, err := s.getJSON(ctx, store.MemberGroupsKey(account), &ids); err != nil {
		return err
	}
	for i, id := range ids {
		if id == groupID {
			return s.setJSON(ctx, store.MemberGroupsKey(account), append(ids[:i], ids[i+1:]...))
		}
	}
	return nil
}
