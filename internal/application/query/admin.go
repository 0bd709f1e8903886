package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/recyclify/recyclify-client/internal/domain/authz"
	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/reward"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

// AdminHandler serves the admin management pages.
type AdminHandler struct {
	sessions authz.SessionSource
	admin    identity.AdminRepository
	rewards  reward.Repository
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(sessions authz.SessionSource, admin identity.AdminRepository, rewards reward.Repository) *AdminHandler {
	return &AdminHandler{sessions: sessions, admin: admin, rewards: rewards}
}

func (h *AdminHandler) require() error {
	_, err := authz.Require(h.sessions, shared.RoleAdmin)
	return err
}

// Users lists users whose name contains search.
func (h *AdminHandler) Users(ctx context.Context, search string) ([]identity.ManagedUser, error) {
	if err := h.require(); err != nil {
		return nil, err
	}
	users, err := h.admin.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return identity.SearchUsers(users, search), nil
}

// Rewards lists inventory items whose title contains search.
func (h *AdminHandler) Rewards(ctx context.Context, search string) ([]reward.Item, error) {
	if err := h.require(); err != nil {
		return nil, err
	}
	items, err := h.rewards.ListRewards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return reward.Search(items, search), nil
}

// Reward returns one inventory item.
func (h *AdminHandler) Reward(ctx context.Context, id shared.ID) (*reward.Item, error) {
	if err := h.require(); err != nil {
		return nil, err
	}
	item, err := h.rewards.GetReward(ctx, id.String())
	if err != nil {
		return nil, fmt.Errorf("get reward %s: %w", id, err)
	}
	return item, nil
}

// MessagesQuery filters the contact inbox.
type MessagesQuery struct {
	Search      string
	PendingOnly bool
}

// Messages lists contact messages matching q.
func (h *AdminHandler) Messages(ctx context.Context, q MessagesQuery) ([]identity.ContactMessage, error) {
	if err := h.require(); err != nil {
		return nil, err
	}
	msgs, err := h.admin.ListMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	msgs = identity.SearchMessages(msgs, q.Search)
	if q.PendingOnly {
		msgs = identity.Pending(msgs)
	}
	return msgs, nil
}

// AdminOverview summarizes the three management tables.
type AdminOverview struct {
	UsersByRole     map[shared.Role]int
	Rewards         int
	RewardsInStock  int
	Messages        int
	PendingMessages int
}

// Overview loads users, rewards and messages concurrently and counts them.
func (h *AdminHandler) Overview(ctx context.Context) (*AdminOverview, error) {
	if err := h.require(); err != nil {
		return nil, err
	}

	var (
		users []identity.ManagedUser
		items []reward.Item
		msgs  []identity.ContactMessage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if users, err = h.admin.ListUsers(gctx); err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if items, err = h.rewards.ListRewards(gctx); err != nil {
			return fmt.Errorf("list rewards: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if msgs, err = h.admin.ListMessages(gctx); err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ov := &AdminOverview{
		UsersByRole:     make(map[shared.Role]int),
		Rewards:         len(items),
		Messages:        len(msgs),
		PendingMessages: len(identity.Pending(msgs)),
	}
	for _, u := range users {
		ov.UsersByRole[u.UserRole]++
	}
	for _, it := range items {
		if it.InStock() {
			ov.RewardsInStock++
		}
	}
	return ov, nil
}
