package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/recyclify/recyclify-client/internal/domain/authz"
	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/reward"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

// AdminHandler performs the user, inventory and inbox management actions.
type AdminHandler struct {
	sessions authz.SessionSource
	admin    identity.AdminRepository
	rewards  reward.Repository
	deps     Deps
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(sessions authz.SessionSource, admin identity.AdminRepository, rewards reward.Repository, deps Deps) *AdminHandler {
	return &AdminHandler{sessions: sessions, admin: admin, rewards: rewards, deps: deps.withDefaults()}
}

func (h *AdminHandler) require() error {
	_, err := authz.Require(h.sessions, shared.RoleAdmin)
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// USERS
// ══════════════════════════════════════════════════════════════════════════════

// UpdateUser saves a user row and returns the stored version.
func (h *AdminHandler) UpdateUser(ctx context.Context, user identity.ManagedUser) (*identity.ManagedUser, error) {
	if err := h.require(); err != nil {
		return nil, err
	}
	if user.ID.IsEmpty() {
		return nil, shared.FieldErrors(map[string]string{"id": "User ID is required"})
	}

	saved, err := h.admin.UpdateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	h.deps.publish(shared.NewEvent(shared.EventUserUpdated, user.ID.String(), nil))
	return saved, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INVENTORY
// ══════════════════════════════════════════════════════════════════════════════

// CreateReward adds an inventory item with its image.
func (h *AdminHandler) CreateReward(ctx context.Context, item reward.NewItem) error {
	if err := h.require(); err != nil {
		return err
	}
	if err := item.Validate(); err != nil {
		return err
	}
	if item.Image == nil || strings.TrimSpace(item.ImageName) == "" {
		return shared.FieldErrors(map[string]string{"imageFile": reward.AllFieldsRequired})
	}

	if err := h.rewards.CreateReward(ctx, item); err != nil {
		return fmt.Errorf("create reward: %w", err)
	}
	h.deps.publish(shared.NewEvent(shared.EventRewardChanged, "", map[string]any{"action": "created", "title": item.RewardTitle}))
	return nil
}

// UpdateReward saves an edited item and returns the stored version.
func (h *AdminHandler) UpdateReward(ctx context.Context, item reward.Item) (*reward.Item, error) {
	if err := h.require(); err != nil {
		return nil, err
	}
	if item.RewardID.IsEmpty() {
		return nil, shared.FieldErrors(map[string]string{"rewardID": "Reward ID is required"})
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	saved, err := h.rewards.UpdateReward(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("update reward: %w", err)
	}
	h.deps.publish(shared.NewEvent(shared.EventRewardChanged, item.RewardID.String(), map[string]any{"action": "updated"}))
	return saved, nil
}

// ToggleAvailability flips whether an item can be redeemed.
func (h *AdminHandler) ToggleAvailability(ctx context.Context, id shared.ID) (*reward.Item, error) {
	if err := h.require(); err != nil {
		return nil, err
	}

	saved, err := h.rewards.ToggleAvailability(ctx, id.String())
	if err != nil {
		return nil, fmt.Errorf("toggle availability: %w", err)
	}
	available := saved != nil && saved.IsAvailable
	h.deps.publish(shared.NewEvent(shared.EventRewardChanged, id.String(), map[string]any{"action": "toggled", "available": available}))
	return saved, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// INBOX
// ══════════════════════════════════════════════════════════════════════════════

// MarkReplied flags a contact message as answered.
func (h *AdminHandler) MarkReplied(ctx context.Context, id shared.ID) error {
	if err := h.require(); err != nil {
		return err
	}
	if err := h.admin.MarkReplied(ctx, id.String()); err != nil {
		return fmt.Errorf("mark replied: %w", err)
	}
	h.deps.publish(shared.NewEvent(shared.EventMessageReplied, id.String(), nil))
	return nil
}

// EditMessage replaces the text of a contact message, keeping its other
// fields as stored.
func (h *AdminHandler) EditMessage(ctx context.Context, id shared.ID, text string) (*identity.ContactMessage, error) {
	if err := h.require(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, shared.FieldErrors(map[string]string{"message": "Message is required"})
	}

	msgs, err := h.admin.ListMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	for _, m := range msgs {
		if m.ID != id {
			continue
		}
		m.Message = text
		if err := h.admin.UpdateMessage(ctx, m); err != nil {
			return nil, fmt.Errorf("update message: %w", err)
		}
		return &m, nil
	}
	return nil, shared.NewDomainError("command", "EditMessage", shared.ErrNotFound, "message not found")
}
