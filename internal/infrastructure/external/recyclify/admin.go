package recyclify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/reward"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER MANAGEMENT
// ══════════════════════════════════════════════════════════════════════════════

// ListUsers fetches every user account.
func (c *Client) ListUsers(ctx context.Context) ([]identity.ManagedUser, error) {
	var users []identity.ManagedUser
	if err := c.getData(ctx, "user-management", "/api/UserManagement", nil, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUser saves a user and returns the stored version.
func (c *Client) UpdateUser(ctx context.Context, user identity.ManagedUser) (*identity.ManagedUser, error) {
	resp, err := c.do(ctx, request{
		endpoint: "user-management-update",
		method:   http.MethodPut,
		path:     "/api/UserManagement/" + url.PathEscape(string(user.ID)),
		body:     user,
	})
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", user.ID, err)
	}

	updated := user
	if err := resp.data(&updated); err != nil {
		return nil, fmt.Errorf("update user %s: %w", user.ID, err)
	}
	return &updated, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REWARD INVENTORY
// ══════════════════════════════════════════════════════════════════════════════

// ListRewards fetches the reward inventory.
func (c *Client) ListRewards(ctx context.Context) ([]reward.Item, error) {
	var items []reward.Item
	if err := c.getData(ctx, "reward-items", "/api/RewardItem", nil, &items); err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return items, nil
}

// GetReward fetches one reward.
func (c *Client) GetReward(ctx context.Context, id string) (*reward.Item, error) {
	var item reward.Item
	if err := c.getData(ctx, "reward-item", "/api/RewardItem/"+url.PathEscape(id), nil, &item); err != nil {
		return nil, fmt.Errorf("get reward %s: %w", id, err)
	}
	return &item, nil
}

// CreateReward adds a reward. The form is sent as multipart with an
// optional image file.
func (c *Client) CreateReward(ctx context.Context, item reward.NewItem) error {
	req := request{
		endpoint: "reward-item-create",
		method:   http.MethodPost,
		path:     "/api/RewardItem",
		fields: [][2]string{
			{"RewardTitle", item.RewardTitle},
			{"RewardDescription", item.RewardDescription},
			{"RequiredPoints", strconv.Itoa(item.Points())},
			{"RewardQuantity", strconv.Itoa(item.Quantity())},
			{"IsAvailable", strconv.FormatBool(item.IsAvailable)},
		},
	}
	if item.Image != nil {
		req.file = &formFile{field: "ImageFile", name: item.ImageName, r: item.Image}
	}

	if _, err := c.do(ctx, req); err != nil {
		return fmt.Errorf("create reward: %w", err)
	}
	return nil
}

// UpdateReward saves a reward and returns the stored version.
func (c *Client) UpdateReward(ctx context.Context, item reward.Item) (*reward.Item, error) {
	resp, err := c.do(ctx, request{
		endpoint: "reward-item-update",
		method:   http.MethodPut,
		path:     "/api/RewardItem/" + url.PathEscape(string(item.RewardID)),
		body:     item,
	})
	if err != nil {
		return nil, fmt.Errorf("update reward %s: %w", item.RewardID, err)
	}

	updated := item
	if err := resp.data(&updated); err != nil {
		return nil, fmt.Errorf("update reward %s: %w", item.RewardID, err)
	}
	return &updated, nil
}

// ToggleAvailability flips a reward's availability.
func (c *Client) ToggleAvailability(ctx context.Context, id string) (*reward.Item, error) {
	resp, err := c.do(ctx, request{
		endpoint: "reward-item-toggle",
		method:   http.MethodPut,
		path:     "/api/RewardItem/" + url.PathEscape(id) + "/toggle-availability",
		once:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("toggle reward %s: %w", id, err)
	}

	var item reward.Item
	if err := resp.data(&item); err != nil {
		return nil, fmt.Errorf("toggle reward %s: %w", id, err)
	}
	return &item, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTACT MANAGEMENT
// ══════════════════════════════════════════════════════════════════════════════

// ListMessages fetches contact form messages. The endpoint returns a bare
// array.
func (c *Client) ListMessages(ctx context.Context) ([]identity.ContactMessage, error) {
	resp, err := c.do(ctx, request{
		endpoint: "contact-management",
		method:   http.MethodGet,
		path:     "/api/ContactManagement",
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	var messages []identity.ContactMessage
	if err := resp.raw(&messages); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// UpdateMessage saves an edited message.
func (c *Client) UpdateMessage(ctx context.Context, msg identity.ContactMessage) error {
	_, err := c.do(ctx, request{
		endpoint: "contact-management-update",
		method:   http.MethodPut,
		path:     "/api/ContactManagement/" + url.PathEscape(string(msg.ID)),
		body:     msg,
	})
	if err != nil {
		return fmt.Errorf("update message %s: %w", msg.ID, err)
	}
	return nil
}

// MarkReplied flags a message as answered.
func (c *Client) MarkReplied(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{
		endpoint: "contact-management-replied",
		method:   http.MethodPut,
		path:     "/api/ContactManagement/" + url.PathEscape(id) + "/mark-replied",
	})
	if err != nil {
		return fmt.Errorf("mark message %s replied: %w", id, err)
	}
	return nil
}
