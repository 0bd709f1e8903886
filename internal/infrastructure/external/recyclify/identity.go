package recyclify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/session"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IDENTITY OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetUserDetails fetches the profile of the user owning token with one
// request. The endpoint returns the profile without an envelope.
func (c *Client) GetUserDetails(ctx context.Context, token string) (*session.UserProfile, error) {
	resp, err := c.do(ctx, request{
		endpoint: "getUserDetails",
		method:   http.MethodGet,
		path:     "/api/Identity/getUserDetails",
		token:    &token,
		once:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("get user details: %w", err)
	}

	var profile session.UserProfile
	if err := resp.raw(&profile); err != nil {
		return nil, fmt.Errorf("get user details: %w", err)
	}
	return &profile, nil
}

// CreateAccount registers a parent and returns the success message.
func (c *Client) CreateAccount(ctx context.Context, form identity.ParentRegistration) (string, error) {
	resp, err := c.do(ctx, request{
		endpoint: "createAccount",
		method:   http.MethodPost,
		path:     "/api/Identity/createAccount",
		body:     form,
	})
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}
	return resp.message(), nil
}

// VerifyContact submits the SMS code and returns the verified user's role.
func (c *Client) VerifyContact(ctx context.Context, code string) (shared.Role, error) {
	resp, err := c.do(ctx, request{
		endpoint: "verifyContact",
		method:   http.MethodPost,
		path:     "/api/Identity/verifyContact",
		body:     map[string]string{"code": code},
	})
	if err != nil {
		return "", fmt.Errorf("verify contact: %w", err)
	}

	var out struct {
		UserRole shared.Role `json:"userRole"`
	}
	if err := resp.raw(&out); err != nil {
		return "", fmt.Errorf("verify contact: %w", err)
	}
	return out.UserRole, nil
}

// SendContactVerification asks the backend to text a new code.
func (c *Client) SendContactVerification(ctx context.Context) error {
	_, err := c.do(ctx, request{
		endpoint: "contactVerification",
		method:   http.MethodPost,
		path:     "/api/Identity/contactVerification",
	})
	if err != nil {
		return fmt.Errorf("send contact verification: %w", err)
	}
	return nil
}

// DeleteAccount deletes the signed-in user's account.
func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	_, err := c.do(ctx, request{
		endpoint: "deleteAccount",
		method:   http.MethodDelete,
		path:     "/api/Identity/deleteAccount",
		body:     map[string]string{"password": password},
	})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// GetAvatar returns the avatar URL of userID, or "" when none is set.
func (c *Client) GetAvatar(ctx context.Context, userID string) (string, error) {
	var out struct {
		AvatarURL string `json:"avatarUrl"`
	}
	if err := c.getImage(ctx, "getAvatar", userID, &out); err != nil {
		return "", fmt.Errorf("get avatar: %w", err)
	}
	return out.AvatarURL, nil
}

// GetBanner returns the banner URL of userID, or "" when none is set.
func (c *Client) GetBanner(ctx context.Context, userID string) (string, error) {
	var out struct {
		BannerURL string `json:"bannerUrl"`
	}
	if err := c.getImage(ctx, "getBanner", userID, &out); err != nil {
		return "", fmt.Errorf("get banner: %w", err)
	}
	return out.BannerURL, nil
}

func (c *Client) getImage(ctx context.Context, endpoint, userID string, out any) error {
	resp, err := c.do(ctx, request{
		endpoint: endpoint,
		method:   http.MethodGet,
		path:     "/api/Identity/" + endpoint,
		query:    url.Values{"userId": {userID}},
	})
	if err != nil {
		return err
	}
	return resp.raw(out)
}
