package recyclify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/recyclify/recyclify-client/internal/domain/identity"
)

// SubmitContactForm sends a message to the Recyclify team.
func (c *Client) SubmitContactForm(ctx context.Context, form identity.ContactForm) error {
	_, err := c.do(ctx, request{
		endpoint: "contact-form",
		method:   http.MethodPost,
		path:     "/api/ContactForm",
		body:     form,
	})
	if err != nil {
		return fmt.Errorf("submit contact form: %w", err)
	}
	return nil
}

// AskEcoPilot sends a prompt to the recycling assistant and returns its
// answer. The endpoint replies with a bare JSON string.
func (c *Client) AskEcoPilot(ctx context.Context, prompt string) (string, error) {
	resp, err := c.do(ctx, request{
		endpoint: "chat-completion",
		method:   http.MethodPost,
		path:     "/api/chat-completion/prompt",
		body:     identity.EcoPilotPrompt{UserPrompt: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("ask ecopilot: %w", err)
	}

	var answer string
	if err := resp.raw(&answer); err != nil {
		// Some deployments return plain text.
		return string(resp.body), nil
	}
	return answer, nil
}
