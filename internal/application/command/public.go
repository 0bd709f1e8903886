package command

import (
	"context"
	"fmt"

	"github.com/recyclify/recyclify-client/config"
	"github.com/recyclify/recyclify-client/internal/domain/authz"
	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

// ContactSentMessage is shown once the contact form is accepted.
const ContactSentMessage = "Message sent successfully!"

// PublicHandler serves the contact form and the EcoPilot assistant.
type PublicHandler struct {
	sessions authz.SessionSource
	public   identity.PublicRepository
	deps     Deps
}

// NewPublicHandler creates a PublicHandler.
func NewPublicHandler(sessions authz.SessionSource, public identity.PublicRepository, deps Deps) *PublicHandler {
	return &PublicHandler{sessions: sessions, public: public, deps: deps.withDefaults()}
}

// SubmitContactForm sends a contact message. No sign-in is needed.
func (h *PublicHandler) SubmitContactForm(ctx context.Context, form identity.ContactForm) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}
	if err := h.public.SubmitContactForm(ctx, form); err != nil {
		return "", fmt.Errorf("submit contact form: %w", err)
	}
	return ContactSentMessage, nil
}

// AskEcoPilot asks the recycling assistant a question and returns its answer.
func (h *PublicHandler) AskEcoPilot(ctx context.Context, prompt identity.EcoPilotPrompt) (string, error) {
	user, err := authz.Require(h.sessions, shared.RoleAny)
	if err != nil {
		return "", err
	}
	if err := h.deps.requireFeature("AskEcoPilot", config.FeatureEcoPilot, user); err != nil {
		return "", err
	}
	if err := prompt.Validate(); err != nil {
		return "", err
	}

	answer, err := h.public.AskEcoPilot(ctx, prompt.UserPrompt)
	if err != nil {
		return "", fmt.Errorf("ask ecopilot: %w", err)
	}
	return answer, nil
}
