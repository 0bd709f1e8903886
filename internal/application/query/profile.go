package query

import (
	"context"

	"github.com/recyclify/recyclify-client/internal/domain/authz"
	"github.com/recyclify/recyclify-client/internal/domain/session"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/pkg/logger"
)

// ImageRepository resolves profile images.
type ImageRepository interface {
	GetAvatar(ctx context.Context, userID string) (string, error)
	GetBanner(ctx context.Context, userID string) (string, error)
}

// Profile is the signed-in user with resolved image URLs.
type Profile struct {
	User      session.UserProfile
	AvatarURL string
	BannerURL string
}

// ProfileHandler loads the profile banner shown on every signed-in page.
type ProfileHandler struct {
	sessions authz.SessionSource
	images   ImageRepository
	log      *logger.Logger
}

// NewProfileHandler creates a ProfileHandler. images may be nil.
func NewProfileHandler(sessions authz.SessionSource, images ImageRepository, log *logger.Logger) *ProfileHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ProfileHandler{sessions: sessions, images: images, log: log}
}

// Handle returns the profile. Missing images are left empty: a broken
// avatar never blocks the page.
func (h *ProfileHandler) Handle(ctx context.Context) (*Profile, error) {
	user, err := authz.Require(h.sessions, shared.RoleAny)
	if err != nil {
		return nil, err
	}

	p := &Profile{User: *user, AvatarURL: user.Avatar, BannerURL: user.Banner}
	if h.images == nil {
		return p, nil
	}

	id := user.ID.String()
	if url, err := h.images.GetAvatar(ctx, id); err != nil {
		h.log.Debug("avatar unavailable", logger.UserID(id), logger.Err(err))
	} else if url != "" {
		p.AvatarURL = url
	}
	if url, err := h.images.GetBanner(ctx, id); err != nil {
		h.log.Debug("banner unavailable", logger.UserID(id), logger.Err(err))
	} else if url != "" {
		p.BannerURL = url
	}
	return p, nil
}
