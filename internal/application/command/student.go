package command

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/recyclify/recyclify-client/config"
	"github.com/recyclify/recyclify-client/internal/domain/authz"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/internal/domain/student"
	"github.com/recyclify/recyclify-client/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLAIM STREAK GIFT
// ══════════════════════════════════════════════════════════════════════════════

// GiftClaim is the outcome of a streak gift claim.
type GiftClaim struct {
	PointsAwarded int
	Balance       int // spendable points after the award
	Streak        int
}

// ClaimStreakGiftHandler claims the weekly streak gift.
type ClaimStreakGiftHandler struct {
	sessions authz.SessionSource
	students student.Repository
	deps     Deps
	now      func() time.Time
}

// NewClaimStreakGiftHandler creates a ClaimStreakGiftHandler.
func NewClaimStreakGiftHandler(sessions authz.SessionSource, students student.Repository, deps Deps) *ClaimStreakGiftHandler {
	return &ClaimStreakGiftHandler{sessions: sessions, students: students, deps: deps.withDefaults(), now: time.Now}
}

// Handle re-reads the student so the eligibility check uses the current
// streak, then asks the backend for the award.
func (h *ClaimStreakGiftHandler) Handle(ctx context.Context) (*GiftClaim, error) {
	user, err := authz.Require(h.sessions, shared.RoleStudent)
	if err != nil {
		return nil, err
	}
	if err := h.deps.requireFeature("ClaimStreakGift", config.FeatureStreakGift, user); err != nil {
		return nil, err
	}

	id := user.ID.String()
	s, err := h.students.GetStudent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if s == nil {
		return nil, shared.ErrStudentNotFound
	}
	if !s.GiftStatus(h.now()).Claimable {
		return nil, shared.ErrGiftNotClaimable
	}

	points, err := h.students.AwardGift(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("award gift: %w", err)
	}
	s.AddPoints(points)

	h.deps.Logger.Info("streak gift claimed", logger.UserID(id), logger.PointsAwarded(points))
	h.deps.publish(shared.NewStreakGiftClaimedEvent(id, s.Streak, points))
	return &GiftClaim{PointsAwarded: points, Balance: s.CurrentPoints, Streak: s.Streak}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RECOGNISE IMAGE
// ══════════════════════════════════════════════════════════════════════════════

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".heic": true}

// RecogniseImageCommand uploads an item photo.
type RecogniseImageCommand struct {
	Filename string
	Image    io.Reader
}

// Validate checks that a supported image was given.
func (c RecogniseImageCommand) Validate() error {
	if c.Image == nil || strings.TrimSpace(c.Filename) == "" {
		return shared.FieldErrors(map[string]string{"file": "Please select an image"})
	}
	if !imageExtensions[strings.ToLower(filepath.Ext(c.Filename))] {
		return shared.FieldErrors(map[string]string{"file": "Only image files can be scanned"})
	}
	return nil
}

// RecogniseImageHandler classifies a scanned item.
type RecogniseImageHandler struct {
	sessions authz.SessionSource
	students student.Repository
	deps     Deps
}

// NewRecogniseImageHandler creates a RecogniseImageHandler.
func NewRecogniseImageHandler(sessions authz.SessionSource, students student.Repository, deps Deps) *RecogniseImageHandler {
	return &RecogniseImageHandler{sessions: sessions, students: students, deps: deps.withDefaults()}
}

func (h *RecogniseImageHandler) Handle(ctx context.Context, cmd RecogniseImageCommand) (*student.Recognition, error) {
	user, err := authz.Require(h.sessions, shared.RoleStudent)
	if err != nil {
		return nil, err
	}
	if err := h.deps.requireFeature("RecogniseImage", config.FeatureImageRecognition, user); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	rec, err := h.students.RecogniseImage(ctx, filepath.Base(cmd.Filename), cmd.Image)
	if err != nil {
		return nil, fmt.Errorf("recognise image: %w", err)
	}
	h.deps.publish(shared.NewEvent(shared.EventItemRecognised, user.ID.String(), map[string]any{
		"category":   rec.Category,
		"recyclable": rec.Recyclable,
	}))
	return rec, nil
}
