package command

import (
	"context"
	"fmt"

	"github.com/recyclify/recyclify-client/config"
	"github.com/recyclify/recyclify-client/internal/domain/authz"
	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/leaderboard"
	"github.com/recyclify/recyclify-client/internal/domain/session"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/internal/domain/student"
	"github.com/recyclify/recyclify-client/pkg/logger"
)

// TeacherHandler performs the class dashboard actions. After every change
// it drops the leaderboard cache so the next render refetches.
type TeacherHandler struct {
	sessions authz.SessionSource
	classes  leaderboard.Repository
	cache    leaderboard.Cache
	deps     Deps
}

// NewTeacherHandler creates a TeacherHandler. cache may be nil.
func NewTeacherHandler(sessions authz.SessionSource, classes leaderboard.Repository, cache leaderboard.Cache, deps Deps) *TeacherHandler {
	return &TeacherHandler{sessions: sessions, classes: classes, cache: cache, deps: deps.withDefaults()}
}

func (h *TeacherHandler) require() (*session.UserProfile, error) {
	return authz.Require(h.sessions, shared.RoleTeacher)
}

func (h *TeacherHandler) changed(ctx context.Context, ev shared.Event) {
	if h.cache != nil {
		if err := h.cache.Invalidate(ctx); err != nil {
			h.deps.Logger.Warn("leaderboard cache invalidation failed", logger.Err(err))
		}
	}
	h.deps.publish(ev)
}

// UpdateStudent saves a student's names and email.
func (h *TeacherHandler) UpdateStudent(ctx context.Context, edit identity.StudentEdit) error {
	if _, err := h.require(); err != nil {
		return err
	}
	if err := edit.Validate(); err != nil {
		return err
	}

	err := h.classes.UpdateStudent(ctx, leaderboard.StudentUpdate{
		StudentID: edit.StudentID,
		FName:     edit.FName,
		LName:     edit.LName,
		Email:     edit.Email,
	})
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	h.changed(ctx, shared.NewEvent(shared.EventStudentUpdated, edit.StudentID, nil))
	return nil
}

// DeleteStudent removes a student.
func (h *TeacherHandler) DeleteStudent(ctx context.Context, studentID shared.ID) error {
	if _, err := h.require(); err != nil {
		return err
	}
	if studentID.IsEmpty() {
		return shared.FieldErrors(map[string]string{"studentID": "StudentID is required"})
	}

	if err := h.classes.DeleteStudent(ctx, studentID.String()); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	h.changed(ctx, shared.NewEvent(shared.EventStudentDeleted, studentID.String(), nil))
	return nil
}

// SendUpdateEmailCommand selects a student and who gets the email.
type SendUpdateEmailCommand struct {
	ClassID    shared.ID
	StudentID  shared.ID
	Recipients []student.Recipient
}

// SendUpdateEmail emails a progress update. The student's email and parent
// are read from the class roster.
func (h *TeacherHandler) SendUpdateEmail(ctx context.Context, cmd SendUpdateEmailCommand) error {
	if _, err := h.require(); err != nil {
		return err
	}
	if len(cmd.Recipients) == 0 {
		return shared.FieldErrors(map[string]string{"recipients": "Select at least one recipient"})
	}

	roster, err := h.classes.GetStudents(ctx, cmd.ClassID.String())
	if err != nil {
		return fmt.Errorf("get students: %w", err)
	}
	var target *student.Student
	for i := range roster {
		if roster[i].StudentID == cmd.StudentID {
			target = &roster[i]
			break
		}
	}
	if target == nil {
		return shared.ErrStudentNotFound
	}
	target.ClassID = cmd.ClassID

	if err := h.classes.SendUpdateEmail(ctx, leaderboard.NewUpdateEmail(*target, cmd.Recipients)); err != nil {
		return fmt.Errorf("send update email: %w", err)
	}
	return nil
}

// RegenerateQuests replaces a class's quests.
func (h *TeacherHandler) RegenerateQuests(ctx context.Context, classID shared.ID) error {
	user, err := h.require()
	if err != nil {
		return err
	}
	if err := h.deps.requireFeature("RegenerateQuests", config.FeatureQuestRegeneration, user); err != nil {
		return err
	}

	if err := h.classes.RegenerateQuests(ctx, classID.String(), user.ID.String()); err != nil {
		return fmt.Errorf("regenerate quests: %w", err)
	}
	h.changed(ctx, shared.NewEvent(shared.EventQuestsRegenerated, classID.String(), map[string]any{"teacher_id": user.ID.String()}))
	return nil
}

// SendCertificate emails a certificate to the class's top contributor and
// returns who received it.
func (h *TeacherHandler) SendCertificate(ctx context.Context, classID shared.ID) (student.Student, error) {
	if _, err := h.require(); err != nil {
		return student.Student{}, err
	}

	roster, err := h.classes.GetStudents(ctx, classID.String())
	if err != nil {
		return student.Student{}, fmt.Errorf("get students: %w", err)
	}
	top, err := leaderboard.TopContributor(roster)
	if err != nil {
		return student.Student{}, err
	}
	if top.Email() == student.NotAvailable {
		return top, shared.NewDomainError("command", "SendCertificate", shared.ErrInvalidState, top.Name()+" has no email address")
	}

	if err := h.classes.SendCertificate(ctx, top.Name(), top.Email()); err != nil {
		return top, fmt.Errorf("send certificate: %w", err)
	}
	h.deps.publish(shared.NewEvent(shared.EventCertificateSent, top.StudentID.String(), map[string]any{"class_id": classID.String()}))
	return top, nil
}
