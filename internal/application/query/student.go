package query

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/recyclify/recyclify-client/config"
	"github.com/recyclify/recyclify-client/internal/domain/authz"
	"github.com/recyclify/recyclify-client/internal/domain/leaderboard"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT HOME
// ══════════════════════════════════════════════════════════════════════════════

// StudentHome is the student home page.
type StudentHome struct {
	Student     *student.Student
	Tasks       []student.Task
	Gift        student.GiftStatus
	GiftEnabled bool
}

// StudentHomeHandler loads the student home page.
type StudentHomeHandler struct {
	sessions authz.SessionSource
	students student.Repository
	features *config.FeatureFlags
	now      func() time.Time
}

// NewStudentHomeHandler creates a StudentHomeHandler.
func NewStudentHomeHandler(sessions authz.SessionSource, students student.Repository, features *config.FeatureFlags) *StudentHomeHandler {
	return &StudentHomeHandler{sessions: sessions, students: students, features: features, now: time.Now}
}

// Handle fetches the profile and the tasks concurrently.
func (h *StudentHomeHandler) Handle(ctx context.Context) (*StudentHome, error) {
	user, err := authz.Require(h.sessions, shared.RoleStudent)
	if err != nil {
		return nil, err
	}
	id := user.ID.String()

	home := &StudentHome{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := h.students.GetStudent(gctx, id)
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}
		home.Student = s
		return nil
	})
	g.Go(func() error {
		tasks, err := h.students.GetStudentTasks(gctx, id)
		if err != nil {
			return fmt.Errorf("get student tasks: %w", err)
		}
		home.Tasks = tasks
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if home.Student == nil {
		return nil, shared.ErrStudentNotFound
	}

	home.Gift = home.Student.GiftStatus(h.now())
	home.GiftEnabled = featureOn(h.features, config.FeatureStreakGift, user)
	return home, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT LEADERBOARD
// ══════════════════════════════════════════════════════════════════════════════

// StudentLeaderboard is the school-wide student ranking.
type StudentLeaderboard struct {
	Entries []leaderboard.Entry
	Me      leaderboard.Entry
	Ranked  bool // false when the signed-in student is not in the list
}

// StudentLeaderboardHandler loads the student leaderboard.
type StudentLeaderboardHandler struct {
	sessions authz.SessionSource
	students student.Repository
}

// NewStudentLeaderboardHandler creates a StudentLeaderboardHandler.
func NewStudentLeaderboardHandler(sessions authz.SessionSource, students student.Repository) *StudentLeaderboardHandler {
	return &StudentLeaderboardHandler{sessions: sessions, students: students}
}

func (h *StudentLeaderboardHandler) Handle(ctx context.Context) (*StudentLeaderboard, error) {
	user, err := authz.Require(h.sessions, shared.RoleStudent)
	if err != nil {
		return nil, err
	}

	all, err := h.students.GetAllStudents(ctx, user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("get all students: %w", err)
	}

	entries := leaderboard.RankStudents(all)
	me, ok := leaderboard.Position(entries, user.ID)
	return &StudentLeaderboard{Entries: entries, Me: me, Ranked: ok}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASS QUESTS
// ══════════════════════════════════════════════════════════════════════════════

// QuestBoard lists a class's quests with a completion summary.
type QuestBoard struct {
	ClassID   shared.ID
	Quests    []student.Quest
	Completed int
	Total     int
}

func newQuestBoard(classID shared.ID, quests []student.Quest) *QuestBoard {
	done, total := student.QuestSummary(quests)
	return &QuestBoard{ClassID: classID, Quests: quests, Completed: done, Total: total}
}

// StudentQuestsHandler loads the quests of the signed-in student's class.
type StudentQuestsHandler struct {
	sessions authz.SessionSource
	students student.Repository
}

// NewStudentQuestsHandler creates a StudentQuestsHandler.
func NewStudentQuestsHandler(sessions authz.SessionSource, students student.Repository) *StudentQuestsHandler {
	return &StudentQuestsHandler{sessions: sessions, students: students}
}

func (h *StudentQuestsHandler) Handle(ctx context.Context) (*QuestBoard, error) {
	user, err := authz.Require(h.sessions, shared.RoleStudent)
	if err != nil {
		return nil, err
	}

	s, err := h.students.GetStudent(ctx, user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if s == nil || s.ClassID.IsEmpty() {
		return nil, shared.NewDomainError("query", "StudentQuests", shared.ErrNotFound, "student is not in a class")
	}

	quests, err := h.students.GetClassQuests(ctx, s.ClassID.String())
	if err != nil {
		return nil, fmt.Errorf("get class quests: %w", err)
	}
	return newQuestBoard(s.ClassID, quests), nil
}
