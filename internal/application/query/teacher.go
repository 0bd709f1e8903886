package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/recyclify/recyclify-client/config"
	"github.com/recyclify/recyclify-client/internal/domain/authz"
	"github.com/recyclify/recyclify-client/internal/domain/leaderboard"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/internal/domain/student"
	"github.com/recyclify/recyclify-client/pkg/logger"
)

// QuestLister reads class quests. student.Repository satisfies it.
type QuestLister interface {
	GetClassQuests(ctx context.Context, classID string) ([]student.Quest, error)
}

// TeacherDeps are the collaborators shared by the teacher queries.
type TeacherDeps struct {
	Sessions authz.SessionSource
	Classes  leaderboard.Repository
	Quests   QuestLister
	Cache    leaderboard.Cache // optional
	Features *config.FeatureFlags
	Logger   *logger.Logger
}

func (d TeacherDeps) source() classSource {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	return classSource{repo: d.Classes, cache: d.Cache, features: d.Features, log: log}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASSES
// ══════════════════════════════════════════════════════════════════════════════

// ClassesHandler lists the school's classes by points.
type ClassesHandler struct {
	deps TeacherDeps
	src  classSource
}

// NewClassesHandler creates a ClassesHandler.
func NewClassesHandler(deps TeacherDeps) *ClassesHandler {
	return &ClassesHandler{deps: deps, src: deps.source()}
}

// Handle returns the classes sorted by points, highest first.
func (h *ClassesHandler) Handle(ctx context.Context) ([]leaderboard.Class, error) {
	user, err := authz.Require(h.deps.Sessions, shared.RoleTeacher)
	if err != nil {
		return nil, err
	}
	classes, err := h.src.classes(ctx, user)
	if err != nil {
		return nil, err
	}
	return leaderboard.SortClasses(classes), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASS DASHBOARD
// ══════════════════════════════════════════════════════════════════════════════

// ClassDashboardQuery selects a class and the student table order.
type ClassDashboardQuery struct {
	ClassID shared.ID

	// SortBy orders Table. Empty keeps the backend order.
	SortBy leaderboard.Column
	Order  leaderboard.Order
}

// Validate checks the query.
func (q ClassDashboardQuery) Validate() error {
	if q.ClassID.IsEmpty() {
		return shared.FieldErrors(map[string]string{"classID": "Class is required"})
	}
	if q.SortBy != "" {
		if _, err := leaderboard.ParseColumn(string(q.SortBy)); err != nil {
			return err
		}
	}
	return nil
}

// ClassDashboard is the class page: overview, student table and quests.
type ClassDashboard struct {
	leaderboard.ClassSnapshot
	Table  []student.Student
	Quests []student.Quest
	Prev   leaderboard.Class
	Next   leaderboard.Class
	HasNav bool
}

// ClassDashboardHandler loads a class page.
type ClassDashboardHandler struct {
	deps TeacherDeps
	src  classSource
}

// NewClassDashboardHandler creates a ClassDashboardHandler.
func NewClassDashboardHandler(deps TeacherDeps) *ClassDashboardHandler {
	return &ClassDashboardHandler{deps: deps, src: deps.source()}
}

// Handle fetches the school classes, the roster, the points history and the
// quests concurrently.
func (h *ClassDashboardHandler) Handle(ctx context.Context, q ClassDashboardQuery) (*ClassDashboard, error) {
	user, err := authz.Require(h.deps.Sessions, shared.RoleTeacher)
	if err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	id := q.ClassID.String()

	var (
		classes  []leaderboard.Class
		students []student.Student
		records  []leaderboard.PointsRecord
		quests   []student.Quest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		classes, err = h.src.classes(gctx, user)
		return err
	})
	g.Go(func() (err error) {
		students, err = h.src.students(gctx, user, id)
		return err
	})
	g.Go(func() (err error) {
		records, err = h.deps.Classes.GetClassPoints(gctx, id)
		if err != nil {
			return fmt.Errorf("get class points: %w", err)
		}
		return nil
	})
	if h.deps.Quests != nil {
		g.Go(func() (err error) {
			quests, err = h.deps.Quests.GetClassQuests(gctx, id)
			if err != nil {
				return fmt.Errorf("get class quests: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	class, err := leaderboard.FindClass(classes, q.ClassID)
	if err != nil {
		return nil, err
	}
	class.Students = students

	top := leaderboard.TopThree(students)
	done, total := student.QuestSummary(quests)
	dash := &ClassDashboard{
		ClassSnapshot: leaderboard.ClassSnapshot{
			Class:       class,
			Rank:        leaderboard.ClassRank(classes, q.ClassID),
			ClassCount:  len(classes),
			Students:    leaderboard.RankStudents(students),
			Top:         top,
			Lowest:      leaderboard.LowestThree(students, top),
			Series:      leaderboard.PointsSeries(records),
			WeekPoints:  leaderboard.TotalPoints(records),
			QuestsDone:  done,
			QuestsTotal: total,
		},
		Table:  students,
		Quests: quests,
	}
	dash.Prev, dash.Next, dash.HasNav = leaderboard.Neighbours(leaderboard.SortClasses(classes), q.ClassID)

	if q.SortBy != "" {
		order := q.Order
		if order == "" {
			order = leaderboard.Asc
		}
		if dash.Table, err = leaderboard.SortStudents(students, q.SortBy, order); err != nil {
			return nil, err
		}
	}
	return dash, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASS LEADERBOARDS
// ══════════════════════════════════════════════════════════════════════════════

// maxRosterFetches bounds concurrent roster requests.
const maxRosterFetches = 8

// ClassStanding is one class on the class leaderboard.
type ClassStanding struct {
	Rank           leaderboard.Rank
	Class          leaderboard.Class
	Students       []leaderboard.Entry
	TopContributor *student.Student
	RosterErr      error // set when the roster could not be loaded
}

// ClassLeaderboardsHandler ranks classes and loads every roster.
type ClassLeaderboardsHandler struct {
	deps TeacherDeps
	src  classSource
}

// NewClassLeaderboardsHandler creates a ClassLeaderboardsHandler.
func NewClassLeaderboardsHandler(deps TeacherDeps) *ClassLeaderboardsHandler {
	return &ClassLeaderboardsHandler{deps: deps, src: deps.source()}
}

// Handle fetches rosters concurrently. A class whose roster fails keeps its
// place with no students and no top contributor.
func (h *ClassLeaderboardsHandler) Handle(ctx context.Context) ([]ClassStanding, error) {
	user, err := authz.Require(h.deps.Sessions, shared.RoleTeacher)
	if err != nil {
		return nil, err
	}

	classes, err := h.src.classes(ctx, user)
	if err != nil {
		return nil, err
	}
	sorted := leaderboard.SortClasses(classes)

	standings := make([]ClassStanding, len(sorted))
	var g errgroup.Group
	g.SetLimit(maxRosterFetches)
	for i, c := range sorted {
		standings[i] = ClassStanding{Rank: leaderboard.Rank(i + 1), Class: c}
		g.Go(func() error {
			students, err := h.src.students(ctx, user, c.ClassID.String())
			if err != nil {
				h.src.log.Warn("class roster unavailable", logger.ClassID(c.ClassID.String()), logger.Err(err))
				standings[i].RosterErr = err
				return nil
			}
			standings[i].Students = leaderboard.RankStudents(students)
			if top, err := leaderboard.TopContributor(students); err == nil {
				standings[i].TopContributor = &top
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}
