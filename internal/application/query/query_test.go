package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recyclify/recyclify-client/config"
	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/leaderboard"
	"github.com/recyclify/recyclify-client/internal/domain/reward"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/internal/domain/student"
	"github.com/recyclify/recyclify-client/pkg/timeutil"
)

func TestHandlers_RejectWrongRoleWithoutCallingBackend(t *testing.T) {
	be := &fakeBackend{}
	ctx := context.Background()
	teacher := signedIn(shared.RoleTeacher)
	pupil := signedIn(shared.RoleStudent)

	_, err := NewStudentHomeHandler(teacher, be, nil).Handle(ctx)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = NewClassesHandler(TeacherDeps{Sessions: pupil, Classes: be}).Handle(ctx)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = NewAdminHandler(fixedSession{Loaded: true}, be, be).Users(ctx, "")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	_, err = NewStudentLeaderboardHandler(fixedSession{}, be).Handle(ctx)
	assert.ErrorIs(t, err, shared.ErrInvalidState, "pending session")

	assert.Empty(t, be.calls)
}

func TestStudentHome(t *testing.T) {
	s := named("1", "jo", 90)
	s.Streak = 7
	be := &fakeBackend{student: &s, tasks: []student.Task{{TaskID: "t1", TaskVerified: true}}}
	h := NewStudentHomeHandler(signedIn(shared.RoleStudent), be, nil)
	h.now = func() time.Time { return timeutil.Date(2026, 5, 10) }

	home, err := h.Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 90, home.Student.TotalPoints)
	assert.Len(t, home.Tasks, 1)
	assert.True(t, home.Gift.Claimable)
	assert.True(t, home.GiftEnabled)

	be.fail = true
	_, err = h.Handle(context.Background())
	assert.ErrorIs(t, err, errBackend)
}

func TestStudentLeaderboard(t *testing.T) {
	be := &fakeBackend{all: []student.Student{named("2", "amy", 50), named("1", "jo", 80), named("3", "bo", 50)}}
	lb, err := NewStudentLeaderboardHandler(signedIn(shared.RoleStudent), be).Handle(context.Background())
	require.NoError(t, err)

	require.Len(t, lb.Entries, 3)
	assert.True(t, lb.Ranked)
	assert.Equal(t, leaderboard.Rank(1), lb.Me.Rank)
	assert.Equal(t, leaderboard.Rank(2), lb.Entries[2].Rank, "ties share a rank")
}

func TestStudentQuests(t *testing.T) {
	s := named("1", "jo", 0)
	s.ClassID = "C1"
	be := &fakeBackend{student: &s, quests: []student.Quest{{AmountCompleted: 2, TotalAmountToComplete: 2}, {TotalAmountToComplete: 4}}}

	board, err := NewStudentQuestsHandler(signedIn(shared.RoleStudent), be).Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, shared.ID("C1"), board.ClassID)
	assert.Equal(t, 1, board.Completed)
	assert.Equal(t, 2, board.Total)

	s.ClassID = ""
	_, err = NewStudentQuestsHandler(signedIn(shared.RoleStudent), be).Handle(context.Background())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func teacherFixture() *fakeBackend {
	return &fakeBackend{
		classes: []leaderboard.Class{
			{ClassID: "A", ClassName: "1A", ClassPoints: 10},
			{ClassID: "B", ClassName: "1B", ClassPoints: 30},
			{ClassID: "C", ClassName: "1C", ClassPoints: 20},
		},
		rosters: map[string][]student.Student{
			"A": {named("1", "zed", 5), named("2", "amy", 15)},
			"B": {named("3", "kai", 0)},
		},
		points: []leaderboard.PointsRecord{
			{Date: "2026-05-02", Points: 4}, {Date: "2026-05-01", Points: 1}, {Date: "2026-05-02", Points: 2},
		},
		quests: []student.Quest{{AmountCompleted: 1, TotalAmountToComplete: 1}},
	}
}

func TestClasses_SortedByPoints(t *testing.T) {
	be := teacherFixture()
	classes, err := NewClassesHandler(TeacherDeps{Sessions: signedIn(shared.RoleTeacher), Classes: be}).Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []shared.ID{"B", "C", "A"}, []shared.ID{classes[0].ClassID, classes[1].ClassID, classes[2].ClassID})
}

func TestClassDashboard(t *testing.T) {
	be := teacherFixture()
	h := NewClassDashboardHandler(TeacherDeps{Sessions: signedIn(shared.RoleTeacher), Classes: be, Quests: be})

	dash, err := h.Handle(context.Background(), ClassDashboardQuery{ClassID: "A", SortBy: leaderboard.ColumnName})
	require.NoError(t, err)

	assert.Equal(t, "1A", dash.Class.ClassName)
	assert.Equal(t, leaderboard.Rank(3), dash.Rank)
	assert.Equal(t, 3, dash.ClassCount)
	assert.Equal(t, 7, dash.WeekPoints)
	assert.Equal(t, []leaderboard.SeriesPoint{{Date: "2026-05-01", Points: 1}, {Date: "2026-05-02", Points: 6}}, dash.Series)
	assert.Equal(t, "amy", dash.Top[0].Name())
	assert.Equal(t, "amy", dash.Table[0].Name(), "sorted by name ascending")
	assert.Equal(t, 1, dash.QuestsDone)
	assert.True(t, dash.HasNav)
	assert.Equal(t, shared.ID("C"), dash.Prev.ClassID)
	assert.Equal(t, shared.ID("B"), dash.Next.ClassID, "wraps around")

	_, err = h.Handle(context.Background(), ClassDashboardQuery{ClassID: "Z"})
	assert.ErrorIs(t, err, shared.ErrClassNotFound)

	_, err = h.Handle(context.Background(), ClassDashboardQuery{})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = h.Handle(context.Background(), ClassDashboardQuery{ClassID: "A", SortBy: "shoeSize"})
	assert.ErrorIs(t, err, shared.ErrUnknownSortKey)
}

func TestClassLeaderboards_FailedRosterKeepsPlace(t *testing.T) {
	be := teacherFixture()
	be.failRost = map[string]bool{"C": true}

	standings, err := NewClassLeaderboardsHandler(TeacherDeps{Sessions: signedIn(shared.RoleTeacher), Classes: be}).Handle(context.Background())
	require.NoError(t, err)
	require.Len(t, standings, 3)

	assert.Equal(t, shared.ID("B"), standings[0].Class.ClassID)
	assert.Equal(t, "kai", standings[0].TopContributor.Name())

	assert.Equal(t, shared.ID("C"), standings[1].Class.ClassID)
	assert.Empty(t, standings[1].Students)
	assert.Nil(t, standings[1].TopContributor)
	assert.Error(t, standings[1].RosterErr)

	assert.Equal(t, "amy", standings[2].TopContributor.Name())
	assert.Equal(t, 3, be.count("GetStudents"))
}

func TestClassSource_UsesCacheWhenFlagOn(t *testing.T) {
	be := teacherFixture()
	be.failRost = map[string]bool{"C": true}
	ff := config.LoadFeatureFlags()
	require.NoError(t, ff.EnableFeature(config.FeatureLeaderboardCache))

	deps := TeacherDeps{Sessions: signedIn(shared.RoleTeacher), Classes: be, Cache: newMemCache(), Features: ff}
	h := NewClassLeaderboardsHandler(deps)
	_, err := h.Handle(context.Background())
	require.NoError(t, err)
	_, err = h.Handle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, be.count("GetOverallClasses"))
	// The failed roster is never cached, so only it is fetched again.
	assert.Equal(t, 4, be.count("GetStudents"))

	// Without flags the cache is skipped.
	be2 := teacherFixture()
	deps = TeacherDeps{Sessions: signedIn(shared.RoleTeacher), Classes: be2, Cache: newMemCache()}
	_, _ = NewClassesHandler(deps).Handle(context.Background())
	_, _ = NewClassesHandler(deps).Handle(context.Background())
	assert.Equal(t, 2, be2.count("GetOverallClasses"))
}

func TestAdminHandler(t *testing.T) {
	be := &fakeBackend{
		users: []identity.ManagedUser{{ID: "1", Name: "Alice", UserRole: shared.RoleStudent}, {ID: "2", Name: "Bob", UserRole: shared.RoleTeacher}},
		rewards: []reward.Item{
			{RewardID: "r1", RewardTitle: "Eco Bottle", IsAvailable: true, RewardQuantity: reward.IntPtr(3)},
			{RewardID: "r2", RewardTitle: "Tote Bag", IsAvailable: true, RewardQuantity: reward.IntPtr(0)},
		},
		messages: []identity.ContactMessage{
			{ID: "m1", SenderName: "Ann", SenderEmail: "ann@x.sg"},
			{ID: "m2", SenderName: "Ben", SenderEmail: "ben@x.sg", HasReplied: true},
		},
	}
	h := NewAdminHandler(signedIn(shared.RoleAdmin), be, be)
	ctx := context.Background()

	users, err := h.Users(ctx, "ali")
	require.NoError(t, err)
	assert.Len(t, users, 1)

	items, err := h.Rewards(ctx, "BOTTLE")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	item, err := h.Reward(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, "Tote Bag", item.RewardTitle)

	msgs, err := h.Messages(ctx, MessagesQuery{PendingOnly: true})
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
	msgs, err = h.Messages(ctx, MessagesQuery{Search: "ben@"})
	require.NoError(t, err)
	assert.Equal(t, shared.ID("m2"), msgs[0].ID)

	ov, err := h.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ov.UsersByRole[shared.RoleTeacher])
	assert.Equal(t, 2, ov.Rewards)
	assert.Equal(t, 1, ov.RewardsInStock)
	assert.Equal(t, 1, ov.PendingMessages)
}

type fakeImages struct{ avatar string }

func (f fakeImages) GetAvatar(context.Context, string) (string, error) { return f.avatar, nil }
func (f fakeImages) GetBanner(context.Context, string) (string, error) { return "", errBackend }

func TestProfileHandler(t *testing.T) {
	sess := signedIn(shared.RoleParent)
	sess.User.Banner = "/banner.png"

	p, err := NewProfileHandler(sess, fakeImages{avatar: "/a.png"}, nil).Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/a.png", p.AvatarURL)
	assert.Equal(t, "/banner.png", p.BannerURL)

	_, err = NewProfileHandler(fixedSession{Loaded: true}, nil, nil).Handle(context.Background())
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}
