package query

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/leaderboard"
	"github.com/recyclify/recyclify-client/internal/domain/reward"
	"github.com/recyclify/recyclify-client/internal/domain/session"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/internal/domain/student"
)

type fixedSession session.Session

func (s fixedSession) Snapshot() session.Session { return session.Session(s) }

func signedIn(role shared.Role) fixedSession {
	return fixedSession{AuthToken: "abc", Loaded: true, User: &session.UserProfile{ID: "1", Name: "jo", Role: role}}
}

var errBackend = errors.New("backend down")

// fakeBackend serves canned data and counts calls.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	student  *student.Student
	tasks    []student.Task
	all      []student.Student
	quests   []student.Quest
	classes  []leaderboard.Class
	rosters  map[string][]student.Student
	failRost map[string]bool
	points   []leaderboard.PointsRecord
	users    []identity.ManagedUser
	rewards  []reward.Item
	messages []identity.ContactMessage
	fail     bool
}

func (f *fakeBackend) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
	if f.fail {
		return errBackend
	}
	return nil
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) GetStudent(_ context.Context, _ string) (*student.Student, error) {
	return f.student, f.hit("GetStudent")
}
func (f *fakeBackend) GetStudentTasks(context.Context, string) ([]student.Task, error) {
	return f.tasks, f.hit("GetStudentTasks")
}
func (f *fakeBackend) GetAllStudents(context.Context, string) ([]student.Student, error) {
	return f.all, f.hit("GetAllStudents")
}
func (f *fakeBackend) AwardGift(context.Context, string) (int, error) { return 0, f.hit("AwardGift") }
func (f *fakeBackend) GetClassQuests(context.Context, string) ([]student.Quest, error) {
	return f.quests, f.hit("GetClassQuests")
}
func (f *fakeBackend) RecogniseImage(context.Context, string, io.Reader) (*student.Recognition, error) {
	return nil, f.hit("RecogniseImage")
}

func (f *fakeBackend) GetOverallClasses(context.Context) ([]leaderboard.Class, error) {
	return f.classes, f.hit("GetOverallClasses")
}
func (f *fakeBackend) GetClass(_ context.Context, id string) (*leaderboard.Class, error) {
	c, err := leaderboard.FindClass(f.classes, shared.ID(id))
	return &c, errors.Join(err, f.hit("GetClass"))
}
func (f *fakeBackend) GetStudents(_ context.Context, id string) ([]student.Student, error) {
	if err := f.hit("GetStudents"); err != nil {
		return nil, err
	}
	if f.failRost[id] {
		return nil, errBackend
	}
	return f.rosters[id], nil
}
func (f *fakeBackend) GetClassPoints(context.Context, string) ([]leaderboard.PointsRecord, error) {
	return f.points, f.hit("GetClassPoints")
}
func (f *fakeBackend) UpdateStudent(context.Context, leaderboard.StudentUpdate) error {
	return f.hit("UpdateStudent")
}
func (f *fakeBackend) DeleteStudent(context.Context, string) error { return f.hit("DeleteStudent") }
func (f *fakeBackend) SendUpdateEmail(context.Context, leaderboard.UpdateEmail) error {
	return f.hit("SendUpdateEmail")
}
func (f *fakeBackend) RegenerateQuests(context.Context, string, string) error {
	return f.hit("RegenerateQuests")
}
func (f *fakeBackend) SendCertificate(context.Context, string, string) error {
	return f.hit("SendCertificate")
}

func (f *fakeBackend) ListUsers(context.Context) ([]identity.ManagedUser, error) {
	return f.users, f.hit("ListUsers")
}
func (f *fakeBackend) UpdateUser(_ context.Context, u identity.ManagedUser) (*identity.ManagedUser, error) {
	return &u, f.hit("UpdateUser")
}
func (f *fakeBackend) ListMessages(context.Context) ([]identity.ContactMessage, error) {
	return f.messages, f.hit("ListMessages")
}
func (f *fakeBackend) UpdateMessage(context.Context, identity.ContactMessage) error {
	return f.hit("UpdateMessage")
}
func (f *fakeBackend) MarkReplied(context.Context, string) error { return f.hit("MarkReplied") }

func (f *fakeBackend) ListRewards(context.Context) ([]reward.Item, error) {
	return f.rewards, f.hit("ListRewards")
}
func (f *fakeBackend) GetReward(_ context.Context, id string) (*reward.Item, error) {
	it, err := reward.Find(f.rewards, shared.ID(id))
	return &it, errors.Join(err, f.hit("GetReward"))
}
func (f *fakeBackend) CreateReward(context.Context, reward.NewItem) error {
	return f.hit("CreateReward")
}
func (f *fakeBackend) UpdateReward(_ context.Context, it reward.Item) (*reward.Item, error) {
	return &it, f.hit("UpdateReward")
}
func (f *fakeBackend) ToggleAvailability(context.Context, string) (*reward.Item, error) {
	return nil, f.hit("ToggleAvailability")
}

// memCache is an in-memory leaderboard.Cache.
type memCache struct {
	mu       sync.Mutex
	classes  map[string][]leaderboard.Class
	students map[string][]student.Student
}

func newMemCache() *memCache {
	return &memCache{classes: map[string][]leaderboard.Class{}, students: map[string][]student.Student{}}
}

func (c *memCache) GetClasses(_ context.Context, key string) ([]leaderboard.Class, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.classes[key]
	return v, ok, nil
}
func (c *memCache) SetClasses(_ context.Context, key string, v []leaderboard.Class) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classes[key] = v
	return nil
}
func (c *memCache) GetStudents(_ context.Context, id string) ([]student.Student, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.students[id]
	return v, ok, nil
}
func (c *memCache) SetStudents(_ context.Context, id string, v []student.Student) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.students[id] = v
	return nil
}
func (c *memCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classes = map[string][]leaderboard.Class{}
	c.students = map[string][]student.Student{}
	return nil
}

func named(id string, name string, total int) student.Student {
	return student.Student{StudentID: shared.ID(id), TotalPoints: total, User: &student.Account{Name: name, Email: name + "@school.sg"}}
}
