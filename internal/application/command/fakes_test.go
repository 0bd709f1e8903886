package command

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

// userError mimics a UERROR returned by the API client.
type userError string

func (e userError) Error() string        { return "UERROR: " + string(e) }
func (e userError) Text() string         { return string(e) }
func (e userError) Is(target error) bool { return target == shared.ErrInvalidInput }

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []shared.Event
}

func (r *recorder) Publish(ev shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) types() []shared.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.EventType()
	}
	return out
}

// fakeBackend records what the commands send and returns canned replies.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int
	err   error

	student     *student.Student
	awarded     int
	recognition *student.Recognition
	roster      []student.Student
	messages    []identity.ContactMessage

	lastUpdate   leaderboard.StudentUpdate
	lastEmail    leaderboard.UpdateEmail
	lastCert     [2]string
	lastQuests   [2]string
	lastReward   reward.NewItem
	lastMessage  identity.ContactMessage
	lastPassword string
	lastPrompt   string
	role         shared.Role
}

func (f *fakeBackend) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
	return f.err
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// student.Repository

func (f *fakeBackend) GetStudent(context.Context, string) (*student.Student, error) {
	if err := f.hit("GetStudent"); err != nil {
		return nil, err
	}
	cp := *f.student
	return &cp, nil
}
func (f *fakeBackend) GetStudentTasks(context.Context, string) ([]student.Task, error) {
	return nil, f.hit("GetStudentTasks")
}
func (f *fakeBackend) GetAllStudents(context.Context, string) ([]student.Student, error) {
	return nil, f.hit("GetAllStudents")
}
func (f *fakeBackend) AwardGift(context.Context, string) (int, error) {
	return f.awarded, f.hit("AwardGift")
}
func (f *fakeBackend) GetClassQuests(context.Context, string) ([]student.Quest, error) {
	return nil, f.hit("GetClassQuests")
}
func (f *fakeBackend) RecogniseImage(_ context.Context, _ string, image io.Reader) (*student.Recognition, error) {
	if err := f.hit("RecogniseImage"); err != nil {
		return nil, err
	}
	_, _ = io.ReadAll(image)
	return f.recognition, nil
}

// leaderboard.Repository

func (f *fakeBackend) GetOverallClasses(context.Context) ([]leaderboard.Class, error) {
	return nil, f.hit("GetOverallClasses")
}
func (f *fakeBackend) GetClass(context.Context, string) (*leaderboard.Class, error) {
	return nil, f.hit("GetClass")
}
func (f *fakeBackend) GetStudents(context.Context, string) ([]student.Student, error) {
	return f.roster, f.hit("GetStudents")
}
func (f *fakeBackend) GetClassPoints(context.Context, string) ([]leaderboard.PointsRecord, error) {
	return nil, f.hit("GetClassPoints")
}
func (f *fakeBackend) UpdateStudent(_ context.Context, u leaderboard.StudentUpdate) error {
	f.lastUpdate = u
	return f.hit("UpdateStudent")
}
func (f *fakeBackend) DeleteStudent(context.Context, string) error { return f.hit("DeleteStudent") }
func (f *fakeBackend) SendUpdateEmail(_ context.Context, req leaderboard.UpdateEmail) error {
	f.lastEmail = req
	return f.hit("SendUpdateEmail")
}
func (f *fakeBackend) RegenerateQuests(_ context.Context, classID, teacherID string) error {
	f.lastQuests = [2]string{classID, teacherID}
	return f.hit("RegenerateQuests")
}
func (f *fakeBackend) SendCertificate(_ context.Context, name, email string) error {
	f.lastCert = [2]string{name, email}
	return f.hit("SendCertificate")
}

// reward.Repository

func (f *fakeBackend) ListRewards(context.Context) ([]reward.Item, error) {
	return nil, f.hit("ListRewards")
}
func (f *fakeBackend) GetReward(context.Context, string) (*reward.Item, error) {
	return nil, f.hit("GetReward")
}
func (f *fakeBackend) CreateReward(_ context.Context, item reward.NewItem) error {
	f.lastReward = item
	return f.hit("CreateReward")
}
func (f *fakeBackend) UpdateReward(_ context.Context, item reward.Item) (*reward.Item, error) {
	if err := f.hit("UpdateReward"); err != nil {
		return nil, err
	}
	return &item, nil
}
func (f *fakeBackend) ToggleAvailability(_ context.Context, id string) (*reward.Item, error) {
	if err := f.hit("ToggleAvailability"); err != nil {
		return nil, err
	}
	return &reward.Item{RewardID: shared.ID(id), IsAvailable: true}, nil
}

// identity.AdminRepository

func (f *fakeBackend) ListUsers(context.Context) ([]identity.ManagedUser, error) {
	return nil, f.hit("ListUsers")
}
func (f *fakeBackend) UpdateUser(_ context.Context, u identity.ManagedUser) (*identity.ManagedUser, error) {
	if err := f.hit("UpdateUser"); err != nil {
		return nil, err
	}
	return &u, nil
}
func (f *fakeBackend) ListMessages(context.Context) ([]identity.ContactMessage, error) {
	return f.messages, f.hit("ListMessages")
}
func (f *fakeBackend) UpdateMessage(_ context.Context, m identity.ContactMessage) error {
	f.lastMessage = m
	return f.hit("UpdateMessage")
}
func (f *fakeBackend) MarkReplied(context.Context, string) error { return f.hit("MarkReplied") }

// identity.AccountRepository

func (f *fakeBackend) CreateAccount(context.Context, identity.ParentRegistration) (string, error) {
	return "Account created successfully.", f.hit("CreateAccount")
}
func (f *fakeBackend) VerifyContact(context.Context, string) (shared.Role, error) {
	return f.role, f.hit("VerifyContact")
}
func (f *fakeBackend) SendContactVerification(context.Context) error {
	return f.hit("SendContactVerification")
}
func (f *fakeBackend) DeleteAccount(_ context.Context, password string) error {
	f.lastPassword = password
	return f.hit("DeleteAccount")
}

// identity.PublicRepository

func (f *fakeBackend) SubmitContactForm(context.Context, identity.ContactForm) error {
	return f.hit("SubmitContactForm")
}
func (f *fakeBackend) AskEcoPilot(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	return "Rinse it first.", f.hit("AskEcoPilot")
}

// fakeStore stands in for *session.Store.
type fakeStore struct {
	fetched, signedOut int
}

func (s *fakeStore) FetchUser(context.Context) error { s.fetched++; return nil }
func (s *fakeStore) SignOut(context.Context) error   { s.signedOut++; return nil }

// countingCache counts invalidations.
type countingCache struct {
	invalidated int
}

func (c *countingCache) GetClasses(context.Context, string) ([]leaderboard.Class, bool, error) {
	return nil, false, nil
}
func (c *countingCache) SetClasses(context.Context, string, []leaderboard.Class) error { return nil }
func (c *countingCache) GetStudents(context.Context, string) ([]student.Student, bool, error) {
	return nil, false, nil
}
func (c *countingCache) SetStudents(context.Context, string, []student.Student) error { return nil }
func (c *countingCache) Invalidate(context.Context) error {
	c.invalidated++
	return nil
}

func pupil(id, name, email string, total int) student.Student {
	return student.Student{StudentID: shared.ID(id), TotalPoints: total, User: &student.Account{Name: name, Email: email}}
}
