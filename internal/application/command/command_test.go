package command

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recyclify/recyclify-client/config"
	"github.com/recyclify/recyclify-client/internal/domain/identity"
	"github.com/recyclify/recyclify-client/internal/domain/reward"
	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/internal/domain/student"
	"github.com/recyclify/recyclify-client/internal/infrastructure/messaging"
	"github.com/recyclify/recyclify-client/pkg/timeutil"
)

func fieldError(t *testing.T, err error, field string) string {
	t.Helper()
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Field(field)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT
// ══════════════════════════════════════════════════════════════════════════════

func TestClaimStreakGift(t *testing.T) {
	ctx := context.Background()
	events := &recorder{}
	backend := &fakeBackend{student: &student.Student{StudentID: "1", Streak: 7, CurrentPoints: 40}, awarded: 50}
	h := NewClaimStreakGiftHandler(signedIn(shared.RoleStudent), backend, Deps{Events: events})
	h.now = func() time.Time { return timeutil.Date(2026, 5, 10) }

	claim, err := h.Handle(ctx)
	require.NoError(t, err)
	assert.Equal(t, GiftClaim{PointsAwarded: 50, Balance: 90, Streak: 7}, *claim)
	assert.Equal(t, []shared.EventType{shared.EventStreakGiftClaimed}, events.types())

	t.Run("not claimable", func(t *testing.T) {
		backend.student.Streak = 3
		_, err := h.Handle(ctx)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Equal(t, 1, backend.count("AwardGift"))
	})

	t.Run("wrong role", func(t *testing.T) {
		h := NewClaimStreakGiftHandler(signedIn(shared.RoleTeacher), backend, Deps{})
		_, err := h.Handle(ctx)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("feature disabled", func(t *testing.T) {
		ff := config.LoadFeatureFlags()
		require.NoError(t, ff.DisableFeature(config.FeatureStreakGift))
		h := NewClaimStreakGiftHandler(signedIn(shared.RoleStudent), backend, Deps{Features: ff})
		_, err := h.Handle(ctx)
		assert.ErrorIs(t, err, shared.ErrFeatureDisabled)
	})
}

func TestRecogniseImage(t *testing.T) {
	ctx := context.Background()
	bus := messaging.NewInMemoryEventBus(messaging.Config{})
	defer bus.Close()
	var got []shared.Event
	require.NoError(t, bus.Subscribe(shared.EventItemRecognised, func(ev shared.Event) error {
		got = append(got, ev)
		return nil
	}))

	backend := &fakeBackend{recognition: &student.Recognition{Category: "Plastic", Recyclable: true}}
	h := NewRecogniseImageHandler(signedIn(shared.RoleStudent), backend, Deps{Events: bus})

	_, err := h.Handle(ctx, RecogniseImageCommand{Filename: "bottle.txt", Image: strings.NewReader("x")})
	assert.Equal(t, "Only image files can be scanned", fieldError(t, err, "file"))

	_, err = h.Handle(ctx, RecogniseImageCommand{Filename: "bottle.png"})
	assert.Equal(t, "Please select an image", fieldError(t, err, "file"))
	assert.Zero(t, backend.count("RecogniseImage"))

	rec, err := h.Handle(ctx, RecogniseImageCommand{Filename: "/tmp/Bottle.JPG", Image: strings.NewReader("img")})
	require.NoError(t, err)
	assert.Equal(t, "Plastic", rec.Category)
	require.Len(t, got, 1)
	assert.Equal(t, true, got[0].Payload()["recyclable"])
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER
// ══════════════════════════════════════════════════════════════════════════════

func TestTeacher_UpdateAndDeleteInvalidateCache(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	cache := &countingCache{}
	events := &recorder{}
	h := NewTeacherHandler(signedIn(shared.RoleTeacher), backend, cache, Deps{Events: events})

	err := h.UpdateStudent(ctx, identity.StudentEdit{StudentID: "7", FName: " Ana ", LName: "Lee", Email: "ana@school.sg"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", backend.lastUpdate.FName)

	err = h.UpdateStudent(ctx, identity.StudentEdit{StudentID: "7", FName: "Ana1", LName: "Lee", Email: "ana@school.sg"})
	assert.Equal(t, "Name can only contain letters and spaces.", fieldError(t, err, "fName"))

	require.NoError(t, h.DeleteStudent(ctx, "7"))
	assert.Error(t, h.DeleteStudent(ctx, ""))

	assert.Equal(t, 2, cache.invalidated)
	assert.Equal(t, []shared.EventType{shared.EventStudentUpdated, shared.EventStudentDeleted}, events.types())

	backend.err = errBackend
	assert.ErrorIs(t, h.DeleteStudent(ctx, "7"), errBackend)
	assert.Equal(t, 2, cache.invalidated)
}

func TestTeacher_SendUpdateEmail(t *testing.T) {
	ctx := context.Background()
	withParent := pupil("7", "ana", "ana@school.sg", 10)
	withParent.ParentID = "P1"
	withParent.Parent = &student.Parent{ParentEmail: "mum@home.sg"}
	backend := &fakeBackend{roster: []student.Student{pupil("6", "ben", "", 3), withParent}}
	h := NewTeacherHandler(signedIn(shared.RoleTeacher), backend, nil, Deps{})

	cmd := SendUpdateEmailCommand{ClassID: "C1", StudentID: "7", Recipients: []student.Recipient{student.RecipientStudent, student.RecipientParent}}
	require.NoError(t, h.SendUpdateEmail(ctx, cmd))
	assert.Equal(t, "C1", backend.lastEmail.ClassID)
	assert.Equal(t, "mum@home.sg", backend.lastEmail.ParentEmail)
	assert.Equal(t, "ana@school.sg", backend.lastEmail.StudentEmail)

	cmd.StudentID = "99"
	assert.ErrorIs(t, h.SendUpdateEmail(ctx, cmd), shared.ErrNotFound)

	cmd.Recipients = nil
	assert.Equal(t, "Select at least one recipient", fieldError(t, h.SendUpdateEmail(ctx, cmd), "recipients"))
}

func TestTeacher_SendCertificate(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{roster: []student.Student{pupil("6", "ben", "ben@school.sg", 3), pupil("7", "ana", "ana@school.sg", 10)}}
	h := NewTeacherHandler(signedIn(shared.RoleTeacher), backend, nil, Deps{})

	top, err := h.SendCertificate(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "ana", top.Name())
	assert.Equal(t, [2]string{"ana", "ana@school.sg"}, backend.lastCert)

	backend.roster = []student.Student{pupil("8", "cy", "", 4)}
	_, err = h.SendCertificate(ctx, "C1")
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	backend.roster = nil
	_, err = h.SendCertificate(ctx, "C1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, 1, backend.count("SendCertificate"))
}

func TestTeacher_RegenerateQuests(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	cache := &countingCache{}
	h := NewTeacherHandler(signedIn(shared.RoleTeacher), backend, cache, Deps{})

	require.NoError(t, h.RegenerateQuests(ctx, "C1"))
	assert.Equal(t, [2]string{"C1", "1"}, backend.lastQuests)
	assert.Equal(t, 1, cache.invalidated)

	ff := config.LoadFeatureFlags()
	require.NoError(t, ff.DisableFeature(config.FeatureQuestRegeneration))
	h = NewTeacherHandler(signedIn(shared.RoleTeacher), backend, cache, Deps{Features: ff})
	assert.ErrorIs(t, h.RegenerateQuests(ctx, "C1"), shared.ErrFeatureDisabled)
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN
// ══════════════════════════════════════════════════════════════════════════════

func TestAdmin_Rewards(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	events := &recorder{}
	h := NewAdminHandler(signedIn(shared.RoleAdmin), backend, backend, Deps{Events: events})

	item := reward.Item{RewardTitle: "Tote bag", RewardDescription: "Canvas", RequiredPoints: reward.IntPtr(100), RewardQuantity: reward.IntPtr(5)}
	err := h.CreateReward(ctx, reward.NewItem{Item: item})
	assert.Equal(t, reward.AllFieldsRequired, fieldError(t, err, "imageFile"))

	require.NoError(t, h.CreateReward(ctx, reward.NewItem{Item: item, ImageName: "bag.png", Image: strings.NewReader("png")}))
	assert.Equal(t, "Tote bag", backend.lastReward.RewardTitle)

	_, err = h.UpdateReward(ctx, item)
	assert.Error(t, err, "an item without an ID cannot be updated")

	item.RewardID = "R1"
	item.RewardTitle = " "
	_, err = h.UpdateReward(ctx, item)
	assert.Equal(t, reward.AllFieldsRequired, fieldError(t, err, "rewardTitle"))

	item.RewardTitle = "Tote"
	saved, err := h.UpdateReward(ctx, item)
	require.NoError(t, err)
	assert.Equal(t, "Tote", saved.RewardTitle)

	toggled, err := h.ToggleAvailability(ctx, "R1")
	require.NoError(t, err)
	assert.True(t, toggled.IsAvailable)

	assert.Equal(t, []shared.EventType{shared.EventRewardChanged, shared.EventRewardChanged, shared.EventRewardChanged}, events.types())
}

func TestAdmin_Messages(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{messages: []identity.ContactMessage{
		{ID: "M1", SenderName: "Kai", SenderEmail: "kai@x.sg", Message: "hello"},
	}}
	h := NewAdminHandler(signedIn(shared.RoleAdmin), backend, backend, Deps{})

	msg, err := h.EditMessage(ctx, "M1", "hello there")
	require.NoError(t, err)
	assert.Equal(t, "hello there", msg.Message)
	assert.Equal(t, "kai@x.sg", backend.lastMessage.SenderEmail)

	_, err = h.EditMessage(ctx, "M2", "x")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = h.EditMessage(ctx, "M1", "  ")
	assert.Equal(t, "Message is required", fieldError(t, err, "message"))

	require.NoError(t, h.MarkReplied(ctx, "M1"))
	assert.Equal(t, 1, backend.count("MarkReplied"))
}

func TestAdmin_RequiresAdmin(t *testing.T) {
	backend := &fakeBackend{}
	h := NewAdminHandler(signedIn(shared.RoleTeacher), backend, backend, Deps{})
	_, err := h.UpdateUser(context.Background(), identity.ManagedUser{ID: "3"})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	h = NewAdminHandler(fixedSession{}, backend, backend, Deps{})
	assert.ErrorIs(t, h.MarkReplied(context.Background(), "M1"), shared.ErrInvalidState)
	assert.Zero(t, backend.count("MarkReplied"))
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT
// ══════════════════════════════════════════════════════════════════════════════

func validRegistration() identity.ParentRegistration {
	return identity.ParentRegistration{
		FName: "Mei", LName: "Tan", Name: "meitan", Email: "mei@home.sg",
		ContactNumber: "91234567", StudentID: "7",
		Password: "password1", ConfirmPassword: "password1",
	}
}

func TestRegisterParent(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	h := NewAccountHandler(fixedSession{Loaded: true}, backend, &fakeStore{}, Deps{})

	out, err := h.RegisterParent(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, identity.EmailVerificationPath, out.Next)
	assert.Equal(t, identity.AccountCreatedMessage, out.Message)

	backend.err = userError("Email must be unique.")
	_, err = h.RegisterParent(ctx, validRegistration())
	assert.Equal(t, "Email already exists", fieldError(t, err, "email"))

	backend.err = userError("Something else.")
	_, err = h.RegisterParent(ctx, validRegistration())
	var verr *shared.ValidationError
	require.Error(t, err)
	assert.False(t, errors.As(err, &verr), "unmapped user errors stay backend errors")

	bad := validRegistration()
	bad.ConfirmPassword = "different"
	_, err = h.RegisterParent(ctx, bad)
	assert.Equal(t, "Passwords must match", fieldError(t, err, "confirmPassword"))
}

func TestVerifyContact(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{role: shared.RoleStudent}
	store := &fakeStore{}
	sess := signedIn(shared.RoleStudent)
	h := NewAccountHandler(sess, backend, store, Deps{})

	_, err := h.VerifyContact(ctx, identity.VerificationCode{Code: "12a"})
	assert.Equal(t, "Please enter all 6 digits of the verification code", fieldError(t, err, "code"))

	next, err := h.VerifyContact(ctx, identity.VerificationCode{Code: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "/student/home", next)
	assert.Equal(t, 1, store.fetched)

	sess.User.PhoneVerified = true
	next, err = h.VerifyContact(ctx, identity.VerificationCode{})
	require.NoError(t, err)
	assert.Equal(t, "/student/home", next)
	assert.Equal(t, 1, backend.count("VerifyContact"))
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	store := &fakeStore{}
	events := &recorder{}
	h := NewAccountHandler(signedIn(shared.RoleParent), backend, store, Deps{Events: events})

	_, err := h.DeleteAccount(ctx, identity.DeleteAccount{})
	assert.Equal(t, "Password is required", fieldError(t, err, "password"))

	backend.err = userError(IncorrectPassword)
	_, err = h.DeleteAccount(ctx, identity.DeleteAccount{Password: "nope"})
	assert.Equal(t, IncorrectPassword, fieldError(t, err, "password"))
	assert.Zero(t, store.signedOut)

	backend.err = nil
	next, err := h.DeleteAccount(ctx, identity.DeleteAccount{Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "/auth/login", next)
	assert.Equal(t, "secret", backend.lastPassword)
	assert.Equal(t, 1, store.signedOut)
	assert.Equal(t, []shared.EventType{shared.EventAccountDeleted}, events.types())
}

// ══════════════════════════════════════════════════════════════════════════════
// PUBLIC
// ══════════════════════════════════════════════════════════════════════════════

func TestContactFormIsPublic(t *testing.T) {
	backend := &fakeBackend{}
	h := NewPublicHandler(fixedSession{Loaded: true}, backend, Deps{})

	msg, err := h.SubmitContactForm(context.Background(), identity.ContactForm{SenderName: "Kai", SenderEmail: "kai@x.sg", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, ContactSentMessage, msg)

	_, err = h.SubmitContactForm(context.Background(), identity.ContactForm{SenderName: "Kai", SenderEmail: "kai", Message: "hi"})
	assert.Equal(t, "Invalid email address", fieldError(t, err, "senderEmail"))
}

func TestAskEcoPilot(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}

	h := NewPublicHandler(fixedSession{Loaded: true}, backend, Deps{})
	_, err := h.AskEcoPilot(ctx, identity.EcoPilotPrompt{UserPrompt: "cans?"})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	h = NewPublicHandler(signedIn(shared.RoleParent), backend, Deps{})
	_, err = h.AskEcoPilot(ctx, identity.EcoPilotPrompt{UserPrompt: "  "})
	assert.Equal(t, "Prompt cannot be empty", fieldError(t, err, "userPrompt"))

	answer, err := h.AskEcoPilot(ctx, identity.EcoPilotPrompt{UserPrompt: "cans?"})
	require.NoError(t, err)
	assert.Equal(t, "Rinse it first.", answer)
	assert.Equal(t, "cans?", backend.lastPrompt)
}
