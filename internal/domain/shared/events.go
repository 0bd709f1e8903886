package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Commands publish them after the backend confirms a change.
const (
	// Session events
	EventSessionLoaded  EventType = "session.loaded"
	EventSessionFailed  EventType = "session.failed"
	EventLoggedOut      EventType = "session.logged_out"
	EventTokenRefreshed EventType = "session.token_refreshed"

	// Student events
	EventStreakGiftClaimed EventType = "student.streak_gift_claimed"
	EventItemRecognised    EventType = "student.item_recognised"

	// Teacher events
	EventStudentUpdated    EventType = "teacher.student_updated"
	EventStudentDeleted    EventType = "teacher.student_deleted"
	EventQuestsRegenerated EventType = "teacher.quests_regenerated"
	EventCertificateSent   EventType = "teacher.certificate_sent"

	// Admin events
	EventRewardChanged  EventType = "admin.reward_changed"
	EventUserUpdated    EventType = "admin.user_updated"
	EventMessageReplied EventType = "admin.message_replied"

	// Account events
	EventAccountRegistered EventType = "account.registered"
	EventContactVerified   EventType = "account.contact_verified"
	EventAccountDeleted    EventType = "account.deleted"
)

// Event is something that happened after the backend confirmed it.
type Event interface {
	EventType() EventType
	OccurredAt() time.Time

	// AggregateID is the user, student, reward or message the event is about.
	AggregateID() string

	// Payload is the event data as log fields.
	Payload() map[string]any
}

// Meta is the part every event shares.
type Meta struct {
	Type      EventType `json:"type"`
	At        time.Time `json:"at"`
	Aggregate string    `json:"aggregate_id,omitempty"`
}

func (m Meta) EventType() EventType  { return m.Type }
func (m Meta) OccurredAt() time.Time { return m.At }
func (m Meta) AggregateID() string   { return m.Aggregate }

func newMeta(eventType EventType, aggregateID string) Meta {
	return Meta{Type: eventType, At: time.Now(), Aggregate: aggregateID}
}

// Record is an event with a free-form payload. Most events only carry a
// few fields for the audit log.
type Record struct {
	Meta
	Data map[string]any `json:"data,omitempty"`
}

func (r Record) Payload() map[string]any {
	if r.Data == nil {
		return map[string]any{}
	}
	return r.Data
}

// NewEvent creates a Record.
func NewEvent(eventType EventType, aggregateID string, data map[string]any) Record {
	return Record{Meta: newMeta(eventType, aggregateID), Data: data}
}

// StreakGiftClaimedEvent is published when a student claims the weekly gift.
type StreakGiftClaimedEvent struct {
	Meta
	Streak        int `json:"streak"`
	PointsAwarded int `json:"points_awarded"`
}

func (e StreakGiftClaimedEvent) Payload() map[string]any {
	return map[string]any{"streak": e.Streak, "points_awarded": e.PointsAwarded}
}

func NewStreakGiftClaimedEvent(studentID string, streak, points int) StreakGiftClaimedEvent {
	return StreakGiftClaimedEvent{
		Meta:          newMeta(EventStreakGiftClaimed, studentID),
		Streak:        streak,
		PointsAwarded: points,
	}
}

// EventHandler reacts to one event.
type EventHandler func(event Event) error

// EventPublisher is what commands publish through.
type EventPublisher interface {
	Publish(event Event) error
}

// EventSubscriber registers handlers for one type or for every event.
type EventSubscriber interface {
	Subscribe(eventType EventType, handler EventHandler) error
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(Event) error { return nil }
