package student

import (
	"strings"
	"time"

	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

// NotAvailable is shown for missing emails.
const NotAvailable = "N/A"

// Account is the user account embedded in a student record.
type Account struct {
	ID    shared.ID `json:"id,omitempty"`
	Name  string    `json:"name"`
	FName string    `json:"fName,omitempty"`
	LName string    `json:"lName,omitempty"`
	Email string    `json:"email"`
}

// Parent is the linked parent of a student.
type Parent struct {
	ParentEmail string `json:"parentEmail"`
}

// Student is a student record as returned by the backend.
type Student struct {
	StudentID         shared.ID        `json:"studentID"`
	ClassID           shared.ID        `json:"classID,omitempty"`
	League            shared.League    `json:"league"`
	CurrentPoints     int              `json:"currentPoints"`
	TotalPoints       int              `json:"totalPoints"`
	Redemptions       int              `json:"redemptions"`
	Streak            int              `json:"streak"`
	LastClaimedStreak shared.Timestamp `json:"lastClaimedStreak"`
	User              *Account         `json:"user,omitempty"`
	ParentID          shared.ID        `json:"parentID,omitempty"`
	Parent            *Parent          `json:"parent,omitempty"`
}

// Name returns the student's username, or "".
func (s *Student) Name() string {
	if s.User == nil {
		return ""
	}
	return s.User.Name
}

// Email returns the student's email or N/A.
func (s *Student) Email() string {
	if s.User == nil || strings.TrimSpace(s.User.Email) == "" {
		return NotAvailable
	}
	return s.User.Email
}

// ParentEmail returns the linked parent's email or N/A.
func (s *Student) ParentEmail() string {
	if s.Parent == nil || strings.TrimSpace(s.Parent.ParentEmail) == "" {
		return NotAvailable
	}
	return s.Parent.ParentEmail
}

// HasParent reports whether a parent account is linked.
func (s *Student) HasParent() bool {
	return !s.ParentID.IsEmpty()
}

// GiftStatus evaluates the streak gift for this student at now.
func (s *Student) GiftStatus(now time.Time) GiftStatus {
	return StreakGift(s.Streak, s.LastClaimedStreak.Ptr(), now)
}

// AddPoints credits awarded points to the spendable balance.
func (s *Student) AddPoints(points int) {
	s.CurrentPoints += points
}

// Task is a recycling task assigned to a student.
type Task struct {
	TaskID              shared.ID `json:"taskID"`
	TaskTitle           string    `json:"taskTitle"`
	TaskDescription     string    `json:"taskDescription"`
	TaskPoints          int       `json:"taskPoints"`
	VerificationPending bool      `json:"verificationPending"`
	TaskVerified        bool      `json:"taskVerified"`
}

// TaskState is the display state of a task.
type TaskState string

const (
	TaskOpen     TaskState = "open"
	TaskPending  TaskState = "pending"
	TaskVerified TaskState = "verified"
)

// State returns the display state of the task.
func (t Task) State() TaskState {
	switch {
	case t.TaskVerified:
		return TaskVerified
	case t.VerificationPending:
		return TaskPending
	default:
		return TaskOpen
	}
}

// Recipient selects who receives a progress update email.
type Recipient string

const (
	RecipientStudent Recipient = "student"
	RecipientParent  Recipient = "parent"
)

// ParseRecipients parses "student,parent" style lists, dropping duplicates.
func ParseRecipients(s string) ([]Recipient, error) {
	var out []Recipient
	seen := map[Recipient]bool{}
	for _, part := range strings.Split(s, ",") {
		r := Recipient(strings.ToLower(strings.TrimSpace(part)))
		if r == "" {
			continue
		}
		if r != RecipientStudent && r != RecipientParent {
			return nil, shared.NewDomainError("student", "ParseRecipients", shared.ErrInvalidInput, "unknown recipient "+string(r))
		}
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out, nil
}

// Recognition is the result of scanning an item photo.
type Recognition struct {
	Category   string `json:"category"`
	Result     string `json:"result"`
	Message    string `json:"message,omitempty"`
	Recyclable bool   `json:"-"`
}
