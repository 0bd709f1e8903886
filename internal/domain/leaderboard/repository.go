package leaderboard

import (
	"context"

	"github.com/recyclify/recyclify-client/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLASS REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// Repository is the teacher's view of classes and their students.
// Implemented by the Recyclify API client.
type Repository interface {
	// GetOverallClasses returns every class of the signed-in teacher with
	// their students.
	GetOverallClasses(ctx context.Context) ([]Class, error)

	// GetClass returns a single class.
	GetClass(ctx context.Context, classID string) (*Class, error)

	// GetStudents returns the students of a class.
	GetStudents(ctx context.Context, classID string) ([]student.Student, error)

	// GetClassPoints returns the class's daily points records for the last week.
	GetClassPoints(ctx context.Context, classID string) ([]PointsRecord, error)

	// UpdateStudent saves a teacher's edit of a student's name and email.
	UpdateStudent(ctx context.Context, update StudentUpdate) error

	// DeleteStudent removes a student from the class.
	DeleteStudent(ctx context.Context, studentID string) error

	// SendUpdateEmail emails a progress update to the student and/or parent.
	SendUpdateEmail(ctx context.Context, req UpdateEmail) error

	// RegenerateQuests replaces the class's quests.
	RegenerateQuests(ctx context.Context, classID, teacherID string) error

	// SendCertificate emails a certificate to the class's top contributor.
	SendCertificate(ctx context.Context, name, email string) error
}

// StudentUpdate is the teacher's edit of a student.
type StudentUpdate struct {
	StudentID string
	FName     string
	LName     string
	Email     string
}

// UpdateEmail describes a progress email.
type UpdateEmail struct {
	Recipients   []student.Recipient
	ClassID      string
	StudentID    string
	StudentEmail string
	ParentID     string
	ParentEmail  string
}

// NewUpdateEmail builds the email request for s. Parent fields stay empty
// when no parent is linked.
func NewUpdateEmail(s student.Student, recipients []student.Recipient) UpdateEmail {
	req := UpdateEmail{
		Recipients: recipients,
		ClassID:    string(s.ClassID),
		StudentID:  string(s.StudentID),
	}
	if s.User != nil {
		req.StudentEmail = s.User.Email
	}
	if s.HasParent() {
		req.ParentID = string(s.ParentID)
		if s.Parent != nil {
			req.ParentEmail = s.Parent.ParentEmail
		}
	}
	return req
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE CACHE
// ══════════════════════════════════════════════════════════════════════════════

// Cache holds short-lived copies of class listings so repeated dashboard
// renders do not refetch. Implemented over Redis.
type Cache interface {
	GetClasses(ctx context.Context, key string) ([]Class, bool, error)
	SetClasses(ctx context.Context, key string, classes []Class) error
	GetStudents(ctx context.Context, classID string) ([]student.Student, bool, error)
	SetStudents(ctx context.Context, classID string, students []student.Student) error
	Invalidate(ctx context.Context) error
}
