package student

import (
	"context"
	"io"
)

// Repository is the backend view of the signed-in student.
// Implemented by the Recyclify API client.
type Repository interface {
	// GetStudent returns the student record for studentID.
	GetStudent(ctx context.Context, studentID string) (*Student, error)

	// GetStudentTasks returns the tasks assigned to the student.
	GetStudentTasks(ctx context.Context, studentID string) ([]Task, error)

	// GetAllStudents returns the leaderboard as ordered by the backend.
	GetAllStudents(ctx context.Context, studentID string) ([]Student, error)

	// AwardGift claims the streak gift and returns the points awarded.
	AwardGift(ctx context.Context, studentID string) (int, error)

	// GetClassQuests returns the quests of a class.
	GetClassQuests(ctx context.Context, classID string) ([]Quest, error)

	// RecogniseImage uploads an item photo for classification.
	RecogniseImage(ctx context.Context, filename string, image io.Reader) (*Recognition, error)
}
