package recyclify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/recyclify/recyclify-client/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetStudent fetches a single student by ID.
func (c *Client) GetStudent(ctx context.Context, studentID string) (*student.Student, error) {
	var s student.Student
	if err := c.getData(ctx, "get-student", "/api/student/get-student", url.Values{"studentID": {studentID}}, &s); err != nil {
		return nil, fmt.Errorf("get student %s: %w", studentID, err)
	}
	return &s, nil
}

// GetStudentTasks fetches the tasks of a student.
func (c *Client) GetStudentTasks(ctx context.Context, studentID string) ([]student.Task, error) {
	var tasks []student.Task
	if err := c.getData(ctx, "get-student-tasks", "/api/student/get-student-tasks", url.Values{"studentID": {studentID}}, &tasks); err != nil {
		return nil, fmt.Errorf("get student tasks: %w", err)
	}
	return tasks, nil
}

// GetAllStudents fetches the student leaderboard.
func (c *Client) GetAllStudents(ctx context.Context, studentID string) ([]student.Student, error) {
	var students []student.Student
	if err := c.getData(ctx, "get-all-students", "/api/student/get-all-students", url.Values{"studentID": {studentID}}, &students); err != nil {
		return nil, fmt.Errorf("get all students: %w", err)
	}
	return students, nil
}

// GetClassQuests fetches the quests of a class.
func (c *Client) GetClassQuests(ctx context.Context, classID string) ([]student.Quest, error) {
	var quests []student.Quest
	if err := c.getData(ctx, "get-class-quests", "/api/student/get-class-quests", url.Values{"classID": {classID}}, &quests); err != nil {
		return nil, fmt.Errorf("get class quests: %w", err)
	}
	return quests, nil
}

// AwardGift claims the streak gift. The body is the student ID as a JSON
// string.
func (c *Client) AwardGift(ctx context.Context, studentID string) (int, error) {
	resp, err := c.do(ctx, request{
		endpoint: "award-gift",
		method:   http.MethodPost,
		path:     "/api/student/award-gift",
		body:     studentID,
	})
	if err != nil {
		return 0, fmt.Errorf("award gift: %w", err)
	}

	var out struct {
		PointsAwarded int `json:"pointsAwarded"`
	}
	if err := resp.data(&out); err != nil {
		return 0, fmt.Errorf("award gift: %w", err)
	}
	return out.PointsAwarded, nil
}

// RecogniseImage uploads a photo of an item and returns its category.
func (c *Client) RecogniseImage(ctx context.Context, filename string, image io.Reader) (*student.Recognition, error) {
	resp, err := c.do(ctx, request{
		endpoint: "recognise-image",
		method:   http.MethodPost,
		path:     "/api/student/recognise-image",
		file:     &formFile{field: "file", name: filename, r: image},
	})
	if err != nil {
		return nil, fmt.Errorf("recognise image: %w", err)
	}

	var rec student.Recognition
	if err := resp.raw(&rec); err != nil {
		return nil, fmt.Errorf("recognise image: %w", err)
	}
	rec.Recyclable = rec.Result == "Yes"
	return &rec, nil
}

// getData performs a GET and decodes the envelope's data field.
func (c *Client) getData(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, request{
		endpoint: endpoint,
		method:   http.MethodGet,
		path:     path,
		query:    query,
	})
	if err != nil {
		return err
	}
	return resp.data(out)
}
