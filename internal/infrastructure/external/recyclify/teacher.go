package recyclify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/recyclify/recyclify-client/internal/domain/leaderboard"
	"github.com/recyclify/recyclify-client/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetOverallClasses fetches every class of the signed-in teacher.
func (c *Client) GetOverallClasses(ctx context.Context) ([]leaderboard.Class, error) {
	var classes []leaderboard.Class
	if err := c.getData(ctx, "get-overall-classes-data", "/api/Teacher/get-overall-classes-data/", nil, &classes); err != nil {
		return nil, fmt.Errorf("get overall classes: %w", err)
	}
	return classes, nil
}

// GetClass fetches a single class.
func (c *Client) GetClass(ctx context.Context, classID string) (*leaderboard.Class, error) {
	var class leaderboard.Class
	if err := c.getData(ctx, "get-class", "/api/Teacher/get-class/", url.Values{"classId": {classID}}, &class); err != nil {
		return nil, fmt.Errorf("get class %s: %w", classID, err)
	}
	return &class, nil
}

// GetStudents fetches the students of a class.
func (c *Client) GetStudents(ctx context.Context, classID string) ([]student.Student, error) {
	var students []student.Student
	if err := c.getData(ctx, "get-students", "/api/Teacher/get-students/", url.Values{"classId": {classID}}, &students); err != nil {
		return nil, fmt.Errorf("get students of %s: %w", classID, err)
	}
	return students, nil
}

// GetClassPoints fetches the class's points records.
func (c *Client) GetClassPoints(ctx context.Context, classID string) ([]leaderboard.PointsRecord, error) {
	var records []leaderboard.PointsRecord
	if err := c.getData(ctx, "get-class-points", "/api/Teacher/get-class-points/", url.Values{"classId": {classID}}, &records); err != nil {
		return nil, fmt.Errorf("get class points: %w", err)
	}
	return records, nil
}

// UpdateStudent saves a student's name and email. The values travel as
// query parameters.
func (c *Client) UpdateStudent(ctx context.Context, u leaderboard.StudentUpdate) error {
	_, err := c.do(ctx, request{
		endpoint: "update-student",
		method:   http.MethodPut,
		path:     "/api/Teacher/update-student",
		query: url.Values{
			"studentID":    {u.StudentID},
			"fName":        {u.FName},
			"lName":        {u.LName},
			"studentEmail": {u.Email},
		},
	})
	if err != nil {
		return fmt.Errorf("update student %s: %w", u.StudentID, err)
	}
	return nil
}

// DeleteStudent removes a student.
func (c *Client) DeleteStudent(ctx context.Context, studentID string) error {
	_, err := c.do(ctx, request{
		endpoint: "delete-student",
		method:   http.MethodDelete,
		path:     "/api/Teacher/delete-student/",
		query:    url.Values{"studentID": {studentID}},
	})
	if err != nil {
		return fmt.Errorf("delete student %s: %w", studentID, err)
	}
	return nil
}

// SendUpdateEmail sends a progress email to the chosen recipients.
func (c *Client) SendUpdateEmail(ctx context.Context, req leaderboard.UpdateEmail) error {
	recipients := make([]string, len(req.Recipients))
	for i, r := range req.Recipients {
		recipients[i] = string(r)
	}

	_, err := c.do(ctx, request{
		endpoint: "send-update-email",
		method:   http.MethodPost,
		path:     "/api/Teacher/send-update-email",
		query: url.Values{
			"recipients":   {strings.Join(recipients, ",")},
			"classID":      {req.ClassID},
			"studentID":    {req.StudentID},
			"studentEmail": {req.StudentEmail},
			"parentID":     {req.ParentID},
			"parentEmail":  {req.ParentEmail},
		},
	})
	if err != nil {
		return fmt.Errorf("send update email: %w", err)
	}
	return nil
}

// RegenerateQuests replaces the quests of a class.
func (c *Client) RegenerateQuests(ctx context.Context, classID, teacherID string) error {
	_, err := c.do(ctx, request{
		endpoint: "regenerate-class-quests",
		method:   http.MethodPost,
		path:     "/api/Teacher/regenerate-class-quests",
		fields:   [][2]string{{"classID", classID}, {"teacherID", teacherID}},
	})
	if err != nil {
		return fmt.Errorf("regenerate quests: %w", err)
	}
	return nil
}

// SendCertificate emails a certificate to a class's top contributor.
func (c *Client) SendCertificate(ctx context.Context, name, email string) error {
	_, err := c.do(ctx, request{
		endpoint: "send-certificate",
		method:   http.MethodPost,
		path:     "/api/Teachers/send-certificate",
		body: map[string]string{
			"topContributorName":  name,
			"topContributorEmail": email,
		},
	})
	if err != nil {
		return fmt.Errorf("send certificate: %w", err)
	}
	return nil
}
