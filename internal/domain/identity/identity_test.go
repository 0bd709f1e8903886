package identity

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

func fieldErrors(t *testing.T, err error) *shared.ValidationError {
	t.Helper()
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr
}

func validRegistration() ParentRegistration {
	r := NewParentRegistration()
	r.FName = "Mary Ann"
	r.LName = "Tan"
	r.Name = "marytan"
	r.Email = "mary.tan@mail.sg"
	r.ContactNumber = "91234567"
	r.StudentID = "S123"
	r.Password = "supersecret"
	r.ConfirmPassword = "supersecret"
	return r
}

func TestParentRegistration_Valid(t *testing.T) {
	r := validRegistration()
	r.UserRole = shared.RoleAdmin
	require.NoError(t, r.Validate())
	assert.Equal(t, shared.RoleParent, r.UserRole)
}

func TestParentRegistration_Messages(t *testing.T) {
	r := validRegistration()
	r.FName = "M4ry"
	r.Name = "mary tan"
	r.Email = "mary@"
	r.ContactNumber = "9123"
	r.Password = "short"
	r.ConfirmPassword = "different"
	r.StudentID = ""

	verr := fieldErrors(t, r.Validate())
	assert.Equal(t, "First Name cannot contain numbers", verr.Field("fname"))
	assert.Equal(t, "Username cannot contain spaces", verr.Field("name"))
	assert.Equal(t, "Invalid email address", verr.Field("email"))
	assert.Equal(t, "Contact number must be exactly 8 digits", verr.Field("contactNumber"))
	assert.Equal(t, "Password must be at least 8 characters", verr.Field("password"))
	assert.Equal(t, "Passwords must match", verr.Field("confirmPassword"))
	assert.Equal(t, "StudentID is required", verr.Field("studentID"))
	assert.Empty(t, verr.Field("lname"))

	verr = fieldErrors(t, (&ParentRegistration{}).Validate())
	assert.Equal(t, "First Name is required", verr.Field("fname"))
	assert.Equal(t, "Confirm Password is required", verr.Field("confirmPassword"))
}

func TestMapRegistrationError(t *testing.T) {
	cases := map[string][2]string{
		"Username must be unique.":       {"name", "Username already exists"},
		"Email must be unique.":          {"email", "Email already exists"},
		"Contact number must be unique.": {"contactNumber", "Contact number already exists"},
		" Invalid student ID. ":          {"studentID", "Invalid StudentID"},
	}
	for msg, want := range cases {
		field, text, ok := MapRegistrationError(msg)
		require.True(t, ok, msg)
		assert.Equal(t, want[0], field)
		assert.Equal(t, want[1], text)
	}

	_, _, ok := MapRegistrationError("Something else.")
	assert.False(t, ok)
}

func TestStudentEdit(t *testing.T) {
	f := StudentEdit{StudentID: "1", FName: " Ana ", LName: "Lim", Email: "ana@school.edu.sg"}
	require.NoError(t, f.Validate())
	assert.Equal(t, "Ana", f.FName)

	f = StudentEdit{StudentID: "1", FName: "Ana1", LName: strings.Repeat("a", 41), Email: "ana@school"}
	verr := fieldErrors(t, f.Validate())
	assert.Equal(t, "Name can only contain letters and spaces.", verr.Field("fName"))
	assert.Equal(t, "Name cannot be more than 40 character.", verr.Field("lName"))
	assert.Equal(t, "Please enter a valid email address.", verr.Field("studentEmail"))

	f = StudentEdit{StudentID: "1", FName: "A", LName: "B", Email: strings.Repeat("a", 55) + "@x.com"}
	verr = fieldErrors(t, f.Validate())
	assert.Equal(t, "Email cannot be more than 60 character.", verr.Field("studentEmail"))
}

func TestSmallForms(t *testing.T) {
	assert.NoError(t, VerificationCode{Code: "123456"}.Validate())
	assert.Error(t, VerificationCode{Code: "12345"}.Validate())
	assert.Error(t, VerificationCode{Code: "12345a"}.Validate())

	assert.NoError(t, EcoPilotPrompt{UserPrompt: "Can I recycle foil?"}.Validate())
	assert.True(t, shared.IsValidation(EcoPilotPrompt{UserPrompt: "  "}.Validate()))

	assert.Error(t, DeleteAccount{}.Validate())

	verr := fieldErrors(t, ContactForm{SenderName: "Jo", SenderEmail: "nope", Message: " "}.Validate())
	assert.Equal(t, "Invalid email address", verr.Field("senderEmail"))
	assert.Equal(t, "Message is required", verr.Field("message"))
	assert.Empty(t, verr.Field("senderName"))
}

func TestSearch(t *testing.T) {
	users := []ManagedUser{{ID: "1", Name: "alice"}, {ID: "2", Name: "Bob"}}
	assert.Len(t, SearchUsers(users, "B"), 1)
	assert.Len(t, SearchUsers(users, ""), 2)

	msgs := []ContactMessage{
		{ID: "1", SenderName: "Carol", SenderEmail: "c@x.sg"},
		{ID: "2", SenderName: "Dan", SenderEmail: "carol.friend@x.sg", HasReplied: true},
		{ID: "3", SenderName: "Eve", SenderEmail: "e@x.sg"},
	}
	assert.Len(t, SearchMessages(msgs, "carol"), 2)
	assert.Len(t, Pending(msgs), 2)
}
