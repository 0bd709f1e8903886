// Package identity holds account forms, registration error mapping and the
// admin's view of users and contact messages.
package identity

import (
	"strings"

	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/pkg/validate"
)

func check(form any, msgs validate.Messages) error {
	fields, err := validate.Struct(form, msgs)
	if err != nil {
		return err
	}
	return shared.FieldErrors(fields)
}

// ══════════════════════════════════════════════════════════════════════════════
// PARENT REGISTRATION
// ══════════════════════════════════════════════════════════════════════════════

// ParentRegistration is the sign-up form for parents. It is sent to
// createAccount as-is.
type ParentRegistration struct {
	FName           string      `json:"fname" validate:"required,letters"`
	LName           string      `json:"lname" validate:"required,letters"`
	Name            string      `json:"name" validate:"required,nospace"`
	Email           string      `json:"email" validate:"required,email_addr"`
	ContactNumber   string      `json:"contactNumber" validate:"required,phone8"`
	StudentID       string      `json:"studentID" validate:"required"`
	Password        string      `json:"password" validate:"required,min=8"`
	ConfirmPassword string      `json:"confirmPassword" validate:"required,eqfield=Password"`
	UserRole        shared.Role `json:"userRole"`
	Avatar          string      `json:"avatar"`
}

var registrationMessages = validate.Messages{
	"fname.required":           "First Name is required",
	"fname.letters":            "First Name cannot contain numbers",
	"lname.required":           "Last Name is required",
	"lname.letters":            "Last Name cannot contain numbers",
	"name.required":            "Username is required",
	"name.nospace":             "Username cannot contain spaces",
	"email.required":           "Email is required",
	"email.email_addr":         "Invalid email address",
	"contactNumber.required":   "Contact number is required",
	"contactNumber.phone8":     "Contact number must be exactly 8 digits",
	"studentID.required":       "StudentID is required",
	"password.required":        "Password is required",
	"password.min":             "Password must be at least 8 characters",
	"confirmPassword.required": "Confirm Password is required",
	"confirmPassword.eqfield":  "Passwords must match",
}

// NewParentRegistration returns a form with the fixed parent role.
func NewParentRegistration() ParentRegistration {
	return ParentRegistration{UserRole: shared.RoleParent}
}

// Validate checks the form and forces the parent role.
func (r *ParentRegistration) Validate() error {
	r.UserRole = shared.RoleParent
	return check(r, registrationMessages)
}

// AccountCreatedMessage is the success text of createAccount.
const AccountCreatedMessage = "Account created successfully."

// EmailVerificationPath is where a new account goes next.
const EmailVerificationPath = "/auth/emailVerification"

var registrationFieldErrors = map[string][2]string{
	"Username must be unique.":       {"name", "Username already exists"},
	"Email must be unique.":          {"email", "Email already exists"},
	"Contact number must be unique.": {"contactNumber", "Contact number already exists"},
	"Invalid student ID.":            {"studentID", "Invalid StudentID"},
}

// MapRegistrationError turns a createAccount user error into a field error.
// ok is false for messages that belong to no field.
func MapRegistrationError(message string) (field, text string, ok bool) {
	m, ok := registrationFieldErrors[strings.TrimSpace(message)]
	if !ok {
		return "", "", false
	}
	return m[0], m[1], true
}

// ══════════════════════════════════════════════════════════════════════════════
// SMALLER FORMS
// ══════════════════════════════════════════════════════════════════════════════

// ContactForm is the public "contact us" form.
type ContactForm struct {
	SenderName  string `json:"senderName" validate:"notblank"`
	SenderEmail string `json:"senderEmail" validate:"required,email"`
	Message     string `json:"message" validate:"notblank"`
}

var contactMessages = validate.Messages{
	"senderName":           "Name is required",
	"senderEmail.required": "Email is required",
	"senderEmail.email":    "Invalid email address",
	"message":              "Message is required",
}

func (f ContactForm) Validate() error { return check(f, contactMessages) }

// StudentEdit is a teacher's edit of a student's name and email.
type StudentEdit struct {
	StudentID string `json:"studentID" validate:"required"`
	FName     string `json:"fName" validate:"name_letters,max=40"`
	LName     string `json:"lName" validate:"name_letters,max=40"`
	Email     string `json:"studentEmail" validate:"email_strict,max=60"`
}

var studentEditMessages = validate.Messages{
	"studentID":                 "StudentID is required",
	"fName.name_letters":        "Name can only contain letters and spaces.",
	"fName.max":                 "Name cannot be more than 40 character.",
	"lName.name_letters":        "Name can only contain letters and spaces.",
	"lName.max":                 "Name cannot be more than 40 character.",
	"studentEmail.email_strict": "Please enter a valid email address.",
	"studentEmail.max":          "Email cannot be more than 60 character.",
}

// Validate trims the inputs and checks them.
func (f *StudentEdit) Validate() error {
	f.FName = strings.TrimSpace(f.FName)
	f.LName = strings.TrimSpace(f.LName)
	f.Email = strings.TrimSpace(f.Email)
	return check(f, studentEditMessages)
}

// VerificationCode is the 6-digit SMS code.
type VerificationCode struct {
	Code string `json:"code" validate:"code6"`
}

func (f VerificationCode) Validate() error {
	return check(f, validate.Messages{"code": "Please enter all 6 digits of the verification code"})
}

// EcoPilotPrompt is a question for the EcoPilot assistant.
type EcoPilotPrompt struct {
	UserPrompt string `json:"userPrompt" validate:"notblank"`
}

func (f EcoPilotPrompt) Validate() error {
	return check(f, validate.Messages{"userPrompt": "Prompt cannot be empty"})
}

// DeleteAccount confirms account deletion with the password.
type DeleteAccount struct {
	Password string `json:"password" validate:"required"`
}

func (f DeleteAccount) Validate() error {
	return check(f, validate.Messages{"password": "Password is required"})
}
