package model

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// DateLayout is the wire format for the start date.
const DateLayout = "2006-01-02"

// Intake holds the fields collected when an onboarding process is started.
// All fields are required and validated before the first transition.
type Intake struct {
	FirstName     string `json:"firstName" yaml:"firstName"`
	LastName      string `json:"lastName" yaml:"lastName"`
	Email         string `json:"email" yaml:"email"`
	Phone         string `json:"phone" yaml:"phone"`
	PositionTitle string `json:"positionTitle" yaml:"positionTitle"`
	Department    string `json:"department" yaml:"department"`
	StartDate     string `json:"startDate" yaml:"startDate"`
}

// FullName returns "First Last" for display and account provisioning.
func (i Intake) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// Validate checks that all intake fields are present and well formed.
// It returns a *ValidationError aggregating every violation, never a partial
// report, so that callers can surface all problems at once.
func (i Intake) Validate() error {
	var issues []string
	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			issues = append(issues, field+" is required")
		}
	}
	require("firstName", i.FirstName)
	require("lastName", i.LastName)
	require("email", i.Email)
	require("phone", i.Phone)
	require("positionTitle", i.PositionTitle)
	require("department", i.Department)
	require("startDate", i.StartDate)

	if i.Email != "" {
		if _, err := mail.ParseAddress(i.Email); err != nil {
			issues = append(issues, fmt.Sprintf("email %q is malformed", i.Email))
		}
	}
	if i.StartDate != "" {
		if _, err := time.Parse(DateLayout, i.StartDate); err != nil {
			issues = append(issues, fmt.Sprintf("startDate %q is not a valid %s date", i.StartDate, DateLayout))
		}
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
