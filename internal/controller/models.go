package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mergington-portal/internal/models"
	"mergington-portal/internal/ui"
)

// Status texts shown by the controller.
const (
	MsgRegisterSuccess = "Registration successful! You can now sign up for activities."
	MsgRegisterFailed  = "Failed to register. Please try again."
	MsgSignupSuccess   = "Signed up successfully"
	MsgSignupFailed    = "Failed to sign up. Please try again."
	MsgRejected        = "An error occurred"
	MsgLoadFailed      = "Failed to load activities. Please try again later."
)

// API is the subset of the activities server the controller consumes.
type API interface {
	ListActivities(ctx context.Context) ([]models.Activity, error)
	Register(ctx context.Context, input models.RegistrationRequest) error
	Signup(ctx context.Context, input models.SignupRequest) (string, error)
}

type ActivityList interface {
	Clear()
	AppendCard(card ui.Card)
	ShowFallback(text string)
}

type ActivitySelect interface {
	Clear()
	AppendOption(option ui.Option)
}

// Form exposes field values as typed by the user.
type Form interface {
	Value(field string) string
	Reset()
}

type StatusArea interface {
	Show(text string, kind models.StatusKind)
	Hide()
}

// Elements are the handles the controller renders into. All are required.
type Elements struct {
	ActivitiesList  ActivityList
	ActivitySelect  ActivitySelect
	RegisterForm    Form
	RegisterMessage StatusArea
	SignupForm      Form
	SignupMessage   StatusArea
}

// ElementsFromDocument binds the handles of doc.
func ElementsFromDocument(doc *ui.Document) Elements {
	return Elements{
		ActivitiesList:  doc.ActivitiesList,
		ActivitySelect:  doc.ActivitySelect,
		RegisterForm:    doc.RegisterForm,
		RegisterMessage: doc.RegisterMessage,
		SignupForm:      doc.SignupForm,
		SignupMessage:   doc.SignupMessage,
	}
}

func (e Elements) validate() error {
	var missing []string
	if e.ActivitiesList == nil {
		missing = append(missing, "activities list")
	}
	if e.ActivitySelect == nil {
		missing = append(missing, "activity select")
	}
	if e.RegisterForm == nil {
		missing = append(missing, "register form")
	}
	if e.RegisterMessage == nil {
		missing = append(missing, "register message")
	}
	if e.SignupForm == nil {
		missing = append(missing, "signup form")
	}
	if e.SignupMessage == nil {
		missing = append(missing, "signup message")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing elements: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Timer is a pending hide. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
