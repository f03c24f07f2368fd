package controller

import (
	"context"
	"testing"
	"time"

	"mergington-portal/internal/common/errors"
	"mergington-portal/internal/common/logger"
	"mergington-portal/internal/models"
	"mergington-portal/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStatus_HiddenAfterDelay(t *testing.T) {
	api := &MockAPI{}
	api.On("Register", mock.Anything, mock.Anything).Return(nil)

	c, doc, scheduler := newTestController(t, api)
	c.SubmitRegistration(context.Background())

	scheduler.Advance(4999 * time.Millisecond)
	assert.True(t, doc.RegisterMessage.Snapshot().Visible)

	scheduler.Advance(time.Millisecond)
	msg := doc.RegisterMessage.Snapshot()
	assert.False(t, msg.Visible)
	assert.Equal(t, MsgRegisterSuccess, msg.Text)
}

func TestStatus_NewMessageRestartsDelay(t *testing.T) {
	api := &MockAPI{}
	api.On("Register", mock.Anything, mock.Anything).
		Return(errors.NewRejectedError("/register", 400, "Email already registered")).Once()
	api.On("Register", mock.Anything, mock.Anything).Return(nil).Once()

	c, doc, scheduler := newTestController(t, api)

	c.SubmitRegistration(context.Background())
	scheduler.Advance(3 * time.Second)

	c.SubmitRegistration(context.Background())
	scheduler.Advance(2 * time.Second)

	// The first hide would have fired here.
	msg := doc.RegisterMessage.Snapshot()
	assert.True(t, msg.Visible)
	assert.Equal(t, MsgRegisterSuccess, msg.Text)

	scheduler.Advance(3 * time.Second)
	assert.False(t, doc.RegisterMessage.Snapshot().Visible)
}

func TestStatus_AreasAreIndependent(t *testing.T) {
	api := &MockAPI{}
	api.On("Register", mock.Anything, mock.Anything).Return(nil)
	api.On("Signup", mock.Anything, mock.Anything).
		Return("", errors.NewRejectedError("/activities/{id}/signup", 404, "Activity not found"))

	c, doc, scheduler := newTestController(t, api)

	c.SubmitRegistration(context.Background())
	scheduler.Advance(4 * time.Second)
	c.SubmitSignup(context.Background())

	scheduler.Advance(time.Second)
	assert.False(t, doc.RegisterMessage.Snapshot().Visible)
	assert.True(t, doc.SignupMessage.Snapshot().Visible)

	scheduler.Advance(4 * time.Second)
	assert.False(t, doc.SignupMessage.Snapshot().Visible)
}

func TestStatus_StaleTimerDoesNotHideNewMessage(t *testing.T) {
	api := &MockAPI{}
	c, doc, _ := newTestController(t, api)

	var stale func()
	c.scheduler = schedulerFunc(func(d time.Duration, f func()) Timer {
		if stale == nil {
			stale = f
		}
		return &fakeTimer{scheduler: &fakeScheduler{}}
	})

	c.showStatus(ui.SignupFormName, doc.SignupMessage, "first", models.StatusSuccess)
	c.showStatus(ui.SignupFormName, doc.SignupMessage, "second", models.StatusSuccess)

	// A timer that fired before Stop could take effect.
	require.NotNil(t, stale)
	stale()

	msg := doc.SignupMessage.Snapshot()
	assert.True(t, msg.Visible)
	assert.Equal(t, "second", msg.Text)
}

func TestStatus_RealScheduler(t *testing.T) {
	api := &MockAPI{}
	api.On("Register", mock.Anything, mock.Anything).Return(nil)

	doc := ui.NewDocument()
	c, err := New(Options{
		API:          api,
		Elements:     ElementsFromDocument(doc),
		CustomConfig: &Config{HideDelay: 20 * time.Millisecond, RequestTimeout: time.Second},
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)

	c.SubmitRegistration(context.Background())
	assert.True(t, doc.RegisterMessage.Snapshot().Visible)

	assert.Eventually(t, func() bool {
		return !doc.RegisterMessage.Snapshot().Visible
	}, time.Second, 5*time.Millisecond)
}

type schedulerFunc func(d time.Duration, f func()) Timer

func (f schedulerFunc) AfterFunc(d time.Duration, fn func()) Timer {
	return f(d, fn)
}
