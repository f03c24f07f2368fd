package controller

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"
	"testing"
	"time"

	"mergington-portal/internal/common/config"
	"mergington-portal/internal/common/errors"
	"mergington-portal/internal/common/logger"
	"mergington-portal/internal/common/observability"
	"mergington-portal/internal/models"
	"mergington-portal/internal/ui"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// ==========================
// Mock API Implementation
// ==========================

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListActivities(ctx context.Context) ([]models.Activity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Activity), args.Error(1)
}

func (m *MockAPI) Register(ctx context.Context, input models.RegistrationRequest) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockAPI) Signup(ctx context.Context, input models.SignupRequest) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

// ==========================
// Fake Scheduler
// ==========================

type fakeTimer struct {
	scheduler *fakeScheduler
	at        time.Duration
	f         func()
	stopped   bool
	fired     bool
}

func (t *fakeTimer) Stop() bool {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{scheduler: s, at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock and runs due timers in deadline order.
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// ==========================
// Test Helpers
// ==========================

func sampleActivities() []models.Activity {
	return []models.Activity{
		{ID: "1", Name: "Chess Club", Description: "Strategy", Schedule: "Fridays", MaxParticipants: 12, CurrentParticipants: 2},
		{ID: "2", Name: "Programming Class", Description: "Code", Schedule: "Tuesdays", MaxParticipants: 20, CurrentParticipants: 20},
		{ID: "3", Name: "Art Studio", Description: "Paint", Schedule: "Mondays", MaxParticipants: 15, CurrentParticipants: 4},
	}
}

func newTestController(t *testing.T, api API) (*Controller, *ui.Document, *fakeScheduler) {
	t.Helper()
	doc := ui.NewDocument()
	scheduler := &fakeScheduler{}
	c, err := New(Options{
		API:       api,
		Elements:  ElementsFromDocument(doc),
		Logger:    logger.NewTestLogger(t),
		Scheduler: scheduler,
	})
	require.NoError(t, err)
	return c, doc, scheduler
}

func fillRegistration(doc *ui.Document) models.RegistrationRequest {
	doc.RegisterForm.Set(ui.FieldEmail, "emma@mergington.edu")
	doc.RegisterForm.Set(ui.FieldFirstName, "Emma")
	doc.RegisterForm.Set(ui.FieldLastName, "Stone")
	doc.RegisterForm.Set(ui.FieldPassword, "hunter2")
	return models.RegistrationRequest{
		Email:     "emma@mergington.edu",
		FirstName: "Emma",
		LastName:  "Stone",
		Password:  "hunter2",
	}
}

func fillSignup(doc *ui.Document, activity, email string) {
	doc.SignupForm.Set(ui.FieldActivity, activity)
	doc.SignupForm.Set(ui.FieldEmail, email)
}

// ==========================
// Constructor
// ==========================

func TestNew(t *testing.T) {
	doc := ui.NewDocument()

	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{
			name: "valid",
			opts: Options{API: &MockAPI{}, Elements: ElementsFromDocument(doc)},
		},
		{
			name:    "missing api",
			opts:    Options{Elements: ElementsFromDocument(doc)},
			wantErr: "api client is required",
		},
		{
			name: "missing elements",
			opts: Options{API: &MockAPI{}, Elements: Elements{
				ActivitiesList: doc.ActivitiesList,
				RegisterForm:   doc.RegisterForm,
			}},
			wantErr: "missing elements: activity select, register message, signup form, signup message",
		},
		{
			name: "invalid config",
			opts: Options{
				API:          &MockAPI{},
				Elements:     ElementsFromDocument(doc),
				CustomConfig: &Config{HideDelay: 0, RequestTimeout: time.Second},
			},
			wantErr: "status_hide_delay must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultConfig(), c.config)
		})
	}
}

func TestNew_AppConfig(t *testing.T) {
	c, err := New(Options{
		API:      &MockAPI{},
		Elements: ElementsFromDocument(ui.NewDocument()),
		AppConfig: &config.Config{
			API: config.APIConfig{Timeout: 2500},
			UI:  config.UIConfig{StatusHideDelay: 1500},
		},
		Logger: logger.NewNoOpLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, c.config.HideDelay)
	assert.Equal(t, 2500*time.Millisecond, c.config.RequestTimeout)
}

// ==========================
// RefreshActivities
// ==========================

func TestRefreshActivities_RendersInOrder(t *testing.T) {
	api := &MockAPI{}
	api.On("ListActivities", mock.Anything).Return(sampleActivities(), nil).Once()

	c, doc, _ := newTestController(t, api)
	c.Init(context.Background())

	cards := doc.ActivitiesList.Cards()
	require.Len(t, cards, len(sampleActivities()))
	for i, a := range sampleActivities() {
		assert.Equal(t, a.ID, cards[i].ActivityID)
		assert.Equal(t, a.MaxParticipants-a.CurrentParticipants, cards[i].SpotsLeft)
	}
	assert.Equal(t, []ui.Option{
		{Value: "1", Label: "Chess Club"},
		{Value: "2", Label: "Programming Class"},
		{Value: "3", Label: "Art Studio"},
	}, doc.ActivitySelect.Options())
	assert.Empty(t, doc.ActivitiesList.Fallback())
	api.AssertExpectations(t)
}

func TestRefreshActivities_ReplacesPreviousContent(t *testing.T) {
	api := &MockAPI{}
	api.On("ListActivities", mock.Anything).Return(sampleActivities(), nil).Once()
	api.On("ListActivities", mock.Anything).Return(sampleActivities()[:1], nil).Once()

	c, doc, _ := newTestController(t, api)
	c.RefreshActivities(context.Background())
	c.RefreshActivities(context.Background())

	assert.Len(t, doc.ActivitiesList.Cards(), 1)
	assert.Len(t, doc.ActivitySelect.Options(), 1)
}

func TestRefreshActivities_Empty(t *testing.T) {
	api := &MockAPI{}
	api.On("ListActivities", mock.Anything).Return([]models.Activity{}, nil)

	c, doc, _ := newTestController(t, api)
	c.RefreshActivities(context.Background())

	assert.Empty(t, doc.ActivitiesList.Cards())
	assert.Empty(t, doc.ActivitiesList.Fallback())
	assert.Empty(t, doc.ActivitySelect.Options())
}

func TestRefreshActivities_FailureKeepsDropdown(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "transport", err: errors.NewTransportError("/activities", stderrors.New("connection refused"))},
		{name: "invalid body", err: errors.NewResponseInvalidError("/activities", 200, stderrors.New("invalid character '<'"))},
		{name: "plain error", err: stderrors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockAPI{}
			api.On("ListActivities", mock.Anything).Return(sampleActivities(), nil).Once()
			api.On("ListActivities", mock.Anything).Return(nil, tt.err).Once()

			c, doc, _ := newTestController(t, api)
			c.RefreshActivities(context.Background())
			c.RefreshActivities(context.Background())

			assert.Equal(t, MsgLoadFailed, doc.ActivitiesList.Fallback())
			assert.Empty(t, doc.ActivitiesList.Cards())
			assert.Len(t, doc.ActivitySelect.Options(), 3)
		})
	}
}

func TestRefreshActivities_FailureLogsError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	cause := errors.NewTransportError("/activities", stderrors.New("connection refused"))

	api := &MockAPI{}
	api.On("ListActivities", mock.Anything).Return(nil, cause)

	c, err := New(Options{
		API:       api,
		Elements:  ElementsFromDocument(ui.NewDocument()),
		Logger:    logger.NewZapAdapter(zap.New(core)),
		Scheduler: &fakeScheduler{},
	})
	require.NoError(t, err)

	c.RefreshActivities(context.Background())

	entries := logs.FilterMessage("Failed to load activities").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, cause.Error(), fields["error"])
	assert.Equal(t, "controller", fields["component"])
	assert.EqualValues(t, errors.ErrCodeTransportFailed, fields["errorCode"])
}

// ==========================
// SubmitRegistration
// ==========================

func TestSubmitRegistration(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantText  string
		wantKind  models.StatusKind
		wantReset bool
	}{
		{
			name:      "accepted",
			wantText:  MsgRegisterSuccess,
			wantKind:  models.StatusSuccess,
			wantReset: true,
		},
		{
			name:     "rejected with detail",
			err:      errors.NewRejectedError("/register", 400, "Email already registered"),
			wantText: "Email already registered",
			wantKind: models.StatusError,
		},
		{
			name:     "rejected without detail",
			err:      errors.NewRejectedError("/register", 422, ""),
			wantText: MsgRejected,
			wantKind: models.StatusError,
		},
		{
			name:     "transport failure",
			err:      errors.NewTransportError("/register", stderrors.New("connection refused")),
			wantText: MsgRegisterFailed,
			wantKind: models.StatusError,
		},
		{
			name:     "non-JSON error body",
			err:      errors.NewResponseInvalidError("/register", 500, stderrors.New("invalid character")),
			wantText: MsgRegisterFailed,
			wantKind: models.StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockAPI{}
			c, doc, _ := newTestController(t, api)
			want := fillRegistration(doc)
			api.On("Register", mock.Anything, want).Return(tt.err).Once()

			c.SubmitRegistration(context.Background())

			msg := doc.RegisterMessage.Snapshot()
			assert.True(t, msg.Visible)
			assert.Equal(t, tt.wantText, msg.Text)
			assert.Equal(t, tt.wantKind, msg.Kind)

			if tt.wantReset {
				assert.Empty(t, doc.RegisterForm.Value(ui.FieldEmail))
				assert.Empty(t, doc.RegisterForm.Value(ui.FieldPassword))
			} else {
				assert.Equal(t, want.Email, doc.RegisterForm.Value(ui.FieldEmail))
				assert.Equal(t, want.Password, doc.RegisterForm.Value(ui.FieldPassword))
			}
			assert.False(t, doc.SignupMessage.Snapshot().Visible)
			api.AssertExpectations(t)
		})
	}
}

func TestSubmitRegistration_SendsValuesVerbatim(t *testing.T) {
	api := &MockAPI{}
	c, doc, _ := newTestController(t, api)
	doc.RegisterForm.Set(ui.FieldEmail, " not-an-email ")

	api.On("Register", mock.Anything, models.RegistrationRequest{Email: " not-an-email "}).Return(nil).Once()
	c.SubmitRegistration(context.Background())

	api.AssertExpectations(t)
}

// ==========================
// SubmitSignup
// ==========================

func TestSubmitSignup_Success(t *testing.T) {
	api := &MockAPI{}
	c, doc, _ := newTestController(t, api)
	fillSignup(doc, "1", "emma@mergington.edu")

	refreshed := sampleActivities()
	refreshed[0].CurrentParticipants++

	api.On("Signup", mock.Anything, models.SignupRequest{ActivityID: "1", Email: "emma@mergington.edu"}).
		Return("Signed up", nil).Once()
	api.On("ListActivities", mock.Anything).Return(refreshed, nil).Once()

	c.SubmitSignup(context.Background())

	msg := doc.SignupMessage.Snapshot()
	assert.Equal(t, "Signed up", msg.Text)
	assert.Equal(t, models.StatusSuccess, msg.Kind)
	assert.Empty(t, doc.SignupForm.Value(ui.FieldEmail))
	assert.Empty(t, doc.SignupForm.Value(ui.FieldActivity))

	// The refresh has completed by the time SubmitSignup returns.
	cards := doc.ActivitiesList.Cards()
	require.Len(t, cards, 3)
	assert.Equal(t, 9, cards[0].SpotsLeft)
	api.AssertNumberOfCalls(t, "ListActivities", 1)
	api.AssertExpectations(t)
}

func TestSubmitSignup_EmptyMessage(t *testing.T) {
	api := &MockAPI{}
	c, doc, _ := newTestController(t, api)
	fillSignup(doc, "2", "emma@mergington.edu")

	api.On("Signup", mock.Anything, mock.Anything).Return("", nil).Once()
	api.On("ListActivities", mock.Anything).Return(sampleActivities(), nil).Once()

	c.SubmitSignup(context.Background())

	assert.Equal(t, MsgSignupSuccess, doc.SignupMessage.Snapshot().Text)
}

func TestSubmitSignup_Failures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantText string
	}{
		{
			name:     "activity full",
			err:      errors.NewRejectedError("/activities/{id}/signup", 400, "Activity is full"),
			wantText: "Activity is full",
		},
		{
			name:     "rejected without detail",
			err:      errors.NewRejectedError("/activities/{id}/signup", 404, ""),
			wantText: MsgRejected,
		},
		{
			name:     "transport failure",
			err:      errors.NewTransportError("/activities/{id}/signup", context.DeadlineExceeded),
			wantText: MsgSignupFailed,
		},
		{
			name:     "invalid success body",
			err:      errors.NewResponseInvalidError("/activities/{id}/signup", 200, stderrors.New("unexpected end of JSON input")),
			wantText: MsgSignupFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockAPI{}
			c, doc, _ := newTestController(t, api)
			fillSignup(doc, "3", "emma@mergington.edu")
			api.On("Signup", mock.Anything, mock.Anything).Return("", tt.err).Once()

			c.SubmitSignup(context.Background())

			msg := doc.SignupMessage.Snapshot()
			assert.Equal(t, tt.wantText, msg.Text)
			assert.Equal(t, models.StatusError, msg.Kind)
			assert.Equal(t, "3", doc.SignupForm.Value(ui.FieldActivity))
			assert.Equal(t, "emma@mergington.edu", doc.SignupForm.Value(ui.FieldEmail))
			api.AssertNotCalled(t, "ListActivities", mock.Anything)
		})
	}
}

// ==========================
// HandleUnregister
// ==========================

func TestHandleUnregister_IsNoOp(t *testing.T) {
	api := &MockAPI{}
	c, doc, _ := newTestController(t, api)

	changes := 0
	doc.OnChange(func() { changes++ })

	c.HandleUnregister()

	assert.Zero(t, changes)
	api.AssertNotCalled(t, "ListActivities", mock.Anything)
	api.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

// ==========================
// Observability
// ==========================

func TestController_RecordsOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := observability.NewWithRegisterer("controller-test", reg)
	require.NoError(t, err)
	defer obs.Shutdown()

	api := &MockAPI{}
	api.On("ListActivities", mock.Anything).Return(sampleActivities(), nil)

	c, err := New(Options{
		API:           api,
		Elements:      ElementsFromDocument(ui.NewDocument()),
		Logger:        logger.NewTestLogger(t),
		Scheduler:     &fakeScheduler{},
		Observability: obs,
	})
	require.NoError(t, err)

	c.RefreshActivities(context.Background())

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "portal_operations_total")
	assert.Contains(t, names, "portal_operation_duration_milliseconds")
}
