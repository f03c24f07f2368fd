// Package controller drives the activities page: it loads the activity list
// and handles the registration and signup forms, reporting every outcome as a
// per-form status message that hides itself after a delay.
package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mergington-portal/internal/common/config"
	"mergington-portal/internal/common/errors"
	"mergington-portal/internal/common/logger"
	"mergington-portal/internal/common/metrics"
	"mergington-portal/internal/common/observability"
	"mergington-portal/internal/models"
	"mergington-portal/internal/ui"
)

// Operation names used in logs and operation metrics.
const (
	OpRefresh    = "refresh_activities"
	OpRegister   = "submit_registration"
	OpSignup     = "submit_signup"
	OpUnregister = "handle_unregister"
)

type Controller struct {
	config        *Config
	api           API
	elements      Elements
	logger        logger.Logger
	scheduler     Scheduler
	observability *observability.Observability

	mu      sync.Mutex
	pending map[string]*pendingHide
}

type Options struct {
	API          API
	Elements     Elements
	AppConfig    *config.Config
	CustomConfig *Config
	Logger       logger.Logger
	// Scheduler defaults to time.AfterFunc.
	Scheduler     Scheduler
	Observability *observability.Observability
}

func New(opts Options) (*Controller, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid controller configuration: %w", err)
	}
	if opts.API == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if err := opts.Elements.validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = realScheduler{}
	}

	return &Controller{
		config:        cfg,
		api:           opts.API,
		elements:      opts.Elements,
		logger:        log.WithFields(map[string]interface{}{"component": "controller"}),
		scheduler:     scheduler,
		observability: opts.Observability,
		pending:       make(map[string]*pendingHide),
	}, nil
}

// Init performs the initial activity load.
func (c *Controller) Init(ctx context.Context) {
	c.RefreshActivities(ctx)
}

// RefreshActivities reloads the list and the dropdown. On failure the list
// shows a fallback text and the dropdown is left as it was.
func (c *Controller) RefreshActivities(ctx context.Context) {
	start := time.Now()
	reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	activities, err := c.api.ListActivities(reqCtx)
	if err != nil {
		c.logger.WithError(err).Error("Failed to load activities", map[string]interface{}{
			"errorCode": errors.Code(err),
		})
		c.elements.ActivitiesList.ShowFallback(MsgLoadFailed)
		c.record(ctx, OpRefresh, metrics.OutcomeFailed, start)
		return
	}

	c.elements.ActivitiesList.Clear()
	c.elements.ActivitySelect.Clear()
	for _, activity := range activities {
		c.elements.ActivitiesList.AppendCard(ui.CardFor(activity))
		c.elements.ActivitySelect.AppendOption(ui.Option{
			Value: activity.ID.String(),
			Label: activity.Name,
		})
	}
	metrics.ActivitiesRendered.Set(float64(len(activities)))

	c.logger.Debug("Activities rendered", map[string]interface{}{
		"count": len(activities),
	})
	c.record(ctx, OpRefresh, metrics.OutcomeOK, start)
}

// SubmitRegistration posts the registration form as typed.
func (c *Controller) SubmitRegistration(ctx context.Context) {
	start := time.Now()
	reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	form := c.elements.RegisterForm
	input := models.RegistrationRequest{
		Email:     form.Value(ui.FieldEmail),
		FirstName: form.Value(ui.FieldFirstName),
		LastName:  form.Value(ui.FieldLastName),
		Password:  form.Value(ui.FieldPassword),
	}

	err := c.api.Register(reqCtx, input)
	if err == nil {
		c.showStatus(ui.RegisterFormName, c.elements.RegisterMessage, MsgRegisterSuccess, models.StatusSuccess)
		form.Reset()
		c.record(ctx, OpRegister, metrics.OutcomeOK, start)
		return
	}

	if rejected, ok := errors.IsRejection(err); ok {
		c.showStatus(ui.RegisterFormName, c.elements.RegisterMessage, rejectionText(rejected), models.StatusError)
		c.record(ctx, OpRegister, metrics.OutcomeRejected, start)
		return
	}

	c.logger.WithError(err).Error("Error registering", map[string]interface{}{
		"errorCode": errors.Code(err),
	})
	c.showStatus(ui.RegisterFormName, c.elements.RegisterMessage, MsgRegisterFailed, models.StatusError)
	c.record(ctx, OpRegister, metrics.OutcomeFailed, start)
}

// SubmitSignup signs the email up for the selected activity. A successful
// signup refreshes the activity list before returning.
func (c *Controller) SubmitSignup(ctx context.Context) {
	start := time.Now()
	reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	form := c.elements.SignupForm
	input := models.SignupRequest{
		ActivityID: models.ActivityID(form.Value(ui.FieldActivity)),
		Email:      form.Value(ui.FieldEmail),
	}

	message, err := c.api.Signup(reqCtx, input)
	if err == nil {
		if message == "" {
			message = MsgSignupSuccess
		}
		c.showStatus(ui.SignupFormName, c.elements.SignupMessage, message, models.StatusSuccess)
		form.Reset()
		c.record(ctx, OpSignup, metrics.OutcomeOK, start)

		c.RefreshActivities(ctx)
		return
	}

	if rejected, ok := errors.IsRejection(err); ok {
		c.showStatus(ui.SignupFormName, c.elements.SignupMessage, rejectionText(rejected), models.StatusError)
		c.record(ctx, OpSignup, metrics.OutcomeRejected, start)
		return
	}

	c.logger.WithError(err).Error("Error signing up", map[string]interface{}{
		"errorCode":  errors.Code(err),
		"activityId": input.ActivityID.String(),
	})
	c.showStatus(ui.SignupFormName, c.elements.SignupMessage, MsgSignupFailed, models.StatusError)
	c.record(ctx, OpSignup, metrics.OutcomeFailed, start)
}

// HandleUnregister is intentionally unimplemented. It sends no request and
// changes no element.
func (c *Controller) HandleUnregister() {
	c.logger.Debug("Unregister is not implemented", map[string]interface{}{
		"operation": OpUnregister,
	})
}

func rejectionText(err *errors.StandardError) string {
	if err.Details == "" {
		return MsgRejected
	}
	return err.Details
}

func (c *Controller) record(ctx context.Context, operation, outcome string, start time.Time) {
	c.observability.RecordOperation(ctx, operation, outcome, time.Since(start))
}
