package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/swasthya/healthlog-platform/internal/notify"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// Control states. Nothing between Idle and Submitting is externally
// observable.
const (
	StateIdle       = "idle"
	StateSubmitting = "submitting"
)

// ErrActionInFlight rejects a second submission while one is running.
var ErrActionInFlight = fmt.Errorf("action already in flight")

// Control is one mutating trigger's state machine:
// Idle -> Submitting -> Idle. Whatever the action's outcome, the control
// always lands back in Idle; a stale submitting flag is a bug.
type Control struct {
	mu    sync.Mutex
	state string
}

// NewControl creates an idle control.
func NewControl() *Control {
	return &Control{state: StateIdle}
}

// State returns the current state.
func (c *Control) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Control) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return false
	}
	c.state = StateSubmitting
	return true
}

func (c *Control) finish() {
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
}

// Action is one mutating operation run by the runner.
type Action struct {
	// Name labels logs and the failure notification.
	Name string
	// Submit performs the request.
	Submit func(ctx context.Context) error
	// Refresh re-runs the pipeline for the affected view after success.
	Refresh func(ctx context.Context) error
	// Rollback restores the pre-action form state after failure. Optional.
	Rollback func()
	// SuccessMessage is the notification on success.
	SuccessMessage string
}

// ActionRunner executes mutating actions with the mandatory sequence:
// disable control, submit, on success refresh the affected view, re-enable,
// notify. On failure the rollback restores prior state and the error is
// surfaced as a notification.
type ActionRunner struct {
	notifier notify.Notifier
	logger   *logging.Logger
}

// NewActionRunner creates a runner. notifier may be nil.
func NewActionRunner(notifier notify.Notifier, logger *logging.Logger) *ActionRunner {
	if logger == nil {
		logger = logging.Default()
	}
	return &ActionRunner{notifier: notifier, logger: logger}
}

// Run drives one action through the control's state machine.
func (r *ActionRunner) Run(ctx context.Context, userID string, control *Control, action Action) error {
	if !control.begin() {
		return ErrActionInFlight
	}
	defer control.finish()

	if err := action.Submit(ctx); err != nil {
		if action.Rollback != nil {
			action.Rollback()
		}
		r.logger.Warn("action failed", "action", action.Name, "error", err, "user_id", userID)
		r.notify(ctx, userID, action.Name+" failed", notify.SeverityError)
		return err
	}

	if action.Refresh != nil {
		if err := action.Refresh(ctx); err != nil {
			// The mutation landed; a failed refresh only degrades the view.
			r.logger.Warn("post-action refresh failed", "action", action.Name, "error", err, "user_id", userID)
		}
	}

	msg := action.SuccessMessage
	if msg == "" {
		msg = action.Name + " succeeded"
	}
	r.notify(ctx, userID, msg, notify.SeveritySuccess)
	return nil
}

func (r *ActionRunner) notify(ctx context.Context, userID, message, severity string) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(ctx, userID, message, severity); err != nil {
		r.logger.Warn("notification delivery failed", "error", err, "user_id", userID)
	}
}
