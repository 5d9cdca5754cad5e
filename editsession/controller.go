// Package editsession implements the create/edit form state machine used by
// the admin panels.
package editsession

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"cinema-booking-cli/catalog"
	"cinema-booking-cli/model"
	"cinema-booking-cli/service"
)

var (
	// ErrBusy is returned by Submit while a previous submission is in flight.
	ErrBusy = errors.New("a submission is already in progress")
	// ErrNothingToSubmit is returned by Submit when the controller is idle.
	ErrNothingToSubmit = errors.New("no create or edit in progress")
)

type Mode int

const (
	Idle Mode = iota
	Creating
	Editing
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

// State is the controller position; TargetID is set only while Editing.
type State struct {
	Mode     Mode
	TargetID int
}

// Privileges answers who is logged in. session.Store implements it.
type Privileges interface {
	CurrentUser() (model.UserProfile, bool)
}

// Backend validates and persists one kind of form.
type Backend[F any] interface {
	Validate(fields F, now time.Time) error
	Create(ctx context.Context, accountID int, fields F) error
	Update(ctx context.Context, accountID int, id int, fields F) error
}

// Controller tracks whether a form is idle, creating, or editing an entity.
// Admin privilege is checked on entry and again on submit.
type Controller[F any] struct {
	entity     string
	backend    Backend[F]
	privileges Privileges
	editable   bool
	logger     *slog.Logger

	// Now is used for date-dependent validation.
	Now func() time.Time

	mu     sync.Mutex
	state  State
	fields F
	busy   bool
}

func newController[F any](entity string, backend Backend[F], privileges Privileges, editable bool, logger *slog.Logger) *Controller[F] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller[F]{
		entity:     entity,
		backend:    backend,
		privileges: privileges,
		editable:   editable,
		logger:     logger.With("form", entity),
		Now:        time.Now,
	}
}

func (c *Controller[F]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller[F]) Fields() F {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields
}

func (c *Controller[F]) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// BeginCreate opens an empty form.
func (c *Controller[F]) BeginCreate() error {
	if _, err := c.requireAdmin("create a " + c.entity); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero F
	c.state = State{Mode: Creating}
	c.fields = zero
	return nil
}

// BeginEdit opens the form for entity id, pre-filled with fields.
func (c *Controller[F]) BeginEdit(id int, fields F) error {
	if !c.editable {
		return &service.ValidationError{Field: c.entity, Message: "editing is not supported"}
	}
	if _, err := c.requireAdmin("edit a " + c.entity); err != nil {
		return err
	}
	if id <= 0 {
		return &service.ValidationError{Field: c.entity, Message: "id must be positive"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{Mode: Editing, TargetID: id}
	c.fields = fields
	return nil
}

// Cancel returns to Idle and clears the form.
func (c *Controller[F]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero F
	c.state = State{}
	c.fields = zero
}

// Abort is Cancel on behalf of the system, e.g. after a logout.
func (c *Controller[F]) Abort() {
	if c.State().Mode != Idle {
		c.logger.Info("edit session aborted")
	}
	c.Cancel()
}

// Submit validates fields locally, then creates or updates. On success the
// controller returns to Idle; on any failure it keeps its state and fields.
func (c *Controller[F]) Submit(ctx context.Context, fields F) error {
	user, err := c.requireAdmin("save a " + c.entity)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	state := c.state
	if state.Mode == Idle {
		c.mu.Unlock()
		return ErrNothingToSubmit
	}
	c.fields = fields
	if err := c.backend.Validate(fields, c.Now()); err != nil {
		c.mu.Unlock()
		return err
	}
	c.busy = true
	c.mu.Unlock()

	if state.Mode == Editing {
		err = c.backend.Update(ctx, user.Id, state.TargetID, fields)
	} else {
		err = c.backend.Create(ctx, user.Id, fields)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil && !catalog.MutationApplied(err) {
		c.logger.Info("submit failed", "mode", state.Mode.String(), "error", err)
		return err
	}
	// Leave the form alone if it was cancelled or reopened meanwhile.
	if c.state == state {
		var zero F
		c.state = State{}
		c.fields = zero
	}
	c.logger.Info("submit succeeded", "mode", state.Mode.String(), "target_id", state.TargetID)
	return err
}

func (c *Controller[F]) requireAdmin(action string) (model.UserProfile, error) {
	if c.privileges == nil {
		return model.UserProfile{}, &service.AuthorizationError{Action: action}
	}
	user, ok := c.privileges.CurrentUser()
	if !ok || !user.IsAdmin {
		return model.UserProfile{}, &service.AuthorizationError{Action: action}
	}
	return user, nil
}
