package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"
)

var (
	// ErrBusy is returned when a send or verify is already in flight.
	ErrBusy = errors.New("flow: operation already in progress")

	// ErrResendNotReady is returned when resend is requested before the
	// cooldown countdown reaches zero.
	ErrResendNotReady = errors.New("flow: resend not ready")

	// ErrNoOutstandingCode is returned when a code is submitted and no send
	// has completed.
	ErrNoOutstandingCode = errors.New("flow: no outstanding code")

	// ErrAlreadyVerified is returned after the flow reached its terminal state.
	ErrAlreadyVerified = errors.New("flow: already verified")
)

type State int32

const (
	StateIdle State = iota
	StateSending
	StateSent
	StateVerifying
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateSending:
		return "Sending"
	case StateSent:
		return "Sent"
	case StateVerifying:
		return "Verifying"
	case StateVerified:
		return "Verified"
	default:
		return "Idle"
	}
}

type SendFunc func(ctx context.Context, identity, displayName string) error

type VerifyFunc func(ctx context.Context, identity, code string) error

// Controller drives a single identity's OTP flow on the client side:
// Idle -> Sending -> Sent -> Verifying -> Verified, with a resend-cooldown
// countdown while Sent. A failed verification returns the flow to Sent so the
// outstanding code keeps its remaining attempts and ttl; the real limits are
// enforced server-side.
type Controller struct {
	identity    string
	displayName string
	send        SendFunc
	verify      VerifyFunc
	cooldown    time.Duration

	mu          sync.Mutex
	state       State
	lastFailure error
	remaining   atomic.Int64
}

type Config struct {
	Identity    string
	DisplayName string
	Send        SendFunc
	Verify      VerifyFunc
	Cooldown    time.Duration
}

func NewController(cfg Config) *Controller {
	return &Controller{
		identity:    cfg.Identity,
		displayName: cfg.DisplayName,
		send:        cfg.Send,
		verify:      cfg.Verify,
		cooldown:    cfg.Cooldown,
		state:       StateIdle,
	}
}

// State reports the current flow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// LastFailure reports the most recent verification failure, if any.
func (c *Controller) LastFailure() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastFailure
}

// ResendRemaining reports the seconds left until resend is enabled. Safe to
// call from a ticker goroutine concurrently with state transitions.
func (c *Controller) ResendRemaining() int64 {
	return c.remaining.Load()
}

// Tick advances the resend countdown by one second. Wire it to a 1s ticker.
func (c *Controller) Tick() {
	for {
		cur := c.remaining.Load()
		if cur <= 0 {
			return
		}
		if c.remaining.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// RequestCode asks the issuance service for a (re)send. The first request is
// allowed from Idle; subsequent requests only once the countdown hits zero.
func (c *Controller) RequestCode(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateSending, StateVerifying:
		c.mu.Unlock()
		return ErrBusy
	case StateVerified:
		c.mu.Unlock()
		return ErrAlreadyVerified
	case StateSent:
		if c.remaining.Load() > 0 {
			c.mu.Unlock()
			return ErrResendNotReady
		}
	}
	c.state = StateSending
	c.mu.Unlock()

	err := c.send(ctx, c.identity, c.displayName)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateIdle
		c.lastFailure = err
		return err
	}

	c.state = StateSent
	c.lastFailure = nil
	c.remaining.Store(int64(c.cooldown.Seconds()))

	return nil
}

// SubmitCode runs the verification service against the outstanding code. On
// failure the flow returns to Sent so the user can retry or resend.
func (c *Controller) SubmitCode(ctx context.Context, code string) error {
	c.mu.Lock()
	switch c.state {
	case StateIdle:
		c.mu.Unlock()
		return ErrNoOutstandingCode
	case StateSending, StateVerifying:
		c.mu.Unlock()
		return ErrBusy
	case StateVerified:
		c.mu.Unlock()
		return ErrAlreadyVerified
	}
	c.state = StateVerifying
	c.mu.Unlock()

	err := c.verify(ctx, c.identity, code)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateSent
		c.lastFailure = err
		return err
	}

	c.state = StateVerified
	c.lastFailure = nil
	c.remaining.Store(0)

	return nil
}
