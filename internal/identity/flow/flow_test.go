package flow

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubServices struct {
	sends     int
	verifies  int
	sendErr   error
	verifyErr error
}

func (s *stubServices) send(context.Context, string, string) error {
	s.sends++
	return s.sendErr
}

func (s *stubServices) verify(context.Context, string, string) error {
	s.verifies++
	return s.verifyErr
}

func newTestController(svc *stubServices) *Controller {
	return NewController(Config{
		Identity:    "a@x.com",
		DisplayName: "Ana",
		Send:        svc.send,
		Verify:      svc.verify,
		Cooldown:    3 * time.Second,
	})
}

func TestHappyPath(t *testing.T) {
	// Arrange
	svc := &stubServices{}
	c := newTestController(svc)
	ctx := context.Background()

	if c.State() != StateIdle {
		t.Fatalf("expected idle, got %v", c.State())
	}

	// Act & Assert
	if err := c.RequestCode(ctx); err != nil {
		t.Fatalf("request: %v", err)
	}
	if c.State() != StateSent {
		t.Fatalf("expected sent, got %v", c.State())
	}
	if c.ResendRemaining() != 3 {
		t.Fatalf("expected countdown of 3s, got %d", c.ResendRemaining())
	}

	if err := c.SubmitCode(ctx, "123456"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if c.State() != StateVerified {
		t.Fatalf("expected verified, got %v", c.State())
	}
}

func TestSubmitWithoutCode(t *testing.T) {
	c := newTestController(&stubServices{})

	err := c.SubmitCode(context.Background(), "123456")

	if !errors.Is(err, ErrNoOutstandingCode) {
		t.Fatalf("expected no outstanding code, got %v", err)
	}
}

func TestResendGatedByCountdown(t *testing.T) {
	// Arrange
	svc := &stubServices{}
	c := newTestController(svc)
	ctx := context.Background()
	if err := c.RequestCode(ctx); err != nil {
		t.Fatalf("request: %v", err)
	}

	// Act & Assert: blocked until the countdown reaches zero.
	if err := c.RequestCode(ctx); !errors.Is(err, ErrResendNotReady) {
		t.Fatalf("expected resend not ready, got %v", err)
	}

	for range 3 {
		c.Tick()
	}
	c.Tick() // extra tick must not go negative
	if c.ResendRemaining() != 0 {
		t.Fatalf("expected countdown at zero, got %d", c.ResendRemaining())
	}

	if err := c.RequestCode(ctx); err != nil {
		t.Fatalf("resend after countdown: %v", err)
	}
	if svc.sends != 2 {
		t.Fatalf("expected 2 sends, got %d", svc.sends)
	}
	if c.ResendRemaining() != 3 {
		t.Fatalf("expected countdown restarted, got %d", c.ResendRemaining())
	}
}

func TestFailedVerifyReturnsToSent(t *testing.T) {
	// Arrange
	svc := &stubServices{verifyErr: errors.New("otp mismatch")}
	c := newTestController(svc)
	ctx := context.Background()
	if err := c.RequestCode(ctx); err != nil {
		t.Fatalf("request: %v", err)
	}

	// Act
	err := c.SubmitCode(ctx, "000000")

	// Assert: failure keeps the outstanding code, retry is allowed.
	if err == nil {
		t.Fatalf("expected verify failure")
	}
	if c.State() != StateSent {
		t.Fatalf("expected sent after failure, got %v", c.State())
	}
	if c.LastFailure() == nil {
		t.Fatalf("expected last failure recorded")
	}

	svc.verifyErr = nil
	if err := c.SubmitCode(ctx, "123456"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if c.State() != StateVerified {
		t.Fatalf("expected verified, got %v", c.State())
	}
}

func TestSendFailureReturnsToIdle(t *testing.T) {
	svc := &stubServices{sendErr: errors.New("email delivery failed")}
	c := newTestController(svc)

	err := c.RequestCode(context.Background())

	if err == nil {
		t.Fatalf("expected send failure")
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle after send failure, got %v", c.State())
	}
}

func TestVerifiedIsTerminal(t *testing.T) {
	// Arrange
	svc := &stubServices{}
	c := newTestController(svc)
	ctx := context.Background()
	if err := c.RequestCode(ctx); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := c.SubmitCode(ctx, "123456"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Act & Assert
	if err := c.RequestCode(ctx); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected already verified, got %v", err)
	}
	if err := c.SubmitCode(ctx, "123456"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected already verified, got %v", err)
	}
}
