package inbound

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/libascollective/shophub/internal/identity/entity"
	"github.com/libascollective/shophub/internal/identity/usecase"
	"github.com/libascollective/shophub/internal/pkg/goerror"
	"github.com/libascollective/shophub/internal/pkg/router"
)

type stubUC struct {
	sendErr   error
	verifyErr error
}

func (s *stubUC) OtpSend(context.Context, usecase.OtpSendInput) error     { return s.sendErr }
func (s *stubUC) OtpVerify(context.Context, usecase.OtpVerifyInput) error { return s.verifyErr }
func (s *stubUC) OtpDebug(context.Context) (*usecase.OtpDebugOutput, error) {
	return &usecase.OtpDebugOutput{}, nil
}
func (s *stubUC) Register(context.Context, usecase.RegisterInput) error             { return nil }
func (s *stubUC) RegisterResend(context.Context, usecase.RegisterResendInput) error { return nil }
func (s *stubUC) Login(context.Context, usecase.LoginInput) (*usecase.LoginOutput, error) {
	return &usecase.LoginOutput{}, nil
}
func (s *stubUC) Profile(context.Context) (*usecase.ProfileOutput, error) {
	return &usecase.ProfileOutput{}, nil
}

func postRequest(body string) *router.Request {
	req := httptest.NewRequest(http.MethodPost, "/otp/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return &router.Request{Request: req}
}

func TestOtpVerifyWireShape(t *testing.T) {
	cases := []struct {
		name      string
		verifyErr error
		wantCode  int
		wantError string
	}{
		{"not found", entity.ErrOTPNotFound, http.StatusOK, "OTP not found or expired"},
		{"expired", entity.ErrOTPExpired, http.StatusOK, "OTP has expired. Please request a new one."},
		{"locked out", entity.ErrOTPTooManyAttempts, http.StatusOK, "Too many failed attempts. Please request a new OTP."},
		{"mismatch", entity.ErrOTPMismatch, http.StatusOK, "Invalid OTP. Please try again."},
		{"invalid input", goerror.NewInvalidInput(nil), http.StatusBadRequest, "Email and OTP code are required"},
		{"internal", goerror.NewServer(nil), http.StatusOK, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			end := &HTTPEndpoint{uc: &stubUC{verifyErr: tc.verifyErr}}

			// Act
			resp, err := end.OtpVerify(postRequest(`{"identity":"a@x.com","code":"123456"}`))

			// Assert
			if err != nil {
				t.Fatalf("otp endpoints must map every outcome onto the raw shape, got %v", err)
			}
			raw, ok := resp.(router.Raw)
			if !ok {
				t.Fatalf("expected raw response, got %T", resp)
			}
			if raw.StatusCode() != tc.wantCode {
				t.Fatalf("expected status %d, got %d", tc.wantCode, raw.StatusCode())
			}
			body, ok := raw.Body.(OtpResponse)
			if !ok {
				t.Fatalf("expected otp response body, got %T", raw.Body)
			}
			if body.Success {
				t.Fatalf("expected success=false")
			}
			if body.Error != tc.wantError {
				t.Fatalf("expected error %q, got %q", tc.wantError, body.Error)
			}
		})
	}
}

func TestOtpVerifySuccessWireShape(t *testing.T) {
	// Arrange
	end := &HTTPEndpoint{uc: &stubUC{}}

	// Act
	resp, err := end.OtpVerify(postRequest(`{"identity":"a@x.com","code":"123456"}`))

	// Assert
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	raw := resp.(router.Raw)
	if raw.StatusCode() != http.StatusOK {
		t.Fatalf("expected 200, got %d", raw.StatusCode())
	}
	body := raw.Body.(OtpResponse)
	if !body.Success || body.Message != "OTP verified successfully" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestOtpSendMalformedBody(t *testing.T) {
	// Arrange
	end := &HTTPEndpoint{uc: &stubUC{}}

	// Act
	resp, err := end.OtpSend(postRequest(`{not json`))

	// Assert
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	raw := resp.(router.Raw)
	if raw.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", raw.StatusCode())
	}
	body := raw.Body.(OtpResponse)
	if body.Success || body.Error != "A valid email address is required" {
		t.Fatalf("unexpected body %+v", body)
	}
}
