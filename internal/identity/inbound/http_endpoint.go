package inbound

import (
	"errors"
	"net/http"

	"github.com/libascollective/shophub/internal/identity/entity"
	"github.com/libascollective/shophub/internal/identity/usecase"
	"github.com/libascollective/shophub/internal/pkg/goerror"
	"github.com/libascollective/shophub/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the OTP flow and account workflows.
type HTTPEndpoint struct {
	uc uc
}

func otpOK(message string) router.Raw {
	return router.Raw{Code: http.StatusOK, Body: OtpResponse{Success: true, Message: message}}
}

func otpFail(code int, errMsg string) router.Raw {
	return router.Raw{Code: code, Body: OtpResponse{Success: false, Error: errMsg}}
}

// otpError maps an OTP outcome onto the storefront wire shape. Malformed
// input is a 400; every other outcome is a 200 with success=false and its own
// error string. Unexpected failures get a generic message, details stay in
// the logs.
func otpError(err error, invalidMsg string) router.Raw {
	switch {
	case errors.Is(err, entity.ErrOTPNotFound):
		return otpFail(http.StatusOK, "OTP not found or expired")
	case errors.Is(err, entity.ErrOTPExpired):
		return otpFail(http.StatusOK, "OTP has expired. Please request a new one.")
	case errors.Is(err, entity.ErrOTPTooManyAttempts):
		return otpFail(http.StatusOK, "Too many failed attempts. Please request a new OTP.")
	case errors.Is(err, entity.ErrOTPMismatch):
		return otpFail(http.StatusOK, "Invalid OTP. Please try again.")
	case errors.Is(err, entity.ErrEmailDelivery):
		return otpFail(http.StatusOK, "Failed to send OTP email")
	}

	var gerr *goerror.Error
	if errors.As(err, &gerr) && gerr.Type() == goerror.TypeValidation {
		return otpFail(http.StatusBadRequest, invalidMsg)
	}

	return otpFail(http.StatusOK, "Internal server error")
}

// OtpSend issues a verification code and emails it to the identity.
func (h *HTTPEndpoint) OtpSend(r *router.Request) (any, error) {
	var req OtpSendRequest
	if err := r.DecodeBody(&req); err != nil {
		return otpFail(http.StatusBadRequest, "A valid email address is required"), nil
	}

	if err := h.uc.OtpSend(r.Context(), usecase.OtpSendInput{
		Identity:    req.Identity,
		DisplayName: req.DisplayName,
	}); err != nil {
		return otpError(err, "A valid email address is required"), nil
	}

	return otpOK("OTP sent successfully"), nil
}

// OtpVerify checks a submitted code against the outstanding record.
func (h *HTTPEndpoint) OtpVerify(r *router.Request) (any, error) {
	var req OtpVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return otpFail(http.StatusBadRequest, "Email and OTP code are required"), nil
	}

	if err := h.uc.OtpVerify(r.Context(), usecase.OtpVerifyInput{
		Identity: req.Identity,
		Code:     req.Code,
	}); err != nil {
		return otpError(err, "Email and OTP code are required"), nil
	}

	return otpOK("OTP verified successfully"), nil
}

// OtpDebug lists outstanding codes without revealing them.
func (h *HTTPEndpoint) OtpDebug(r *router.Request) (any, error) {
	out, err := h.uc.OtpDebug(r.Context())
	if err != nil {
		return nil, err
	}

	entries := make([]OtpDebugEntry, 0, len(out.Entries))
	for _, e := range out.Entries {
		entries = append(entries, OtpDebugEntry{
			Identity:     e.Identity,
			IssuedAt:     e.IssuedAt,
			Attempts:     e.Attempts,
			AttemptsLeft: e.AttemptsLeft,
		})
	}

	return router.Raw{Code: http.StatusOK, Body: OtpDebugResponse{
		Success: true,
		Count:   out.Count,
		Otps:    entries,
	}}, nil
}

// Register creates an unverified account and sends a verification code.
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	}); err != nil {
		return nil, err
	}

	return RegisterResponse{}, nil
}

// RegisterResend re-sends the verification code for a pending registration.
func (h *HTTPEndpoint) RegisterResend(r *router.Request) (any, error) {
	var req RegisterResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RegisterResend(r.Context(), usecase.RegisterResendInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return RegisterResendResponse{}, nil
}

// Login authenticates a verified account.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{AccessToken: resp.AccessToken}, nil
}

// Profile returns the authenticated user's account.
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		ID:       resp.ID,
		Email:    resp.Email,
		FullName: resp.FullName,
		Status:   resp.Status,
	}, nil
}
