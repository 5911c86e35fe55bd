package inbound

import (
	"context"

	"github.com/libascollective/shophub/internal/identity/usecase"
	"github.com/libascollective/shophub/internal/pkg/router"
)

type uc interface {
	OtpSend(ctx context.Context, in usecase.OtpSendInput) error
	OtpVerify(ctx context.Context, in usecase.OtpVerifyInput) error
	OtpDebug(ctx context.Context) (*usecase.OtpDebugOutput, error)

	Register(ctx context.Context, in usecase.RegisterInput) error
	RegisterResend(ctx context.Context, in usecase.RegisterResendInput) error

	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Storefront OTP surface; raw response shape, consumed by the web client.
	r.POST("/otp/send", end.OtpSend)
	r.POST("/otp/verify", end.OtpVerify)
	r.GET("/otp/debug", end.OtpDebug)

	// Registration & Auth
	r.POST("/api/v1/identity/register", end.Register)
	r.POST("/api/v1/identity/register/resend", end.RegisterResend)
	r.POST("/api/v1/identity/login", end.Login)

	// User Profile (need authenticated)
	r.GET("/api/v1/identity/profile", end.Profile)
}
