package usecase

import (
	"context"
	"time"

	"github.com/libascollective/shophub/internal/identity/entity"
	"github.com/libascollective/shophub/internal/pkg/clock"
	"github.com/libascollective/shophub/internal/pkg/config"
	"github.com/libascollective/shophub/internal/pkg/goroutine"
	"github.com/libascollective/shophub/internal/pkg/hash"
	"github.com/libascollective/shophub/internal/pkg/idempotency"
	"github.com/libascollective/shophub/internal/pkg/instrument"
	"github.com/libascollective/shophub/internal/pkg/jwt"
	"github.com/libascollective/shophub/internal/pkg/otp"
	"github.com/libascollective/shophub/internal/pkg/uid"
	"github.com/libascollective/shophub/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type UserVerifiedEvent struct {
	UserID   int64
	Email    string
	FullName string
}

type repoMessaging interface {
	PublishUserVerified(ctx context.Context, msg UserVerifiedEvent) error
}

type repoDB interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetUserLoginInfo(ctx context.Context, email string) (*entity.UserLoginInfo, error)

	NewRegistration(ctx context.Context, user entity.NewUser, passwordHash string) error
	ActivateUser(ctx context.Context, id int64, oldStatus, newStatus entity.UserStatus) error
}

type repoEmail interface {
	SendOTPCode(ctx context.Context, to, displayName, code string, ttl time.Duration) error
}

// otpStore is the live-code store. All mutating operations are atomic per
// identity.
type otpStore interface {
	Put(identity, code string)
	Get(identity string) (entity.OTPRecord, bool)
	Remove(identity string)
	RecordFailedAttempt(identity string) (int, bool)
	Snapshot() []entity.OTPRecord
	TTL() time.Duration
	MaxAttempts() int
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	repoEmail     repoEmail
	otpStore      otpStore
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	bcrypt        hash.Hash
	uid           uid.NumberID
	codeGen       otp.Generator
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	RepoEmail     repoEmail
	OTPStore      otpStore
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	Bcrypt        hash.Hash
	UID           uid.NumberID
	CodeGenerator otp.Generator
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		repoEmail:     dep.RepoEmail,
		otpStore:      dep.OTPStore,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		bcrypt:        dep.Bcrypt,
		uid:           dep.UID,
		codeGen:       dep.CodeGenerator,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}
