package identity

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/libascollective/shophub/internal/identity/inbound"
	"github.com/libascollective/shophub/internal/identity/outbound/db"
	"github.com/libascollective/shophub/internal/identity/outbound/email"
	"github.com/libascollective/shophub/internal/identity/outbound/mq"
	"github.com/libascollective/shophub/internal/identity/outbound/otpstore"
	"github.com/libascollective/shophub/internal/identity/usecase"
	"github.com/libascollective/shophub/internal/pkg/clock"
	"github.com/libascollective/shophub/internal/pkg/config"
	"github.com/libascollective/shophub/internal/pkg/goroutine"
	"github.com/libascollective/shophub/internal/pkg/hash"
	"github.com/libascollective/shophub/internal/pkg/idempotency"
	"github.com/libascollective/shophub/internal/pkg/instrument"
	"github.com/libascollective/shophub/internal/pkg/jwt"
	"github.com/libascollective/shophub/internal/pkg/mail"
	"github.com/libascollective/shophub/internal/pkg/messaging"
	"github.com/libascollective/shophub/internal/pkg/otp"
	"github.com/libascollective/shophub/internal/pkg/router"
	"github.com/libascollective/shophub/internal/pkg/uid"
	"github.com/libascollective/shophub/internal/pkg/validator"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	OTPStore    *otpstore.Memory           `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Mail        mail.Mail                  `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	Bcrypt      hash.Hash                  `validate:"required"`
	CodeGen     otp.Generator              `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	JWT         jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoDB := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)
	repoEmail := email.New(dep.Mail, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        repoDB,
		RepoMessaging: repoMsg,
		RepoEmail:     repoEmail,
		OTPStore:      dep.OTPStore,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Bcrypt:        dep.Bcrypt,
		UID:           dep.UID,
		CodeGenerator: dep.CodeGen,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
