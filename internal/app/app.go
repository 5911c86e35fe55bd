package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/libascollective/shophub/internal/identity/outbound/otpstore"
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
	"github.com/redis/go-redis/v9"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	bcrypt    hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	codeGen   otp.Generator
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging
	otpStore  *otpstore.Memory

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initOTPStore()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
