package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/tasklet-app/tasklet/internal/pkg/cache"
	"github.com/tasklet-app/tasklet/internal/pkg/clock"
	"github.com/tasklet-app/tasklet/internal/pkg/config"
	"github.com/tasklet-app/tasklet/internal/pkg/crypt"
	"github.com/tasklet-app/tasklet/internal/pkg/goroutine"
	"github.com/tasklet-app/tasklet/internal/pkg/hash"
	"github.com/tasklet-app/tasklet/internal/pkg/instrument"
	"github.com/tasklet-app/tasklet/internal/pkg/jwt"
	"github.com/tasklet-app/tasklet/internal/pkg/messaging"
	"github.com/tasklet-app/tasklet/internal/pkg/otp"
	"github.com/tasklet-app/tasklet/internal/pkg/router"
	"github.com/tasklet-app/tasklet/internal/pkg/sms"
	"github.com/tasklet-app/tasklet/internal/pkg/uid"
	"github.com/tasklet-app/tasklet/internal/pkg/validator"
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
	hmac      hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	jwt       jwt.JWT
	encryptor crypt.Encryptor
	otp       *otp.Manager

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	cache     cache.Cache
	sms       sms.SMS
	messaging messaging.Messaging

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
	app.initOtp()
	app.initSms()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
