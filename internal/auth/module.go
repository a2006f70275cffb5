package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tasklet-app/tasklet/internal/auth/inbound"
	"github.com/tasklet-app/tasklet/internal/auth/outbound/db"
	"github.com/tasklet-app/tasklet/internal/auth/outbound/mq"
	"github.com/tasklet-app/tasklet/internal/auth/usecase"
	"github.com/tasklet-app/tasklet/internal/pkg/clock"
	"github.com/tasklet-app/tasklet/internal/pkg/goroutine"
	"github.com/tasklet-app/tasklet/internal/pkg/hash"
	"github.com/tasklet-app/tasklet/internal/pkg/instrument"
	"github.com/tasklet-app/tasklet/internal/pkg/jwt"
	"github.com/tasklet-app/tasklet/internal/pkg/messaging"
	"github.com/tasklet-app/tasklet/internal/pkg/otp"
	"github.com/tasklet-app/tasklet/internal/pkg/router"
	"github.com/tasklet-app/tasklet/internal/pkg/uid"
	"github.com/tasklet-app/tasklet/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Otp        *otp.Manager               `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbAuth,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Otp:           dep.Otp,
		HMAC:          dep.HMAC,
		UID:           dep.UID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
