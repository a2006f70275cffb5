package app

import (
	"log/slog"
	"os"

	"github.com/tasklet-app/tasklet/internal/auth"
	"github.com/tasklet-app/tasklet/internal/notifier"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.auth.enabled") {
		if err := auth.New(auth.Dependency{
			DBConn:     a.dbConn,
			Goroutine:  a.goroutine,
			Router:     a.router,
			Messaging:  a.messaging,
			Instrument: a.ins,
			Otp:        a.otp,
			UID:        a.uid,
			HMAC:       a.hmac,
			Clock:      a.clock,
			Validator:  a.validator,
			JWT:        a.jwt,
		}); err != nil {
			slog.Error("failed to init module auth", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notifier.enabled") {
		if err := notifier.New(notifier.Dependency{
			Ctx:        a.ctx,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			SMS:        a.sms,
		}); err != nil {
			slog.Error("failed to init module notifier", "error", err)
			os.Exit(1)
		}
	}
}
