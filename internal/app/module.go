package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/secureauth/internal/identity"
	"github.com/shandysiswandi/secureauth/internal/notification"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.identity.enabled") {
		if err := identity.New(identity.Dependency{
			DBConn:       a.dbConn,
			Router:       a.router,
			Messaging:    a.messaging,
			Mail:         a.mail,
			Config:       a.config,
			Instrument:   a.ins,
			UID:          a.uid,
			UUID:         a.uuid,
			Clock:        a.clock,
			Validator:    a.validator,
			Password:     a.password,
			Codec:        a.codec,
			TOTP:         a.totp,
			MFAEncryptor: a.mfaEncryptor,
			Session:      a.sessions,
		}); err != nil {
			slog.Error("failed to init module identity", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:         a.ctx,
			Messaging:   a.messaging,
			Mail:        a.mail,
			Idempotency: a.idemp,
			Config:      a.config,
			Instrument:  a.ins,
			UUID:        a.uuid,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
