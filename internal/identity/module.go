package identity

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shandysiswandi/secureauth/internal/identity/inbound"
	"github.com/shandysiswandi/secureauth/internal/identity/outbound/db"
	"github.com/shandysiswandi/secureauth/internal/identity/outbound/mq"
	"github.com/shandysiswandi/secureauth/internal/identity/outbound/notifier"
	"github.com/shandysiswandi/secureauth/internal/identity/usecase"
	"github.com/shandysiswandi/secureauth/internal/pkg/clock"
	"github.com/shandysiswandi/secureauth/internal/pkg/config"
	"github.com/shandysiswandi/secureauth/internal/pkg/hash"
	"github.com/shandysiswandi/secureauth/internal/pkg/instrument"
	"github.com/shandysiswandi/secureauth/internal/pkg/mail"
	"github.com/shandysiswandi/secureauth/internal/pkg/messaging"
	"github.com/shandysiswandi/secureauth/internal/pkg/mfa"
	"github.com/shandysiswandi/secureauth/internal/pkg/otp"
	"github.com/shandysiswandi/secureauth/internal/pkg/router"
	"github.com/shandysiswandi/secureauth/internal/pkg/session"
	"github.com/shandysiswandi/secureauth/internal/pkg/uid"
	"github.com/shandysiswandi/secureauth/internal/pkg/validator"
)

type Dependency struct {
	DBConn       *pgxpool.Pool              `validate:"required"`
	Router       *router.Router             `validate:"required"`
	Messaging    messaging.Publisher        `validate:"required"`
	Mail         mail.Mail                  `validate:"required"`
	Config       config.Config              `validate:"required"`
	Instrument   instrument.Instrumentation `validate:"required"`
	UID          uid.NumberID               `validate:"required"`
	UUID         uid.StringID               `validate:"required"`
	Clock        clock.Clocker              `validate:"required"`
	Validator    validator.Validator        `validate:"required"`
	Password     hash.Hash                  `validate:"required"`
	Codec        *otp.Codec                 `validate:"required"`
	TOTP         *otp.TOTP                  `validate:"required"`
	MFAEncryptor mfa.Encryptor              `validate:"required"`
	Session      *session.Manager           `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoDB := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        repoDB,
		RepoMessaging: repoMsg,
		Notifier:      notifier.New(dep.Mail, dep.Instrument),
		Validator:     dep.Validator,
		Password:      dep.Password,
		Codec:         dep.Codec,
		TOTP:          dep.TOTP,
		MFAEncryptor:  dep.MFAEncryptor,
		Session:       dep.Session,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Options: usecase.Options{
			DemoDisclosure: dep.Config.GetBool("modules.identity.demo_disclosure"),
			QRSize:         dep.Config.GetInt("modules.identity.qr_size"),
		},
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

// PublicRoutes is the set of identity routes served without a bearer token.
func PublicRoutes() map[string][]string {
	return inbound.PublicRoutes()
}
