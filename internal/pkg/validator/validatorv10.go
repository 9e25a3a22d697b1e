package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/shandysiswandi/secureauth/internal/pkg/strcase"
)

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

var ErrTranslatorNotFound = errors.New("translator not found")

// Validator is what usecases depend on.
type Validator interface {
	Validate(data any) error
}

type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError maps snake_case field names to messages.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(map[string]string(vs))
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator builds a validator with English messages and the custom
// tags password, otp_code and otp_method.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	trans, ok := ut.New(enLang, enLang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	if err := registerCustom(validate, trans); err != nil {
		return nil, err
	}

	return &V10Validator{validate: validate, translator: trans}, nil
}

func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(V10ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
	}

	return out
}

type customRule struct {
	tag     string
	message string
	fn      validator.Func
}

func registerCustom(validate *validator.Validate, trans ut.Translator) error {
	rules := []customRule{
		{
			tag:     "password",
			message: "{0} must be 1-72 bytes",
			fn: func(fl validator.FieldLevel) bool {
				n := len(fl.Field().String())
				return n > 0 && n <= maxPasswordBytes
			},
		},
		{
			tag:     "otp_code",
			message: "{0} must be a numeric code",
			fn: func(fl validator.FieldLevel) bool {
				s := fl.Field().String()
				if len(s) < 6 || len(s) > 8 {
					return false
				}
				return strings.Trim(s, "0123456789") == ""
			},
		},
		{
			tag:     "otp_method",
			message: "{0} must be one of AUTHENTICATOR or EMAIL",
			fn: func(fl validator.FieldLevel) bool {
				switch fl.Field().String() {
				case "AUTHENTICATOR", "EMAIL":
					return true
				}
				return false
			},
		},
	}

	for _, rule := range rules {
		if err := validate.RegisterValidation(rule.tag, rule.fn); err != nil {
			return err
		}

		message := rule.message
		err := validate.RegisterTranslation(rule.tag, trans,
			func(t ut.Translator) error {
				return t.Add(rule.tag, message, false)
			},
			func(t ut.Translator, fe validator.FieldError) string {
				msg, err := t.T(fe.Tag(), fe.Field())
				if err != nil {
					slog.Warn("failed to translate validation error", "tag", fe.Tag(), "error", err)
					return fe.Error()
				}
				return msg
			},
		)
		if err != nil {
			return err
		}
	}

	return nil
}
