package inbound

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/secureauth/internal/identity/usecase"
	"github.com/shandysiswandi/secureauth/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	RegisterResend(ctx context.Context, in usecase.RegisterResendInput) (*usecase.Delivery, error)
	VerifyEmail(ctx context.Context, in usecase.VerifyEmailInput) (*usecase.VerifyEmailOutput, error)

	AuthenticatorSetup(ctx context.Context, in usecase.AuthenticatorSetupInput) (*usecase.AuthenticatorSetupOutput, error)
	AuthenticatorConfirm(ctx context.Context, in usecase.AuthenticatorConfirmInput) (*usecase.AuthenticatorConfirmOutput, error)

	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	LoginAuthenticator(ctx context.Context, in usecase.LoginAuthenticatorInput) (*usecase.TokenOutput, error)
	LoginEmail(ctx context.Context, in usecase.LoginEmailInput) (*usecase.TokenOutput, error)

	Logout(ctx context.Context, in usecase.LogoutInput) error
	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
}

const (
	pathRegister           = "/api/v1/auth/register"
	pathRegisterResend     = "/api/v1/auth/register/resend"
	pathVerifyEmail        = "/api/v1/auth/verify-email"
	pathAuthenticatorSetup = "/api/v1/auth/authenticator/setup"
	pathAuthenticatorCheck = "/api/v1/auth/authenticator/verify"
	pathLogin              = "/api/v1/auth/login"
	pathLoginAuthenticator = "/api/v1/auth/login/verify-authenticator"
	pathLoginEmail         = "/api/v1/auth/login/verify-email"
	pathLogout             = "/api/v1/auth/logout"
	pathProfile            = "/api/v1/auth/me"
)

// PublicRoutes lists the identity routes reachable without a bearer token,
// in the shape router.Config.Public expects.
func PublicRoutes() map[string][]string {
	return map[string][]string{
		http.MethodPost: {
			pathRegister,
			pathRegisterResend,
			pathVerifyEmail,
			pathAuthenticatorSetup,
			pathAuthenticatorCheck,
			pathLogin,
			pathLoginAuthenticator,
			pathLoginEmail,
		},
	}
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST(pathRegister, end.Register)
	r.POST(pathRegisterResend, end.RegisterResend)
	r.POST(pathVerifyEmail, end.VerifyEmail)

	r.POST(pathAuthenticatorSetup, end.AuthenticatorSetup)
	r.POST(pathAuthenticatorCheck, end.AuthenticatorVerify)

	r.POST(pathLogin, end.Login)
	r.POST(pathLoginAuthenticator, end.LoginAuthenticator)
	r.POST(pathLoginEmail, end.LoginEmail)

	r.POST(pathLogout, end.Logout)
	r.GET(pathProfile, end.Profile)
}
