package inbound

import (
	"github.com/shandysiswandi/secureauth/internal/identity/entity"
	"github.com/shandysiswandi/secureauth/internal/identity/usecase"
	"github.com/shandysiswandi/secureauth/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// Register godoc
//
//	@Summary		Register a new account
//	@Description	Creates an UNVERIFIED account and sends an email verification OTP.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Register payload"
//	@Success		201		{object}	router.successResponse{data=RegisterResponse}
//	@Failure		400		{object}	router.errorResponse
//	@Failure		409		{object}	router.errorResponse
//	@Failure		422		{object}	router.errorResponse
//	@Failure		503		{object}	router.errorResponse
//	@Router			/api/v1/auth/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		OTPMethod: req.OTPMethod,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{
		AccountID:        resp.AccountID,
		Email:            resp.Email,
		Status:           resp.Status,
		OTPMethod:        resp.OTPMethod,
		DeliveryResponse: newDeliveryResponse(resp.Delivery),
	}, nil
}

// RegisterResend godoc
//
//	@Summary		Resend the email verification OTP
//	@Description	Always answers 200 so the response does not reveal whether the email is registered.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterResendRequest	true	"Resend payload"
//	@Success		200		{object}	router.successResponse{data=RegisterResendResponse}
//	@Failure		400		{object}	router.errorResponse
//	@Failure		422		{object}	router.errorResponse
//	@Failure		503		{object}	router.errorResponse
//	@Router			/api/v1/auth/register/resend [post]
func (h *HTTPEndpoint) RegisterResend(r *router.Request) (any, error) {
	var req RegisterResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RegisterResend(r.Context(), usecase.RegisterResendInput{Email: req.Email})
	if err != nil {
		return nil, err
	}

	return RegisterResendResponse{DeliveryResponse: newDeliveryResponse(*resp)}, nil
}

// VerifyEmail godoc
//
//	@Summary		Verify email with OTP
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		VerifyEmailRequest	true	"Verify email payload"
//	@Success		200		{object}	router.successResponse{data=VerifyEmailResponse}
//	@Failure		400		{object}	router.errorResponse
//	@Failure		401		{object}	router.errorResponse
//	@Failure		404		{object}	router.errorResponse
//	@Failure		409		{object}	router.errorResponse
//	@Failure		410		{object}	router.errorResponse
//	@Failure		422		{object}	router.errorResponse
//	@Router			/api/v1/auth/verify-email [post]
func (h *HTTPEndpoint) VerifyEmail(r *router.Request) (any, error) {
	var req VerifyEmailRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyEmail(r.Context(), usecase.VerifyEmailInput{Email: req.Email, OTP: req.OTP})
	if err != nil {
		return nil, err
	}

	return VerifyEmailResponse{
		Status:          resp.Status,
		Next:            resp.NextStep,
		alreadyVerified: resp.AlreadyVerified,
	}, nil
}

// AuthenticatorSetup godoc
//
//	@Summary		Enroll an authenticator app
//	@Description	Checks the password, then generates a TOTP secret and returns it with its otpauth URI and a QR code data URL.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AuthenticatorSetupRequest	true	"Setup payload"
//	@Success		200		{object}	router.successResponse{data=AuthenticatorSetupResponse}
//	@Failure		401		{object}	router.errorResponse
//	@Failure		409		{object}	router.errorResponse
//	@Failure		412		{object}	router.errorResponse
//	@Router			/api/v1/auth/authenticator/setup [post]
func (h *HTTPEndpoint) AuthenticatorSetup(r *router.Request) (any, error) {
	var req AuthenticatorSetupRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.AuthenticatorSetup(r.Context(), usecase.AuthenticatorSetupInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return AuthenticatorSetupResponse{Secret: resp.Secret, URI: resp.URI, QRCode: resp.QRCode}, nil
}

// AuthenticatorVerify godoc
//
//	@Summary		Confirm authenticator enrollment
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AuthenticatorVerifyRequest	true	"Authenticator code"
//	@Success		200		{object}	router.successResponse{data=AuthenticatorVerifyResponse}
//	@Failure		401		{object}	router.errorResponse
//	@Failure		412		{object}	router.errorResponse
//	@Router			/api/v1/auth/authenticator/verify [post]
func (h *HTTPEndpoint) AuthenticatorVerify(r *router.Request) (any, error) {
	var req AuthenticatorVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.AuthenticatorConfirm(r.Context(), usecase.AuthenticatorConfirmInput{
		Email:    req.Email,
		Password: req.Password,
		Code:     req.Code,
	})
	if err != nil {
		return nil, err
	}

	return AuthenticatorVerifyResponse{Status: resp.Status, Next: resp.NextStep}, nil
}

// Login godoc
//
//	@Summary		Start a login
//	@Description	Checks the password and opens the second-factor challenge for the account's OTP method.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	router.successResponse{data=LoginResponse}
//	@Failure		401		{object}	router.errorResponse
//	@Failure		403		{object}	router.errorResponse
//	@Failure		503		{object}	router.errorResponse
//	@Router			/api/v1/auth/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return nil, err
	}

	out := LoginResponse{Method: resp.Method, ExpiresAt: resp.ExpiresAt}
	if resp.Method == entity.OTPMethodEmail.String() {
		d := newDeliveryResponse(resp.Delivery)
		out.DeliveryResponse = &d
	}

	return out, nil
}

// LoginAuthenticator godoc
//
//	@Summary		Complete a login with an authenticator code
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginAuthenticatorRequest	true	"Authenticator code"
//	@Success		200		{object}	router.successResponse{data=TokenResponse}
//	@Failure		401		{object}	router.errorResponse
//	@Failure		409		{object}	router.errorResponse
//	@Failure		410		{object}	router.errorResponse
//	@Failure		412		{object}	router.errorResponse
//	@Router			/api/v1/auth/login/verify-authenticator [post]
func (h *HTTPEndpoint) LoginAuthenticator(r *router.Request) (any, error) {
	var req LoginAuthenticatorRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.LoginAuthenticator(r.Context(), usecase.LoginAuthenticatorInput{Email: req.Email, Code: req.Code})
	if err != nil {
		return nil, err
	}

	return newTokenResponse(resp), nil
}

// LoginEmail godoc
//
//	@Summary		Complete a login with an emailed OTP
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginEmailRequest	true	"Login OTP"
//	@Success		200		{object}	router.successResponse{data=TokenResponse}
//	@Failure		401		{object}	router.errorResponse
//	@Failure		403		{object}	router.errorResponse
//	@Failure		409		{object}	router.errorResponse
//	@Failure		410		{object}	router.errorResponse
//	@Router			/api/v1/auth/login/verify-email [post]
func (h *HTTPEndpoint) LoginEmail(r *router.Request) (any, error) {
	var req LoginEmailRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.LoginEmail(r.Context(), usecase.LoginEmailInput{Email: req.Email, OTP: req.OTP})
	if err != nil {
		return nil, err
	}

	return newTokenResponse(resp), nil
}

func newTokenResponse(t *usecase.TokenOutput) TokenResponse {
	return TokenResponse{Token: t.AccessToken, TokenType: t.TokenType, ExpiresAt: t.ExpiresAt}
}

// Logout godoc
//
//	@Summary		Revoke the current session token
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	router.successResponse{data=LogoutResponse}
//	@Failure		401	{object}	router.errorResponse
//	@Router			/api/v1/auth/logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	if err := h.uc.Logout(r.Context(), usecase.LogoutInput{Token: r.BearerToken()}); err != nil {
		return nil, err
	}

	return LogoutResponse{}, nil
}

// Profile godoc
//
//	@Summary		Current account
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	router.successResponse{data=ProfileResponse}
//	@Failure		401	{object}	router.errorResponse
//	@Router			/api/v1/auth/me [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		ID:            resp.ID,
		Email:         resp.Email,
		Status:        resp.Status,
		OTPMethod:     resp.OTPMethod,
		EmailVerified: resp.EmailVerified,
	}, nil
}
