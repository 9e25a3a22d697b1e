package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/secureauth/internal/identity/usecase"
)

// DeliveryResponse tells the client where its one-time code went. DemoOTP
// only appears when the server runs with demo disclosure and mail failed.
type DeliveryResponse struct {
	Delivered bool   `json:"delivered"`
	Queued    bool   `json:"queued"`
	DemoOTP   string `json:"demo_otp,omitempty"`
}

func newDeliveryResponse(d usecase.Delivery) DeliveryResponse {
	return DeliveryResponse{Delivered: d.Delivered, Queued: d.Queued, DemoOTP: d.DemoOTP}
}

func (d DeliveryResponse) message(sent string) string {
	switch {
	case d.DemoOTP != "":
		return "SMTP not configured, showing demo OTP"
	case d.Queued:
		return "Email delivery delayed, the OTP will arrive shortly"
	default:
		return sent
	}
}

type RegisterRequest struct {
	Email     string `json:"email" example:"a@x.com"`
	Password  string `json:"password" example:"pw123"`
	OTPMethod string `json:"otp_method" example:"EMAIL" enums:"AUTHENTICATOR,EMAIL"`
}

type RegisterResponse struct {
	AccountID int64  `json:"account_id,string"`
	Email     string `json:"email"`
	Status    string `json:"status" example:"UNVERIFIED"`
	OTPMethod string `json:"otp_method" example:"EMAIL"`
	DeliveryResponse
}

func (r RegisterResponse) Message() string {
	return r.message("OTP sent to email")
}

func (RegisterResponse) StatusCode() int {
	return http.StatusCreated
}

type RegisterResendRequest struct {
	Email string `json:"email"`
}

type RegisterResendResponse struct {
	DeliveryResponse
}

func (r RegisterResendResponse) Message() string {
	return r.message("If the account exists and is not verified, a new OTP has been sent.")
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp" example:"123456"`
}

type VerifyEmailResponse struct {
	Status string `json:"status" example:"ACTIVE"`
	Next   string `json:"next" example:"LOGIN" enums:"LOGIN,SETUP_AUTHENTICATOR"`

	alreadyVerified bool
}

func (r VerifyEmailResponse) Message() string {
	switch {
	case r.alreadyVerified:
		return "Email already verified"
	case r.Next == usecase.NextStepLogin:
		return "Email verified. Account ACTIVE (Email OTP method)."
	default:
		return "Email verified. Proceed to authenticator setup."
	}
}

type AuthenticatorSetupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthenticatorSetupResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`
}

func (AuthenticatorSetupResponse) Message() string {
	return "Scan QR in Google Authenticator"
}

type AuthenticatorVerifyRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code" example:"123456"`
}

type AuthenticatorVerifyResponse struct {
	Status string `json:"status" example:"ACTIVE"`
	Next   string `json:"next" example:"LOGIN"`
}

func (AuthenticatorVerifyResponse) Message() string {
	return "Authenticator verified. Account ACTIVE."
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Method    string    `json:"method" example:"EMAIL" enums:"AUTHENTICATOR,EMAIL"`
	ExpiresAt time.Time `json:"expires_at"`
	*DeliveryResponse
}

func (r LoginResponse) Message() string {
	if r.DeliveryResponse == nil {
		return "Enter Authenticator OTP"
	}
	return r.message("Login OTP sent to email")
}

type LoginAuthenticatorRequest struct {
	Email string `json:"email"`
	Code  string `json:"code" example:"123456"`
}

type LoginEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp" example:"123456"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type" example:"Bearer"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (TokenResponse) Message() string {
	return "Login successful"
}

type LogoutResponse struct{}

func (LogoutResponse) Message() string {
	return "Logged out"
}

type ProfileResponse struct {
	ID            int64  `json:"id,string"`
	Email         string `json:"email"`
	Status        string `json:"status"`
	OTPMethod     string `json:"otp_method"`
	EmailVerified bool   `json:"email_verified"`
}

func (ProfileResponse) Message() string {
	return "Protected data"
}
