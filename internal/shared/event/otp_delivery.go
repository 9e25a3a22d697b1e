package event

const OTPDeliveryDestination string = "secureauth.otp.delivery"
const OTPDeliveryDestinationConsumerNotification string = "secureauth.otp.delivery.notification"

// OTPDeliveryMessage is a one-time code mail the identity module could not
// send synchronously. DeliveryID makes redeliveries idempotent.
type OTPDeliveryMessage struct {
	DeliveryID string `json:"delivery_id"`
	AccountID  int64  `json:"account_id,string"`
	Email      string `json:"email"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}
