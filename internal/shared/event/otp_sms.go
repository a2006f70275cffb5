package event

const OtpSmsDestination string = "otp_sms"
const OtpSmsConsumerNotifier string = "otp_sms_notifier"

// OtpSmsMessage asks the notifier to text a one-time code to a phone number.
type OtpSmsMessage struct {
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
	Code    string `json:"code"`
}
