package notifications

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/you/portalauth/domain"
)

// TwilioService delivers OTP challenges over SMS. Without a configured
// sender number it degrades to logging the message, which keeps the mock
// OTP flow usable in development.
type TwilioService struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioService creates the SMS delivery service.
func NewTwilioService(accountSID, authToken, fromNumber string) domain.NotificationService {
	return &TwilioService{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: fromNumber,
	}
}

// SendSMS implements domain.NotificationService
func (t *TwilioService) SendSMS(to, message string) error {
	if t.from == "" {
		log.Printf("SMS_FALLBACK: to=%s body=%q", to, message)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(message)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}

// SendEmail implements domain.NotificationService. Twilio carries no email
// channel here, so delivery is log-only.
func (t *TwilioService) SendEmail(to, subject, body string) error {
	log.Printf("EMAIL_FALLBACK: to=%s subject=%q", to, subject)
	return nil
}
