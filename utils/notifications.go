package utils

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"google.golang.org/api/option"
)

// MessagingGateway wraps the external push (FCM) and SMS (Twilio)
// channels. Delivery failure here is reported to the caller, who logs it
// as a non-fatal event; nothing upstream blocks on it.
type MessagingGateway struct {
	fcmClient    *messaging.Client
	twilioClient *twilio.RestClient
	twilioNumber string
}

type PushNotification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
	Sound string            `json:"sound,omitempty"`
}

type SMSMessage struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type DeliveryResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

func NewMessagingGateway(firebaseCredentials, twilioSID, twilioToken, twilioNumber string) (*MessagingGateway, error) {
	var fcmClient *messaging.Client
	if firebaseCredentials != "" {
		opt := option.WithCredentialsFile(firebaseCredentials)
		app, err := firebase.NewApp(context.Background(), nil, opt)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Firebase: %v", err)
		}

		fcmClient, err = app.Messaging(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize FCM client: %v", err)
		}
	}

	var twilioClient *twilio.RestClient
	if twilioSID != "" {
		twilioClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: twilioSID,
			Password: twilioToken,
		})
	}

	return &MessagingGateway{
		fcmClient:    fcmClient,
		twilioClient: twilioClient,
		twilioNumber: twilioNumber,
	}, nil
}

// Push Notifications
func (mg *MessagingGateway) SendPushNotification(ctx context.Context, deviceToken string, notification PushNotification) (*DeliveryResult, error) {
	if mg.fcmClient == nil {
		return &DeliveryResult{Success: false, Error: "FCM not configured"}, fmt.Errorf("FCM not configured")
	}

	message := &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: notification.Title,
			Body:  notification.Body,
		},
		Data: notification.Data,
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				Sound: notification.Sound,
				Icon:  "ic_notification",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: notification.Title,
						Body:  notification.Body,
					},
					Sound: notification.Sound,
				},
			},
		},
	}

	response, err := mg.fcmClient.Send(ctx, message)
	if err != nil {
		return &DeliveryResult{
			Success: false,
			Error:   err.Error(),
		}, err
	}

	return &DeliveryResult{
		Success:   true,
		MessageID: response,
	}, nil
}

// SMS Notifications
func (mg *MessagingGateway) SendSMS(ctx context.Context, sms SMSMessage) (*DeliveryResult, error) {
	if mg.twilioClient == nil {
		return &DeliveryResult{Success: false, Error: "Twilio not configured"}, fmt.Errorf("Twilio not configured")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(sms.To)
	params.SetFrom(mg.twilioNumber)
	params.SetBody(sms.Message)

	resp, err := mg.twilioClient.Api.CreateMessage(params)
	if err != nil {
		return &DeliveryResult{
			Success: false,
			Error:   err.Error(),
		}, err
	}

	return &DeliveryResult{
		Success:   true,
		MessageID: *resp.Sid,
	}, nil
}

// SOSAlertSMS renders the outbound SMS body for one emergency contact.
func SOSAlertSMS(contactName, message string, lat, lon float64) string {
	body := fmt.Sprintf("EMERGENCY: %s, someone who lists you as an emergency contact has triggered an SOS alert. Location: https://maps.google.com/?q=%f,%f", contactName, lat, lon)
	if message != "" {
		body += " Message: " + TruncateString(message, 120)
	}
	return body
}
