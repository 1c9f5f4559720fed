package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"safetrip/models"
	"safetrip/utils"
)

// DispatchService carries SOS dispatch requests to emergency contacts
// over SMS. Results are logged only; a failed dispatch never propagates
// back to the trigger that raised it.
type DispatchService struct {
	gateway *utils.MessagingGateway
}

func NewDispatchService(gateway *utils.MessagingGateway) *DispatchService {
	return &DispatchService{gateway: gateway}
}

func (ds *DispatchService) Dispatch(ctx context.Context, req models.AlertDispatchRequest) error {
	body := utils.SOSAlertSMS(
		req.Contact.Name,
		req.Alert.Message,
		req.Alert.Location.Latitude,
		req.Alert.Location.Longitude,
	)

	result, err := ds.gateway.SendSMS(ctx, utils.SMSMessage{
		To:      req.Contact.Phone,
		Message: body,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"dispatchId": req.ID,
			"contactId":  req.Contact.ID.Hex(),
			"alertId":    req.Alert.ID.Hex(),
		}).Warn("SOS SMS dispatch failed: ", err)
		return err
	}

	logrus.WithFields(logrus.Fields{
		"dispatchId": req.ID,
		"contactId":  req.Contact.ID.Hex(),
		"alertId":    req.Alert.ID.Hex(),
		"messageId":  result.MessageID,
	}).Info("SOS SMS dispatched")

	return nil
}
