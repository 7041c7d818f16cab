package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"campground-backend/internal/domain"
	"campground-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// notifierService dispatches guest messages through the WhatsApp gateway
// and admin alerts through SendGrid. Everything is fire-and-forget: a
// failed notification is logged and dropped, it never fails the
// settlement operation that triggered it.
type notifierService struct {
	gatewayURL   string
	gatewayToken string

	sendGridKey string
	fromEmail   string
	fromName    string
	adminEmail  string

	client *http.Client
}

func NewNotifierService(gatewayURL, gatewayToken, sendGridKey, fromEmail, fromName, adminEmail string) NotifierService {
	return &notifierService{
		gatewayURL:   gatewayURL,
		gatewayToken: gatewayToken,
		sendGridKey:  sendGridKey,
		fromEmail:    fromEmail,
		fromName:     fromName,
		adminEmail:   adminEmail,
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *notifierService) Notify(recipients []string, message string, kind domain.NotificationKind, delay time.Duration) {
	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		if kind == domain.NotificationKindAdminAlert {
			if err := s.sendAdminEmail(message); err != nil {
				logger.Error("admin alert failed", "error", err)
			}
			return
		}
		for _, to := range recipients {
			if err := s.sendWhatsApp(to, message); err != nil {
				logger.Error("whatsapp notification failed", "recipient", to, "kind", kind, "error", err)
			}
		}
	}()
}

func (s *notifierService) sendWhatsApp(phone, message string) error {
	if s.gatewayURL == "" {
		logger.Debug("whatsapp gateway not configured, dropping message", "recipient", phone)
		return nil
	}
	payload, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.gatewayToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.gatewayToken)
	}
	logger.ExternalServiceCall("whatsapp-gateway", "send", "recipient", phone)
	resp, err := s.client.Do(req)
	if err != nil {
		err = fmt.Errorf("gateway request failed: %w", err)
		logger.ExternalServiceResult("whatsapp-gateway", "send", err, "recipient", phone)
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		err = fmt.Errorf("gateway returned status %d", resp.StatusCode)
		logger.ExternalServiceResult("whatsapp-gateway", "send", err, "recipient", phone)
		return err
	}
	logger.ExternalServiceResult("whatsapp-gateway", "send", nil, "recipient", phone)
	return nil
}

func (s *notifierService) sendAdminEmail(message string) error {
	if s.sendGridKey == "" || s.adminEmail == "" {
		logger.Debug("admin email not configured, dropping alert")
		return nil
	}
	from := sgmail.NewEmail(s.fromName, s.fromEmail)
	to := sgmail.NewEmail("", s.adminEmail)
	mail := sgmail.NewSingleEmail(from, "Campground alert", to, message, "")

	client := sendgrid.NewSendClient(s.sendGridKey)
	logger.ExternalServiceCall("sendgrid", "send", "to", s.adminEmail)
	resp, err := client.Send(mail)
	if err != nil {
		err = fmt.Errorf("failed to send email: %w", err)
		logger.ExternalServiceResult("sendgrid", "send", err)
		return err
	}
	if resp.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", resp.StatusCode, resp.Body)
		logger.ExternalServiceResult("sendgrid", "send", err)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "send", nil)
	return nil
}
