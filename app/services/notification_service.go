// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"fmt"
	"log"
	"strings"
)

// NotificationService handles sending notifications via SMS and email
type NotificationService interface {
	SendSMS(mobile, message string) error
	SendEmail(email, subject, message string) error
	// NotifyPremiumIssued informs a company contact that a new premium invoice is available
	NotifyPremiumIssued(email, mobile, companyName string, totalAmount float64) error
	// NotifyClaimDecision informs a company contact of a claim adjudication outcome
	NotifyClaimDecision(email, mobile, claimUUID, status string) error
}

// NotificationServiceImpl implements NotificationService
type NotificationServiceImpl struct {
	smsProvider   SMSProvider
	emailProvider EmailProvider
}

// SMSProvider interface for SMS sending
type SMSProvider interface {
	SendSMS(mobile, message string) error
}

// EmailProvider interface for email sending
type EmailProvider interface {
	SendEmail(email, subject, message string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(smsProvider SMSProvider, emailProvider EmailProvider) NotificationService {
	return &NotificationServiceImpl{
		smsProvider:   smsProvider,
		emailProvider: emailProvider,
	}
}

// SendSMS sends an SMS message to the specified mobile number
func (s *NotificationServiceImpl) SendSMS(mobile, message string) error {
	if s.smsProvider == nil {
		return fmt.Errorf("SMS provider not configured")
	}

	if len(mobile) < 8 || !strings.HasPrefix(mobile, "+") {
		return fmt.Errorf("invalid mobile number format: %s", mobile)
	}

	return s.smsProvider.SendSMS(mobile, message)
}

// SendEmail sends an email to the specified email address
func (s *NotificationServiceImpl) SendEmail(email, subject, message string) error {
	if s.emailProvider == nil {
		return fmt.Errorf("email provider not configured")
	}

	if len(email) == 0 || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %s", email)
	}

	return s.emailProvider.SendEmail(email, subject, message)
}

// NotifyPremiumIssued sends the premium-issued notice over both channels when possible
func (s *NotificationServiceImpl) NotifyPremiumIssued(email, mobile, companyName string, totalAmount float64) error {
	message := fmt.Sprintf("A new premium invoice of %.2f has been issued for %s.", totalAmount, companyName)

	var firstErr error
	if email != "" {
		if err := s.SendEmail(email, "Premium invoice issued", message); err != nil {
			firstErr = err
		}
	}
	if mobile != "" {
		if err := s.SendSMS(mobile, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NotifyClaimDecision sends the claim adjudication outcome over both channels when possible
func (s *NotificationServiceImpl) NotifyClaimDecision(email, mobile, claimUUID, status string) error {
	message := fmt.Sprintf("Claim %s has been %s.", claimUUID, status)

	var firstErr error
	if email != "" {
		if err := s.SendEmail(email, "Claim decision", message); err != nil {
			firstErr = err
		}
	}
	if mobile != "" {
		if err := s.SendSMS(mobile, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type MockSMSProvider struct{}

func NewMockSMSProvider() SMSProvider {
	return &MockSMSProvider{}
}

func (p *MockSMSProvider) SendSMS(mobile, message string) error {
	log.Printf("SMS sent to %s: %s", mobile, message)
	return nil
}

type MockEmailProvider struct{}

func NewMockEmailProvider() EmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(email, subject, message string) error {
	log.Printf("Email sent to %s [%s]: %s", email, subject, message)
	return nil
}

type SMTPEmailProvider struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

func NewSMTPEmailProvider(host string, port int, username, password, fromEmail string) EmailProvider {
	return &SMTPEmailProvider{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
	}
}

func (p *SMTPEmailProvider) SendEmail(email, subject, message string) error {
	// TODO: wire a real SMTP client once outbound mail credentials exist
	log.Printf("Sending email via SMTP to %s [%s]: %s", email, subject, message)
	return nil
}
