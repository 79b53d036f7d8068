// File: /services/notification_service.go
package services

import (
	"fmt"
	"log"
	"strings"

	"gopkg.in/gomail.v2"

	"trailcraft-api/config"
	"trailcraft-api/models"
	"trailcraft-api/utils"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Notifier reports successful submissions to a human.
type Notifier interface {
	NotifySubmitted(payload models.MutationPayload, ack *models.TrailAcknowledgement) error
}

// NotificationService emails NOTIFY_EMAIL whenever a trail is accepted.
type NotificationService struct {
	config *config.Config
	sender mailSender
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return &NotificationService{config: cfg, sender: dialer}
}

// NotifySubmitted emails a short summary of the accepted trail.
func (ns *NotificationService) NotifySubmitted(payload models.MutationPayload, ack *models.TrailAcknowledgement) error {
	m := ns.submissionMessage(payload, ack)
	if err := ns.sender.DialAndSend(m); err != nil {
		log.Printf("Failed to send submission email: %v", err)
		return fmt.Errorf("failed to send submission email: %w", err)
	}
	log.Printf("Submission email sent to %s", ns.config.NotifyEmail)
	return nil
}

func (ns *NotificationService) submissionMessage(payload models.MutationPayload, ack *models.TrailAcknowledgement) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", ns.config.FromName, ns.config.FromEmail))
	m.SetHeader("To", ns.config.NotifyEmail)
	m.SetHeader("Subject", fmt.Sprintf("Trail submitted: %s", payload.Name))

	var b strings.Builder
	fmt.Fprintf(&b, "A new trail was accepted.\n\n")
	if ack != nil {
		fmt.Fprintf(&b, "ID: %s\n", ack.ID)
	}
	fmt.Fprintf(&b, "Name: %s\n", payload.Name)
	fmt.Fprintf(&b, "Location: %s, %s\n", payload.Location.City, payload.Location.Country)
	fmt.Fprintf(&b, "Distance: %d m\n", utils.RoundMeters(payload.DistanceMeters))
	fmt.Fprintf(&b, "Estimated time: %d min\n", payload.ApproximateTimeMillis/millisPerMinute)
	fmt.Fprintf(&b, "Points: %d\n", len(payload.Track.Points))

	m.SetBody("text/plain", b.String())
	return m
}

// NopNotifier is used when SMTP is not configured.
type NopNotifier struct{}

func (NopNotifier) NotifySubmitted(models.MutationPayload, *models.TrailAcknowledgement) error {
	return nil
}
