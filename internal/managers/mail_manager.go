// Package managers handles the sending of emails for account activation, password
// recovery and confirmation using the Mailgun service and the Hermes package for
// email formatting.
package managers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"

	"github.com/badili/odk-dashboard3/internal/config"
)

// MailMgr is an interface that outlines the contract for email management.
type MailMgr interface {
	SendActivationMail(email, username, link string) error
	SendPasswordResetMail(email, username, link string) error
	SendConfirmationMail(email, username, message string) error
}

// MailManager is a concrete implementation of the MailMgr interface.
// It uses the Mailgun service for sending emails and the Hermes package for formatting emails.
type MailManager struct {
	Hermes   *hermes.Hermes
	Mailgun  *mailgun.MailgunImpl
	sender   string
	siteName string
}

var environment string

// SendActivationMail sends an email with the activation link for a freshly
// registered, still inactive account.
func (mm *MailManager) SendActivationMail(email, username, link string) error {
	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				fmt.Sprintf("Welcome to %s! An account has been created for you.", mm.siteName),
				"It needs to be activated before you can sign in.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To activate your account, please click the button below. The link is valid for a limited time only.",
					Button: hermes.Button{
						Text: "Activate your account",
						Link: link,
					},
				},
			},
			Outros: []string{
				"If you did not expect this email, you can safely ignore it.",
			},
		},
	}

	return mm.send(email, "Activate your account", mailBody)
}

// SendPasswordResetMail sends an email with the password reset link.
func (mm *MailManager) SendPasswordResetMail(email, username, link string) error {
	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				fmt.Sprintf("You have received this email because a password reset request for your %s account was received.", mm.siteName),
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to set a new password. The link is valid for a limited time only.",
					Button: hermes.Button{
						Text: "Reset your password",
						Link: link,
					},
				},
			},
			Outros: []string{
				"If you did not request a password reset, no further action is required on your part.",
			},
		},
	}

	return mm.send(email, "Reset your password", mailBody)
}

// SendConfirmationMail confirms a completed account change, such as a
// successful activation or password reset.
func (mm *MailManager) SendConfirmationMail(email, username, message string) error {
	mailBody := hermes.Email{
		Body: hermes.Body{
			Name:   username,
			Intros: []string{message},
			Outros: []string{
				fmt.Sprintf("If this wasn't you, please contact the %s administrator immediately.", mm.siteName),
			},
		},
	}

	return mm.send(email, "Account update", mailBody)
}

func (mm *MailManager) send(email, subject string, mailBody hermes.Email) error {
	if environment != "production" {
		log.Info("Skipping mail in development mode: ", subject)
		return nil
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(2*time.Second))
	defer cancel()

	message := mm.Mailgun.NewMessage(mm.sender, subject, "", email)
	message.SetHtml(emailBody)
	if _, _, err = mm.Mailgun.Send(ctx, message); err != nil {
		log.Warning("Error sending mail: " + err.Error())
		return err
	}
	log.Debugf("Mail %q sent to %s", subject, email)

	return nil
}

// NewMailManager initializes a new MailManager instance with configured Mailgun and Hermes settings.
// It also checks the runtime environment to determine if emails should be sent.
func NewMailManager(cfg *config.Config) MailMgr {
	log.Info("Initializing mail manager")
	environment = os.Getenv("ENVIRONMENT")

	if environment != "production" {
		log.Println("Running in development mode, email will not be sent to users")
	}

	mailgunInstance := mailgun.NewMailgun(cfg.Mail.Domain, cfg.Mail.APIKey)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        cfg.SiteName,
				Link:        cfg.BaseURL,
				Copyright:   "© Badili Innovation",
				TroubleText: "If you’re having trouble with the button '{ACTION}', copy and paste the URL below into your web browser.",
			},
		},
		Mailgun:  mailgunInstance,
		sender:   cfg.Mail.Sender,
		siteName: cfg.SiteName,
	}
	log.Info("Initialized mail manager")
	return mm
}
