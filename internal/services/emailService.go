package services

import (
	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendEmail(to, subject, msg string) error
}

type emailService struct {
	host     string
	port     int
	username string
	password string
}

func NewEmailService(host string, port int, username, password string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

func (e *emailService) SendEmail(to, subject, msg string) error {
	m := gomail.NewMessage()

	m.SetHeader("From", e.username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", msg)

	d := gomail.NewDialer(e.host, e.port, e.username, e.password)

	if err := d.DialAndSend(m); err != nil {
		return err
	}
	return nil
}
