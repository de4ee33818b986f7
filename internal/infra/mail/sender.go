package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"

	"gopkg.in/gomail.v2"
)

// Assuntos das três mensagens da régua de recuperação de carrinho.
var recoverySubjects = map[int]string{
	1: "%s, esqueceu algo no carrinho? 👀",
	2: "%s, seu carrinho ainda está te esperando",
	3: "Última chance, %s! Seu carrinho vai expirar",
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

// SendRecovery envia a mensagem N da régua. Os templates ficam em
// templates/recovery_msgN.html.
func (s *EmailSender) SendRecovery(to, name, checkoutURL string, messageNumber int) error {
	subject, ok := recoverySubjects[messageNumber]
	if !ok {
		return fmt.Errorf("mensagem de recuperação desconhecida: %d", messageNumber)
	}

	data := RecoveryEmailData{
		Name:        name,
		CheckoutURL: checkoutURL,
	}

	tmplPath := filepath.Join("templates", fmt.Sprintf("recovery_msg%d.html", messageNumber))
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("erro ao ler template de email: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf(subject, name))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}
