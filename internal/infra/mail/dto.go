package mail

type RecoveryEmailData struct {
	Name        string
	CheckoutURL string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
