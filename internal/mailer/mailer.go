package mailer

// Mailer sends templateFile, rendered with data, to recipient. Template files
// live under templates/ and define "subject", "plainBody" and "htmlBody".
type Mailer interface {
	Send(recipient, templateFile string, data any) error
}
