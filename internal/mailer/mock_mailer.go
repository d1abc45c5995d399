package mailer

import (
	"slices"
	"strings"
	"sync"
)

type Email struct {
	Recipient    string
	TemplateFile string
	Subject      string
	Data         any
}

// MockMailer records messages instead of delivering them. Templates are still
// rendered, so a broken template fails the caller just like in production.
type MockMailer struct {
	renderer *SMTPMailer

	mu   sync.Mutex
	sent []Email
	err  error
}

func NewMockMailer() *MockMailer {
	return &MockMailer{
		renderer: &SMTPMailer{sender: "no-reply@localhost"},
	}
}

func (m *MockMailer) Send(recipient, templateFile string, data any) error {
	msg, err := m.renderer.render(recipient, templateFile, data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.sent = append(m.sent, Email{
		Recipient:    recipient,
		TemplateFile: templateFile,
		Subject:      strings.Join(msg.GetHeader("Subject"), " "),
		Data:         data,
	})

	return nil
}

// FailWith makes every following Send return err; nil restores delivery.
func (m *MockMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

func (m *MockMailer) GetSentEmails() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.sent)
}

func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = nil
	m.err = nil
}
