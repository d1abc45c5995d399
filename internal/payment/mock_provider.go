package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/shopspring/decimal"
)

// MockPaymentProvider stands in for the gateway in local development. Its
// callbacks are plain JSON signed with HMAC-SHA256 over the body.
type MockPaymentProvider struct {
	secret  string
	baseUrl string
}

type MockCallbackPayload struct {
	EventID  string          `json:"eventId"`
	HoldID   string          `json:"holdId"`
	HolderID string          `json:"holderId"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Outcome  string          `json:"outcome"`
}

func NewMockPaymentProvider(secret, baseUrl string) *MockPaymentProvider {
	return &MockPaymentProvider{
		secret:  secret,
		baseUrl: baseUrl,
	}
}

func (m *MockPaymentProvider) CreateCheckoutSession(_ context.Context, hold domain.Hold) (*domain.CheckoutSession, error) {
	id := "mock_cs_" + uuid.New().String()

	return &domain.CheckoutSession{
		ID:  id,
		URL: fmt.Sprintf("%s/mock-checkout/%s?hold=%s", m.baseUrl, id, hold.ID),
	}, nil
}

func (m *MockPaymentProvider) VerifyCallback(payload []byte, signature string) (*domain.PaymentCallback, error) {
	if !hmac.Equal([]byte(m.Sign(payload)), []byte(signature)) {
		return nil, domain.ErrInvalidSignature
	}

	var p MockCallbackPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode mock callback: %w", err)
	}

	outcome := domain.CallbackOutcome(p.Outcome)
	switch outcome {
	case domain.CallbackSucceeded, domain.CallbackFailed:
	default:
		outcome = domain.CallbackIgnored
	}

	return &domain.PaymentCallback{
		EventID:     p.EventID,
		HoldID:      p.HoldID,
		HolderID:    p.HolderID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Outcome:     outcome,
		ProviderRef: p.EventID,
	}, nil
}

func (m *MockPaymentProvider) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(m.secret))
	mac.Write(payload)

	return hex.EncodeToString(mac.Sum(nil))
}
