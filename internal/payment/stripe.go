package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	metadataHoldID   = "hold_id"
	metadataHolderID = "holder_id"
)

type StripePaymentProvider struct {
	failureUrl    string
	successUrl    string
	webhookSecret string
	currency      string
}

func NewStripePaymentProvider(failureUrl, successUrl, webhookSecret, currency string) *StripePaymentProvider {
	return &StripePaymentProvider{
		failureUrl:    failureUrl,
		successUrl:    successUrl,
		webhookSecret: webhookSecret,
		currency:      currency,
	}
}

func (s *StripePaymentProvider) CreateCheckoutSession(ctx context.Context, hold domain.Hold) (*domain.CheckoutSession, error) {
	params := s.checkoutParams(hold)
	params.Context = ctx

	checkoutSession, err := session.New(params)
	if err != nil {
		return nil, err
	}

	return &domain.CheckoutSession{
		ID:  checkoutSession.ID,
		URL: checkoutSession.URL,
	}, nil
}

func (s *StripePaymentProvider) checkoutParams(hold domain.Hold) *stripe.CheckoutSessionParams {
	var lineItems []*stripe.CheckoutSessionLineItemParams

	for _, seat := range hold.Seats {
		seatLabel := fmt.Sprintf("Row %d Seat %d", seat.Row, seat.Col)

		seatPrice := hold.BasePrice.Add(seat.ExtraPrice)

		lineItem := &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.currency),
				UnitAmount: stripe.Int64(toMinorUnits(seatPrice)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%s - %s", hold.MovieName, seatLabel)),
					Description: stripe.String(fmt.Sprintf(
						"Theater: %s • Hall: %s • Showtime: %s • Seat Type: %s",
						hold.TheaterName,
						hold.HallName,
						hold.Date.Format("Jan 2, 2006 15:04"),
						seat.SeatType,
					)),
				},
			},
			Quantity: stripe.Int64(1),
		}

		lineItems = append(lineItems, lineItem)
	}

	params := &stripe.CheckoutSessionParams{
		LineItems:  lineItems,
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successUrl),
		CancelURL:  stripe.String(s.failureUrl),
		Metadata: map[string]string{
			metadataHoldID:   hold.ID,
			metadataHolderID: hold.HolderID,
		},
		ClientReferenceID: stripe.String(hold.ID),
	}

	if hold.ContactEmail != "" {
		params.CustomerEmail = stripe.String(hold.ContactEmail)
	}

	return params
}

// VerifyCallback authenticates a webhook delivery and maps checkout session
// events onto payment outcomes. Events this service does not act on come back
// as CallbackIgnored.
func (s *StripePaymentProvider) VerifyCallback(payload []byte, signature string) (*domain.PaymentCallback, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSignature, err)
	}

	callback := &domain.PaymentCallback{
		EventID: event.ID,
		Outcome: domain.CallbackIgnored,
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		checkoutSession, err := decodeCheckoutSession(event)
		if err != nil {
			return nil, err
		}

		fillCallback(callback, checkoutSession)

		// delayed payment methods complete the session before the money arrives
		if checkoutSession.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			callback.Outcome = domain.CallbackSucceeded
		}

	case stripe.EventTypeCheckoutSessionExpired,
		stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		checkoutSession, err := decodeCheckoutSession(event)
		if err != nil {
			return nil, err
		}

		fillCallback(callback, checkoutSession)
		callback.Outcome = domain.CallbackFailed
	}

	return callback, nil
}

func decodeCheckoutSession(event stripe.Event) (*stripe.CheckoutSession, error) {
	var checkoutSession stripe.CheckoutSession

	if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
		return nil, fmt.Errorf("decode checkout session of event %s: %w", event.ID, err)
	}

	return &checkoutSession, nil
}

func fillCallback(callback *domain.PaymentCallback, checkoutSession *stripe.CheckoutSession) {
	callback.HoldID = checkoutSession.Metadata[metadataHoldID]
	callback.HolderID = checkoutSession.Metadata[metadataHolderID]
	callback.Amount = fromMinorUnits(checkoutSession.AmountTotal)
	callback.Currency = string(checkoutSession.Currency)
	callback.ProviderRef = checkoutSession.ID
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
