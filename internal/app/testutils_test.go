package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/metinatakli/cinema-booking-core/api"
	"github.com/metinatakli/cinema-booking-core/internal/booking"
	"github.com/metinatakli/cinema-booking-core/internal/clock"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/metinatakli/cinema-booking-core/internal/holdstore"
	"github.com/metinatakli/cinema-booking-core/internal/lock"
	"github.com/metinatakli/cinema-booking-core/internal/mocks"
	"github.com/metinatakli/cinema-booking-core/internal/payment"
	"github.com/metinatakli/cinema-booking-core/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "whsec_test"

var testNow = time.Date(2026, time.March, 1, 18, 0, 0, 0, time.UTC)

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// testDeps exposes the collaborators behind a test application so tests can
// set expectations on them.
type testDeps struct {
	seats           *mocks.MockSeatRepo
	tickets         *mocks.MockTicketRepo
	payments        *mocks.MockPaymentRepo
	reconciliations *mocks.MockReconciliationRepo
	publisher       *mocks.MockEventPublisher
	notifier        *mocks.MockNotifier
	db              *mockPinger
	redis           *mocks.MockRedisClient
	holds           *holdstore.MemoryStore
	provider        *payment.MockPaymentProvider
	clock           *clock.Fake
}

func newTestApplication(opts ...booking.Option) (*Application, *testDeps) {
	deps := &testDeps{
		seats:           &mocks.MockSeatRepo{},
		tickets:         &mocks.MockTicketRepo{},
		payments:        &mocks.MockPaymentRepo{},
		reconciliations: &mocks.MockReconciliationRepo{},
		publisher:       &mocks.MockEventPublisher{},
		notifier:        &mocks.MockNotifier{},
		db:              &mockPinger{},
		redis:           &mocks.MockRedisClient{},
		provider:        payment.NewMockPaymentProvider(webhookSecret, "http://localhost"),
		clock:           clock.NewFake(testNow),
	}
	deps.holds = holdstore.NewMemoryStore(deps.clock)

	deps.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	deps.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Maybe()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	bookings := booking.New(booking.Deps{
		Locker:          lock.NewMemoryLocker(deps.clock),
		Holds:           deps.holds,
		Seats:           deps.seats,
		Tickets:         deps.tickets,
		Payments:        deps.payments,
		Reconciliations: deps.reconciliations,
		Provider:        deps.provider,
		Publisher:       deps.publisher,
		Notifier:        deps.notifier,
		Clock:           deps.clock,
		Logger:          logger,
	}, opts...)

	app := &Application{
		config:         Config{Env: "test"},
		logger:         logger,
		db:             deps.db,
		redis:          deps.redis,
		validator:      validator.NewValidator(),
		sessionManager: scs.New(),
		openapi:        []byte(`{"openapi":"3.0.3"}`),
		bookings:       bookings,
		confirmations:  booking.NewConfirmationHandler(deps.provider, deps.payments, bookings, logger),
		publisher:      deps.publisher,
	}

	return app, deps
}

func testShowtimeSeats(seatIDs ...int) *domain.ShowtimeSeats {
	seats := make([]domain.Seat, len(seatIDs))
	for i, id := range seatIDs {
		seats[i] = domain.Seat{
			ID:         id,
			Row:        (id-1)/10 + 1,
			Col:        (id-1)%10 + 1,
			Type:       "standard",
			ExtraPrice: decimal.Zero,
		}
	}

	return &domain.ShowtimeSeats{
		ShowtimeID:  1,
		TheaterID:   1,
		TheaterName: "Grand Cinema",
		MovieName:   "Inception",
		HallID:      1,
		HallName:    "Hall 1",
		Date:        testNow.Add(48 * time.Hour),
		Price:       decimal.NewFromInt(10),
		Seats:       seats,
	}
}

func newJSONRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()

	var reader io.Reader = http.NoBody

	if body != nil {
		jsonData, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")

	return r
}

// executeRequest runs the request through the full router so session and
// error middleware apply.
func executeRequest(t *testing.T, app *Application, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	app.Routes().ServeHTTP(w, r)

	return w
}

func withCookies(r *http.Request, w *httptest.ResponseRecorder) *http.Request {
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}

	return r
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))

	return v
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantErrMessage string) {
	t.Helper()

	require.Equal(t, wantStatus, w.Code)

	switch wantStatus {
	case http.StatusUnprocessableEntity:
		resp := decodeBody[api.ValidationErrorResponse](t, w)

		if wantErrMessage == "" {
			return
		}

		issues := make(map[string]bool)
		for _, vErr := range resp.ValidationErrors {
			issues[vErr.Issue] = true
		}

		require.Truef(t, issues[wantErrMessage] || resp.Message == wantErrMessage,
			"expected error message %q in %+v", wantErrMessage, resp)

	default:
		resp := decodeBody[api.ErrorResponse](t, w)

		if wantErrMessage != "" {
			require.Equal(t, wantErrMessage, resp.Message)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
