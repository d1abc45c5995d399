package integration_test

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/metinatakli/cinema-booking-core/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

const (
	dbName         = "cinema_booking"
	dbUser         = "test_user"
	dbPassword     = "test_password"
	dbImageName    = "postgres:17-alpine"
	cacheImageName = "redis:7"
)

type BaseSuite struct {
	suite.Suite
	app            *TestApp
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer
}

// testConfig mirrors the production defaults except for the short lock wait,
// which keeps contention tests fast.
func testConfig(dsn, redisAddr string) app.Config {
	return app.Config{
		Port: 3000,
		Env:  "test",
		DB: app.DBConfig{
			DSN:          dsn,
			MaxOpenConns: 25,
			MaxIdleTime:  2 * time.Minute,
		},
		Redis: app.RedisConfig{
			URL:          redisAddr,
			MaxOpenConns: 25,
			MaxIdleConns: 10,
			MaxIdleTime:  2 * time.Minute,
		},
		Stripe: app.StripeConfig{
			WebhookSecret: TestWebhookSecret,
		},
		Booking: app.BookingConfig{
			HoldTTL:          10 * time.Minute,
			LockExpiry:       5 * time.Second,
			LockWait:         2 * time.Second,
			MaxSeats:         10,
			Currency:         "usd",
			LockBackend:      "redis",
			PaymentProvider:  "mock",
			WarningThreshold: 2 * time.Minute,
			WatcherInterval:  time.Minute,
			WarningRate:      20,
		},
		Events: app.EventsConfig{
			Broker: "log",
		},
	}
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := getDbContainer(ctx)
	s.Require().NoError(err, "failed to start database container")

	redisContainer, err := getCacheContainer(ctx)
	s.Require().NoError(err, "failed to start cache container")

	s.dbContainer = postgresContainer
	s.cacheContainer = redisContainer

	testApp, err := newTestApp(testConfig(postgresContainer.ConnectionString, redisContainer.ConnectionString))
	s.Require().NoError(err, "cannot initialize app")

	s.app = testApp
}

func (s *BaseSuite) TearDownSuite() {
	if s.app != nil {
		s.app.Close()
	}

	if s.dbContainer != nil {
		if err := testcontainers.TerminateContainer(s.dbContainer.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}

	if s.cacheContainer != nil {
		if err := testcontainers.TerminateContainer(s.cacheContainer.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
}

// SetupTest gives every test a freshly seeded showtime and an empty hold store.
func (s *BaseSuite) SetupTest() {
	resetState(s.T(), s.app)
	executeSQLFile(s.T(), s.app.DB, "testdata/showtime_up.sql")
	s.app.Mailer.Reset()
}

type Scenario struct {
	Name             string
	Method           string
	URL              string
	Body             io.Reader
	Headers          map[string]string
	Cookies          []*http.Cookie
	ExpectedStatus   int
	ExpectedResponse string
	BeforeTestFunc   func(t testing.TB, app *TestApp)
	AfterTestFunc    func(t testing.TB, app *TestApp, res *http.Response)
}

func (s Scenario) Run(t *testing.T, testApp *TestApp) {
	t.Run(s.Name, func(t *testing.T) {
		if s.BeforeTestFunc != nil {
			s.BeforeTestFunc(t, testApp)
		}

		req := prepareRequest(s.Method, s.URL, s.Body, s.Headers, s.Cookies)

		rec := httptest.NewRecorder()
		testApp.App.Routes().ServeHTTP(rec, req)

		res := rec.Result()
		defer res.Body.Close()

		assert.Equal(t, s.ExpectedStatus, res.StatusCode)

		if s.ExpectedResponse != "" {
			compareResponse(t, res.Body, s.ExpectedResponse)
		}

		if s.AfterTestFunc != nil {
			s.AfterTestFunc(t, testApp, res)
		}
	})
}

func mustServe(t testing.TB, testApp *TestApp, req *http.Request) *http.Response {
	t.Helper()

	rec := httptest.NewRecorder()
	testApp.App.Routes().ServeHTTP(rec, req)

	res := rec.Result()
	t.Cleanup(func() { res.Body.Close() })

	require.NotNil(t, res)

	return res
}
