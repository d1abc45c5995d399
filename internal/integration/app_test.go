package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-booking-core/internal/app"
	"github.com/metinatakli/cinema-booking-core/internal/events"
	"github.com/metinatakli/cinema-booking-core/internal/mailer"
	"github.com/metinatakli/cinema-booking-core/internal/payment"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App      *app.Application
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Mailer   *mailer.MockMailer
	Provider *payment.MockPaymentProvider
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	mockMailer := mailer.NewMockMailer()
	provider := payment.NewMockPaymentProvider(cfg.Stripe.WebhookSecret, "http://localhost")

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	application, err := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		mockMailer,
		provider,
		events.NewLogPublisher(logger),
	)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, err
	}

	return &TestApp{
		App:      application,
		DB:       db,
		Redis:    redisClient,
		Mailer:   mockMailer,
		Provider: provider,
	}, nil
}

func (a *TestApp) Close() {
	a.App.Close()
	a.DB.Close()
	a.Redis.Close()
}
