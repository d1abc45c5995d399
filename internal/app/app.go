package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-booking-core/api"
	"github.com/metinatakli/cinema-booking-core/internal/booking"
	"github.com/metinatakli/cinema-booking-core/internal/clock"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/metinatakli/cinema-booking-core/internal/events"
	"github.com/metinatakli/cinema-booking-core/internal/holdstore"
	"github.com/metinatakli/cinema-booking-core/internal/lock"
	"github.com/metinatakli/cinema-booking-core/internal/mailer"
	"github.com/metinatakli/cinema-booking-core/internal/notify"
	"github.com/metinatakli/cinema-booking-core/internal/payment"
	"github.com/metinatakli/cinema-booking-core/internal/repository"
	appvalidator "github.com/metinatakli/cinema-booking-core/internal/validator"
	"github.com/metinatakli/cinema-booking-core/internal/vcs"
	"github.com/metinatakli/cinema-booking-core/internal/watcher"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	version = vcs.Version()
)

type pinger interface {
	Ping(ctx context.Context) error
}

type Application struct {
	config         Config
	logger         *slog.Logger
	db             pinger
	lockDB         *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	sessionManager *scs.SessionManager
	openapi        []byte

	bookings      *booking.Orchestrator
	confirmations *booking.ConfirmationHandler
	watcher       *watcher.ExpiryWatcher
	publisher     domain.EventPublisher
}

// Run wires the service from flags and the environment and serves until it
// receives SIGINT or SIGTERM.
func Run() error {
	cfg, displayVersion, err := ParseConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	stripe.Key = cfg.Stripe.SecretKey

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	shutdownTelemetry, err := InitTelemetry(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(
			logger.Handler(),
			otelslog.NewHandler(serviceName),
		))
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)

	app, err := NewApp(cfg, logger, db, redisClient, smtpMailer, newPaymentProvider(cfg), publisher)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.serve()
}

// NewApp builds the booking services on top of already opened connections.
func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient *redis.Client,
	m mailer.Mailer,
	provider domain.PaymentProvider,
	publisher domain.EventPublisher) (*Application, error) {

	doc, err := api.GetSwagger()
	if err != nil {
		return nil, err
	}

	openapi, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	clk := clock.Real{}
	payments := repository.NewPostgresPaymentRepository(db)

	var (
		locker domain.Locker
		lockDB *pgxpool.Pool
	)

	switch cfg.Booking.LockBackend {
	case "postgres":
		lockDB, err = NewLockPool(db, cfg.DB.LockMaxConns)
		if err != nil {
			return nil, err
		}
		locker = lock.NewPostgresLocker(lockDB)
	case "redis", "":
		locker = lock.NewRedisLocker(redisClient)
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.Booking.LockBackend)
	}

	holds := holdstore.NewRedisStore(redisClient, clk)
	mailNotifier := notify.NewMailNotifier(m)

	orchestrator := booking.New(booking.Deps{
		Locker:          locker,
		Holds:           holds,
		Seats:           repository.NewPostgresSeatRepository(db),
		Tickets:         repository.NewPostgresTicketRepository(db),
		Payments:        payments,
		Reconciliations: repository.NewPostgresReconciliationRepository(db),
		Provider:        provider,
		Publisher:       publisher,
		Notifier:        mailNotifier,
		Clock:           clk,
		Logger:          logger,
	},
		booking.WithHoldTTL(cfg.Booking.HoldTTL),
		booking.WithLockExpiry(cfg.Booking.LockExpiry),
		booking.WithLockWait(cfg.Booking.LockWait),
		booking.WithMaxSeats(cfg.Booking.MaxSeats),
		booking.WithCurrency(cfg.Booking.Currency),
	)

	// ticket.booked is already published by the orchestrator, so only expiry
	// warnings go to the broker through a notifier
	warnings := notify.Notifiers{mailNotifier, notify.NewPublisherNotifier(publisher, clk)}

	expiryWatcher := watcher.New(holds, warnings, clk, logger, watcher.Config{
		Interval:  cfg.Booking.WatcherInterval,
		Threshold: cfg.Booking.WarningThreshold,
		Rate:      cfg.Booking.WarningRate,
		Locker:    locker,
	})

	return &Application{
		config:         cfg,
		logger:         logger,
		db:             db,
		lockDB:         lockDB,
		redis:          redisClient,
		validator:      appvalidator.NewValidator(),
		sessionManager: NewSessionManager(redisClient),
		openapi:        openapi,
		bookings:       orchestrator,
		confirmations:  booking.NewConfirmationHandler(provider, payments, orchestrator, logger),
		watcher:        expiryWatcher,
		publisher:      publisher,
	}, nil
}

// Close releases what NewApp opened itself.
func (app *Application) Close() {
	if app.lockDB != nil {
		app.lockDB.Close()
	}
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	if err := redisotel.InstrumentMetrics(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// NewLockPool opens a second pool on the same database for advisory locks, so
// lock holders never wait on connections their own queries need.
func NewLockPool(db *pgxpool.Pool, maxConns int) (*pgxpool.Pool, error) {
	config := db.Config()
	config.MaxConns = int32(max(maxConns, 1))
	config.MinConns = 0

	return pgxpool.NewWithConfig(context.Background(), config)
}

func newPublisher(cfg Config, logger *slog.Logger) (domain.EventPublisher, error) {
	switch cfg.Events.Broker {
	case "rabbitmq":
		publisher, err := events.NewAMQPPublisher(cfg.Events.AMQPURL)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	case "kafka":
		producer, err := events.NewKafkaProducer(cfg.Events.KafkaBrokers)
		if err != nil {
			return nil, err
		}
		return events.NewKafkaPublisher(producer), nil
	case "log", "":
		return events.NewLogPublisher(logger), nil
	default:
		return nil, fmt.Errorf("unknown event broker %q", cfg.Events.Broker)
	}
}

func newPaymentProvider(cfg Config) domain.PaymentProvider {
	if cfg.Booking.PaymentProvider == "mock" {
		return payment.NewMockPaymentProvider(cfg.Stripe.WebhookSecret, fmt.Sprintf("http://localhost:%d", cfg.Port))
	}

	return payment.NewStripePaymentProvider(
		cfg.Stripe.FailureUrl,
		cfg.Stripe.SuccessUrl,
		cfg.Stripe.WebhookSecret,
		cfg.Booking.Currency,
	)
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	watcherCtx, stopWatcher := context.WithCancel(context.Background())
	watcherDone := make(chan struct{})

	go func() {
		defer close(watcherDone)
		app.watcher.Run(watcherCtx)
	}()

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		stopWatcher()
		<-watcherDone

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		stopWatcher()
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
