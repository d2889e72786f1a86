package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlibekovAA/gym-api/internal/auth/guard"
	authhttp "github.com/AlibekovAA/gym-api/internal/auth/http"
	authservice "github.com/AlibekovAA/gym-api/internal/auth/service"
	"github.com/AlibekovAA/gym-api/internal/auth/token"
	"github.com/AlibekovAA/gym-api/internal/common/clock"
	"github.com/AlibekovAA/gym-api/internal/common/config"
	commoncrypto "github.com/AlibekovAA/gym-api/internal/common/crypto"
	"github.com/AlibekovAA/gym-api/internal/common/docstore"
	commonhttp "github.com/AlibekovAA/gym-api/internal/common/http"
	"github.com/AlibekovAA/gym-api/internal/common/httpmetrics"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/common/server"
	"github.com/AlibekovAA/gym-api/internal/common/tracing"
	notificationhttp "github.com/AlibekovAA/gym-api/internal/notification/http"
	"github.com/AlibekovAA/gym-api/internal/notification/live"
	"github.com/AlibekovAA/gym-api/internal/notification/notifier"
	notificationrepo "github.com/AlibekovAA/gym-api/internal/notification/repository"
	notificationservice "github.com/AlibekovAA/gym-api/internal/notification/service"
	traininghttp "github.com/AlibekovAA/gym-api/internal/training/http"
	trainingrepo "github.com/AlibekovAA/gym-api/internal/training/repository"
	trainingservice "github.com/AlibekovAA/gym-api/internal/training/service"
	userhttp "github.com/AlibekovAA/gym-api/internal/user/http"
	userrepo "github.com/AlibekovAA/gym-api/internal/user/repository"
	userservice "github.com/AlibekovAA/gym-api/internal/user/service"
)

const serviceName = "gym-api"

type App struct {
	Config config.Config
	Log    *logger.Logger
	Store  docstore.Store
	Clock  clock.Clock

	Tokens *token.Service
	Guard  *guard.Guard
	Hasher commoncrypto.PasswordHasher
	IDs    commoncrypto.IDGenerator

	UserRepo         *userrepo.DocRepository
	TrainingRepo     *trainingrepo.DocTrainingRepository
	AvailabilityRepo *trainingrepo.DocAvailabilityRepository
	NotificationRepo *notificationrepo.DocRepository

	Auth          *authservice.AuthService
	Users         *userservice.UserService
	Trainings     *trainingservice.TrainingService
	Notifications *notificationservice.NotificationService

	Hub      *live.Hub
	Limiters *commonhttp.RateLimiters

	stopTracing tracing.ShutdownFunc
}

func NewLogger(cfg config.Config) (*logger.Logger, error) {
	return logger.New(cfg.LogDir, serviceName, cfg.LogLevel)
}

// New connects to the configured store and wires every component. The
// collections are provisioned before New returns; a failure there is fatal.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	stopTracing, err := tracing.Setup(ctx, cfg.Tracing, log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	store, err := docstore.Open(ctx, cfg.Store, log)
	if err != nil {
		_ = stopTracing(ctx)
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	app, err := newApp(cfg, log, store, clock.NewRealClock())
	if err != nil {
		_ = store.Close(ctx)
		_ = stopTracing(ctx)
		return nil, err
	}
	app.stopTracing = stopTracing

	if err := app.Provision(ctx); err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	return app, nil
}

func newApp(cfg config.Config, log *logger.Logger, store docstore.Store, clk clock.Clock) (*App, error) {
	tokens, err := token.NewService(cfg.Auth, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	mailer, err := notifier.New(cfg.Email, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	cols := cfg.Store.Collections
	users := userrepo.NewDocRepository(store.Collection(cols.Users))
	trainings := trainingrepo.NewDocTrainingRepository(store.Collection(cols.Trainings))
	availabilities := trainingrepo.NewDocAvailabilityRepository(store.Collection(cols.Availabilities))
	notifications := notificationrepo.NewDocRepository(store.Collection(cols.Notifications))

	hasher := commoncrypto.NewBcryptHasher(cfg.Auth.BcryptCost)
	ids := commoncrypto.NewUUIDGenerator()
	g := guard.New(tokens, users, log)
	hub := live.NewHub(log)

	return &App{
		Config:           cfg,
		Log:              log,
		Store:            store,
		Clock:            clk,
		Tokens:           tokens,
		Guard:            g,
		Hasher:           hasher,
		IDs:              ids,
		UserRepo:         users,
		TrainingRepo:     trainings,
		AvailabilityRepo: availabilities,
		NotificationRepo: notifications,
		Auth:             authservice.NewAuthService(users, hasher, tokens, log),
		Users:            userservice.NewUserService(users, hasher, ids, g, log),
		Trainings:        trainingservice.NewTrainingService(trainings, availabilities, ids, g, clk, log),
		Notifications:    notificationservice.NewNotificationService(notifications, users, mailer, hub, ids, g, clk, log),
		Hub:              hub,
		Limiters:         commonhttp.NewRateLimiters(cfg.TrustProxyHeaders),
		stopTracing:      func(context.Context) error { return nil },
	}, nil
}

// Provision creates any missing collection and its indexes.
func (a *App) Provision(ctx context.Context) error {
	if err := a.Store.EnsureCollections(ctx, docstore.Specs(a.Config.Store.Collections)); err != nil {
		return fmt.Errorf("failed to provision collections: %w", err)
	}
	return nil
}

// Router builds the chi route tree. Metrics and tracing run inside the
// router so they can label by route pattern.
func (a *App) Router() chi.Router {
	errs := commonhttp.NewErrorHandler(a.Log)

	r := chi.NewRouter()
	r.Use(httpmetrics.Middleware)
	r.Use(tracing.Middleware)
	r.NotFound(commonhttp.NotFoundHandler)
	r.MethodNotAllowed(commonhttp.MethodNotAllowedHandler)

	r.Get("/", commonhttp.WelcomeHandler)
	r.Get("/health", commonhttp.HealthHandler(a.Store, a.Log))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(a.Limiters.Token.Middleware("token"))
		r.Use(commonhttp.TimeoutMiddleware(a.Config.RequestTimeout))
		authhttp.NewHandler(a.Auth, errs, a.Log).Mount(r)
	})

	// Registered ahead of the /notifications subrouter; the feed is exempt
	// from the request timeout.
	r.Group(func(r chi.Router) {
		r.Use(a.Limiters.General.Middleware("general"))
		r.Use(a.Guard.Middleware(errs, true))
		r.Get("/notifications/ws", live.NewHandler(a.Hub, errs, a.Log).ServeHTTP)
	})

	r.Group(func(r chi.Router) {
		r.Use(a.Limiters.General.Middleware("general"))
		r.Use(commonhttp.TimeoutMiddleware(a.Config.RequestTimeout))
		r.Use(a.Guard.Middleware(errs, false))

		userhttp.NewHandler(a.Users, errs, a.Log).Mount(r)
		traininghttp.NewHandler(a.Trainings, errs, a.Log).Mount(r)
		notificationhttp.NewHandler(a.Notifications, errs, a.Log).Mount(r)
	})

	return r
}

func (a *App) Handler() http.Handler {
	return commonhttp.BuildBaseHandler(a.Log, a.Router())
}

// ShutdownHooks run while the server drains, before it stops.
func (a *App) ShutdownHooks() []server.ShutdownHook {
	return []server.ShutdownHook{
		a.Hub.Shutdown,
		func(context.Context) error {
			a.Limiters.Stop()
			return nil
		},
	}
}

// Close releases the store and flushes pending spans.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if err := a.Store.Close(ctx); err != nil {
		firstErr = fmt.Errorf("failed to close store: %w", err)
	}
	if err := a.stopTracing(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to stop tracing: %w", err)
	}
	return firstErr
}
