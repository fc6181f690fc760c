package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/moneyflow/moneyflow/modules/authweb"
	"github.com/moneyflow/moneyflow/modules/budget"
	"github.com/moneyflow/moneyflow/pkg/access"
	"github.com/moneyflow/moneyflow/pkg/auth"
	"github.com/moneyflow/moneyflow/pkg/authstate"
	"github.com/moneyflow/moneyflow/pkg/config"
	"github.com/moneyflow/moneyflow/pkg/httpserver"
	"github.com/moneyflow/moneyflow/pkg/liff"
	"github.com/moneyflow/moneyflow/pkg/logger"
	"github.com/moneyflow/moneyflow/pkg/profilecache"
	"github.com/moneyflow/moneyflow/pkg/provider"
	"github.com/moneyflow/moneyflow/pkg/redis"
)

type demoConfig struct {
	Enabled  bool   `env:"SEED_DEMO_DATA" envDefault:"true"`
	Email    string `env:"DEMO_EMAIL" envDefault:"demo@moneyflow.app"`
	Password string `env:"DEMO_PASSWORD" envDefault:"demo123"`
}

func main() {
	ctx := context.Background()

	var (
		logCfg      logger.Config
		accessCfg   access.Config
		liffCfg     liff.Config
		providerCfg provider.Config
		googleCfg   provider.GoogleConfig
		githubCfg   provider.GithubConfig
		redisCfg    redis.Config
		httpCfg     httpserver.Config
		demoCfg     demoConfig
	)
	config.MustLoad(&logCfg)
	config.MustLoad(&accessCfg)
	config.MustLoad(&liffCfg)
	config.MustLoad(&providerCfg)
	config.MustLoad(&googleCfg)
	config.MustLoad(&githubCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&demoCfg)

	log := logger.NewFromConfig(logCfg)
	logger.SetAsDefault(log)

	users := provider.NewMemoryUserStore()

	var (
		stateStore   provider.StateStore = provider.NewMemoryStateStore()
		profileCache profilecache.Store  = profilecache.NewMemoryStore()
		readiness    []func(context.Context) error
	)
	if redisCfg.Enabled() {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			log.Error("redis connection failed", logger.Error(err))
			os.Exit(1)
		}
		defer client.Close()

		stateStore = provider.NewRedisStateStore(client)
		profileCache = profilecache.NewRedisStore(client)
		readiness = append(readiness, redis.Healthcheck(client))
	}

	localOpts := []provider.LocalOption{
		provider.WithLocalLogger(log),
		provider.WithStateStore(stateStore),
	}
	if googleCfg.ClientID != "" {
		localOpts = append(localOpts, provider.WithAdapter(
			provider.NewGoogleAdapter(googleCfg, providerCfg.RedirectURL),
		))
	}
	if githubCfg.ClientID != "" {
		localOpts = append(localOpts, provider.WithAdapter(
			provider.NewGithubAdapter(githubCfg, providerCfg.RedirectURL),
		))
	}
	local := provider.NewLocalProvider(providerCfg, users, localOpts...)
	defer local.Close()

	detector := access.NewDetector(accessCfg)
	liffClient := liff.NewClient(liffCfg, detector, liff.WithClientLogger(log))

	authSvc := auth.NewService(local, detector, liffClient,
		auth.WithLogger(log),
		auth.WithProfileStore(users),
		auth.WithProfileCache(profileCache),
		auth.WithCallbackURL(providerCfg.RedirectURL),
	)

	// One controller for the whole process. It starts without a request
	// context, so detection reports browser access; per-request detection
	// still happens inside the LINE sign-in path.
	controller := authstate.NewController(authSvc, detector, liffClient,
		authstate.WithControllerLogger(log),
		authstate.WithLineProfileCache(profileCache),
	)
	controller.Start(ctx, access.Environment{})
	defer controller.Close()

	budgetStore := budget.NewStore()
	if demoCfg.Enabled {
		if err := seedDemo(ctx, users, budgetStore, demoCfg); err != nil {
			log.Error("demo seeding failed", logger.Error(err))
			os.Exit(1)
		}
		log.Info("demo account seeded", logger.Component("main"), logger.Event("seed"))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Get("/readyz", httpserver.HealthCheckHandler(log, readiness...))
	r.Mount("/auth", authweb.NewService(authSvc,
		authweb.WithLogger(log),
		authweb.WithStateController(controller),
	).Handle())
	r.Mount("/budget", budget.NewService(budgetStore, authSvc, budget.WithLogger(log)).Handle())

	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("listening", logger.Component("main"), slog.String("addr", httpCfg.Addr))
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			l.Info("shut down", logger.Component("main"))
		}),
	)

	if err := srv.Run(ctx, r); err != nil {
		log.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

// seedDemo registers the demo account and fills it with sample records.
func seedDemo(ctx context.Context, users *provider.MemoryUserStore, store *budget.Store, cfg demoConfig) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &auth.User{
		ID:    uuid.New(),
		Email: cfg.Email,
		Metadata: auth.Metadata{
			DisplayName:  "田中太郎",
			AuthProvider: auth.ProviderEmail,
		},
		CreatedAt: time.Now(),
	}
	if err := users.CreateUser(ctx, user, hash); err != nil {
		return err
	}
	return budget.Seed(ctx, store, user.ID)
}
