package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faeln1/go-guild-notifier/internal/app/controllers"
	"github.com/faeln1/go-guild-notifier/internal/app/repositories"
	"github.com/faeln1/go-guild-notifier/internal/app/services"
	"github.com/faeln1/go-guild-notifier/internal/config"
	"github.com/faeln1/go-guild-notifier/internal/domain/membership"
	"github.com/faeln1/go-guild-notifier/internal/platform/database"
	"github.com/faeln1/go-guild-notifier/internal/platform/discord"
	httpPlatform "github.com/faeln1/go-guild-notifier/internal/platform/http"
	"github.com/faeln1/go-guild-notifier/pkg/eventlog"
	"github.com/faeln1/go-guild-notifier/pkg/logger"
	storagepkg "github.com/faeln1/go-guild-notifier/pkg/storage"
	minioStorage "github.com/faeln1/go-guild-notifier/pkg/storage/minio"
	"github.com/joho/godotenv"
	waLog "go.mau.fi/whatsmeow/util/log"
)

func main() {
	invite := flag.Bool("invite", false, "print the bot invite URL and QR code, then exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	if *invite {
		if err := discord.PrintInviteQR(config.Load().ApplicationID); err != nil {
			log.Fatalf("invite: %v", err)
		}
		return
	}

	cfg := config.MustLoad()
	loggers := logger.New(cfg.LogLevel)

	fileRoutes, err := config.LoadGuildRoutes(cfg.GuildConfigPath)
	if err != nil {
		if cfg.DBDriver != "postgres" {
			log.Fatalf("guild config: %v", err)
		}
		loggers.App.Warnf("guild config not loaded, using stored routes only: %v", err)
	}
	loggers.App.Infof("loaded %d guild route(s) from %s", len(fileRoutes), cfg.GuildConfigPath)

	var (
		routeRepo   repositories.GuildRouteRepository
		historyRepo repositories.DepartureHistoryRepository
		closers     []func() error
	)

	switch cfg.DBDriver {
	case "postgres":
		loggers.Store.Infof("initializing postgres repositories")
		gormDB, err := database.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("database connection error: %v", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			log.Fatalf("database handle retrieval error: %v", err)
		}
		closers = append(closers, sqlDB.Close)

		routeRepo, err = repositories.NewGormGuildRouteRepo(gormDB)
		if err != nil {
			log.Fatalf("route repository initialization error: %v", err)
		}
		seedRoutes(context.Background(), routeRepo, fileRoutes, loggers.Store)

		historyDB, err := database.OpenSQL(repositories.DialectPostgres, cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("history database connection error: %v", err)
		}
		closers = append(closers, historyDB.Close)
		historyRepo, err = repositories.NewSQLDepartureHistoryRepo(historyDB, repositories.DialectPostgres)
		if err != nil {
			log.Fatalf("history repository initialization error: %v", err)
		}
	case "sqlite":
		loggers.Store.Infof("initializing sqlite history repository")
		routeRepo = repositories.NewInMemoryGuildRouteRepo(fileRoutes)
		historyDB, err := database.OpenSQL(repositories.DialectSQLite, cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("history database connection error: %v", err)
		}
		closers = append(closers, historyDB.Close)
		historyRepo, err = repositories.NewSQLDepartureHistoryRepo(historyDB, repositories.DialectSQLite)
		if err != nil {
			log.Fatalf("history repository initialization error: %v", err)
		}
	default:
		loggers.Store.Infof("initializing in-memory repositories")
		routeRepo = repositories.NewInMemoryGuildRouteRepo(fileRoutes)
		historyRepo = repositories.NewInMemoryDepartureHistoryRepo(cfg.HistoryCapacity)
	}
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Printf("error closing database: %v", err)
			}
		}
	}()

	var objectStorage storagepkg.Service
	if cfg.Storage.Enabled() {
		store, err := minioStorage.New(context.Background(), minioStorage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Prefix:    cfg.Storage.Prefix,
			UseSSL:    cfg.Storage.UseSSL,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			log.Fatalf("storage initialization error: %v", err)
		}
		objectStorage = store
		loggers.Store.Infof("event archive bucket=%s endpoint=%s", cfg.Storage.Bucket, cfg.Storage.Endpoint)
	}

	client, err := discord.NewClient(cfg.DiscordToken, cfg.StatusText, loggers.Gateway)
	if err != nil {
		log.Fatalf("discord client error: %v", err)
	}

	registry := services.NewCacheRegistry()
	resolver := services.NewCachedUserResolver(client, cfg.UserCacheSize, cfg.UserCacheTTL)
	dispatcher := services.NewWebhookDispatcher(
		services.NewNotificationDispatcher(routeRepo, client, cfg.DispatchRate, loggers.Dispatch),
		routeRepo,
		services.WebhookConfig{URL: cfg.Webhook.URL, Roles: cfg.Webhook.Roles, Headers: cfg.Webhook.Headers},
		nil,
		loggers.Dispatch.Sub("Webhook"),
	)
	engine := services.NewReconciliationEngine(registry, resolver, dispatcher, historyRepo, services.ReconcileConfig{
		GraceInterval:   cfg.Reconcile.GraceInterval,
		RecheckAttempts: cfg.Reconcile.RecheckAttempts,
		RecheckInterval: cfg.Reconcile.RecheckInterval,
	}, loggers.Engine)

	eventLogger := eventlog.NewWriter(cfg.EventLogDir, objectStorage, loggers.App.Sub("EventLog"))
	bootstrap := services.NewGatewayBootstrap(loggers.Gateway, engine, engine, eventLogger)
	bootstrap.Attach(client.Session())

	if err := client.Open(); err != nil {
		log.Fatalf("gateway error: %v", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Printf("error closing gateway: %v", err)
		}
	}()

	var srv *http.Server
	if cfg.HTTPPort != "" {
		router := httpPlatform.NewRouter(httpPlatform.RouterConfig{
			DiagnosticsCtrl: controllers.NewDiagnosticsController(engine, historyRepo, client),
			RouteCtrl:       controllers.NewRouteController(routeRepo),
			Logger:          loggers.HTTP,
			MasterToken:     cfg.MasterToken,
		})
		srv = &http.Server{Addr: ":" + cfg.HTTPPort, Handler: router, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			loggers.HTTP.Infof("diagnostics listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				loggers.HTTP.Errorf("server error: %v", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	loggers.App.Infof("shutting down...")
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func seedRoutes(ctx context.Context, repo repositories.GuildRouteRepository, routes []membership.GuildRoute, log waLog.Logger) {
	for _, route := range routes {
		if err := repo.Upsert(ctx, route); err != nil {
			log.Warnf("failed to seed route for guild %s: %v", route.GuildID, err)
		}
	}
}
