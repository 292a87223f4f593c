package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/wellness-booking/internal/config"
	"github.com/Leganyst/wellness-booking/internal/db"
	"github.com/Leganyst/wellness-booking/internal/model"
	"github.com/Leganyst/wellness-booking/internal/notify"
	"github.com/Leganyst/wellness-booking/internal/numbering"
	"github.com/Leganyst/wellness-booking/internal/repository"
	"github.com/Leganyst/wellness-booking/internal/service"
	"github.com/Leganyst/wellness-booking/internal/transport/rest"
	"github.com/Leganyst/wellness-booking/internal/transport/rpc"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	// 1. .env необязателен.
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file, using environment")
	}

	// 2. Конфиг: дефолты, config/config.yaml, BOOKING_*.
	cfg, err := config.Load(os.Getenv("BOOKING_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if lvl, err := logrus.ParseLevel(cfg.App.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	loc, err := cfg.App.Location()
	if err != nil {
		log.Fatalf("timezone: %v", err)
	}

	// 3. БД и миграции.
	gormDB, err := db.NewGormDB(&cfg.Database)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	store := repository.NewStore(gormDB)

	// 4. Нумерация.
	var seq numbering.Sequencer = numbering.NewCountSequencer(store.Bookings)
	if cfg.Numbering.Sequencer == config.SequencerRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		seq = numbering.NewRedisSequencer(rdb, cfg.Numbering.RedisKey)
		log.WithField("addr", cfg.Redis.Addr).Info("redis sequencer enabled")
	}
	numbers := numbering.NewGenerator(seq, loc, nil)

	// 5. Уведомления.
	sinks, closeSinks := buildSinks(cfg, log)
	defer closeSinks()

	dispatcher := notify.NewDispatcher(sinks, notify.Config{
		PractitionerEmail:  cfg.App.PractitionerEmail,
		PractitionerChatID: chatIfRouted(sinks, cfg.App.PractitionerChatID),
		ClientSMS:          cfg.Notify.ClientSMS && sinks.Has(notify.ChannelSMS),
		Events:             sinks.Has(notify.ChannelEvent),
		Location:           loc,
	}, log)

	// 6. Сервисы.
	catalog, err := buildCatalog(cfg.Catalog)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	hooks := service.NewPostCommit(log, cfg.Hooks.Timeout)
	workflow := service.NewWorkflowService(store, numbers, dispatcher, hooks, service.WorkflowConfig{
		Location:          loc,
		QuoteValidityDays: cfg.App.QuoteValidityDays,
		InvoiceDueDays:    cfg.App.InvoiceDueDays,
		HistoryRetry: service.RetryPolicy{
			Attempts:  cfg.Hooks.Attempts,
			BaseDelay: cfg.Hooks.BaseDelay,
		},
		Catalog: catalog,
	}, log)
	queries := service.NewQueryService(store, loc, log)
	profiles := service.NewProfileService(store.Clients, log, nil)

	// 7. gRPC.
	grpcServer := rpc.NewGRPCServer(rpc.NewServer(workflow, queries, catalog, log), log)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.Server.GRPCAddr, err)
	}
	go func() {
		log.WithField("addr", cfg.Server.GRPCAddr).Info("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("grpc serve: %v", err)
		}
	}()

	// 8. HTTP.
	switch cfg.Server.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}
	handler := rest.NewHandler(workflow, queries, profiles, catalog, store, log)
	httpServer := &http.Server{
		Addr: cfg.Server.HTTPAddr,
		Handler: rest.NewRouter(handler, rest.RouterOptions{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RequestTimeout: cfg.Server.RequestTimeout,
		}, log),
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
	}
	go func() {
		log.WithField("addr", cfg.Server.HTTPAddr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http serve: %v", err)
		}
	}()

	// 9. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	grpcServer.GracefulStop()
	// Дождаться уведомлений, ушедших в фон.
	hooks.Wait()
}
