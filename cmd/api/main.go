package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"trainingdesk/internal/accident"
	"trainingdesk/internal/booking"
	"trainingdesk/internal/events"
	"trainingdesk/internal/httpapi"
	"trainingdesk/internal/scheduler"
	"trainingdesk/pkg/config"
	"trainingdesk/pkg/db"
	"trainingdesk/pkg/logger"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg)
	if err != nil {
		zlog.Fatal("db open", zap.Error(err))
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
			zlog.Fatal("migrate", zap.Error(err))
		}
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		zlog.Fatal("load timezone", zap.String("zone", cfg.TimeZone), zap.Error(err))
	}

	bookingsRepo := booking.NewRepository(conn)
	eventsRepo := events.NewRepository(conn)
	accidentsRepo := accident.NewRepository(conn)
	engine := booking.NewEngine(bookingsRepo, eventsRepo, zlog, loc)

	sched := scheduler.New(zlog, scheduler.Jobs{
		BookingStatuses: func(ctx context.Context) (int64, error) {
			res, err := engine.AutoUpdateStatuses(ctx)
			return int64(res.AwaitingClosure), err
		},
		AnonymiseReports: func(ctx context.Context) (int64, error) {
			return accidentsRepo.Anonymise(ctx, time.Now().In(loc), cfg.AccidentAnonTestIntervalMin > 0)
		},
	}, cfg.BookingTestIntervalMin, cfg.AccidentAnonTestIntervalMin)
	sched.Start()

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg: cfg,
		DB:  conn,
		Log: zlog,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("http serve", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
	sched.Stop()
}
