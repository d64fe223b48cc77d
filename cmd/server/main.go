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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"

	"calendar-booking-api/internal/config"
	"calendar-booking-api/internal/fanout"
	gweb "calendar-booking-api/internal/grpcweb"
	"calendar-booking-api/internal/handler"
	"calendar-booking-api/internal/memstore"
	"calendar-booking-api/internal/middleware"
	"calendar-booking-api/internal/obs"
	"calendar-booking-api/internal/realtime"
	"calendar-booking-api/internal/rpc"
	"calendar-booking-api/internal/schedule"
	"calendar-booking-api/internal/store"
)

const serviceName = "calendar-booking-api"

// backend is what both the scheduling core and account handlers need.
type backend interface {
	schedule.Store
	handler.Users
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	log := setupLogger(cfg.Env)
	log.WithFields(logrus.Fields{"env": cfg.Env, "grpc": cfg.GRPCPort, "web": cfg.WebPort}).Info("starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, serviceName, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		log.WithError(err).Fatal("tracer")
	}

	st, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	// fanout: local hub first, then the optional cross-instance relay and
	// the durable mirror
	hub := fanout.NewHub(cfg.SubscriberBuffer)
	sinks := []fanout.Sink{hub}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("redis ping")
		}
		relay := fanout.NewRedisRelay(rdb, cfg.RedisChannel, hub, log)
		sinks = append(sinks, relay)
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.WithError(err).Error("redis relay stopped")
			}
		}()
		log.WithField("channel", cfg.RedisChannel).Info("redis relay on")
	}
	if cfg.RabbitURL != "" {
		mq, err := fanout.NewAMQPSink(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			log.WithError(err).Fatal("rabbitmq")
		}
		defer mq.Close()
		sinks = append(sinks, mq)
		log.WithField("exchange", cfg.EventsExchange).Info("event mirror on")
	}
	disp := fanout.NewDispatcher(cfg.FanoutBuffer, log, sinks...)
	dispDone := make(chan struct{})
	go func() {
		disp.Run(ctx)
		close(dispDone)
	}()

	svc := schedule.New(st, disp, log, schedule.WithTracer(otel.Tracer(serviceName+"/schedule")))
	h := handler.New(svc, st, hub, cfg.JWTSecret, log).WithTokenTTL(cfg.TokenTTL)

	// grpc server
	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rl.Run(ctx)
	srv := grpc.NewServer(
		grpc.ForceServerCodec(rpc.Codec{}),
		grpc.ChainUnaryInterceptor(
			middleware.UnaryLogger(log),
			middleware.RateLimit(rl),
			middleware.Auth(cfg.JWTSecret),
		),
		grpc.ChainStreamInterceptor(
			middleware.StreamLogger(log),
			middleware.StreamAuth(cfg.JWTSecret),
		),
	)
	rpc.RegisterCalendarServer(srv, h)

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.WithError(err).Fatal("listen")
	}
	go func() {
		log.Infof("grpc on :%s", cfg.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			log.WithError(err).Error("grpc")
		}
	}()

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	bridge, err := gweb.New("localhost:"+cfg.GRPCPort, log)
	if err != nil {
		log.WithError(err).Fatal("bridge")
	}
	defer bridge.Close()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           realtime.New(svc, hub, cfg.JWTSecret, bridge.Handler(), log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("http on :%s", cfg.WebPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("http")
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// end Subscribe streams and websockets so the servers can drain
	hub.Close()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	stopGRPC(shutdownCtx, srv, log)
	<-dispDone
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.WithError(err).Warn("tracer shutdown")
	}
}

// stopGRPC drains in-flight calls, forcing the stop once ctx expires.
func stopGRPC(ctx context.Context, srv *grpc.Server, log *logrus.Entry) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("grpc drain timed out, forcing stop")
		srv.Stop()
		<-done
	}
}

// openStore connects to Postgres and applies the schema, or returns the
// in-memory store when MEMORY_STORE is set.
func openStore(ctx context.Context, cfg config.App, log *logrus.Entry) (backend, func()) {
	if cfg.MemoryStore {
		log.Warn("using in-memory store, data is lost on restart")
		return memstore.New(), func() {}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("db")
	}
	if err := pool.Ping(ctx); err != nil {
		log.WithError(err).Fatal("db ping")
	}
	log.Info("connected to postgres")

	// run migrations
	if migration, err := os.ReadFile(cfg.MigrationsPath); err != nil {
		log.WithError(err).Warn("migration file not found, skipping")
	} else if _, err := pool.Exec(ctx, string(migration)); err != nil {
		log.WithError(err).Warn("migration failed")
	} else {
		log.Info("migration applied")
	}
	return store.New(pool), pool.Close
}

func setupLogger(env string) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	switch env {
	case config.EnvLocal:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	case config.EnvDev:
		log.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.WarnLevel)
	}
	return logrus.NewEntry(log).WithField("service", serviceName)
}
