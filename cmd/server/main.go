package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-room-reservation/internal/config"
	"github.com/iliyamo/hotel-room-reservation/internal/database"
	"github.com/iliyamo/hotel-room-reservation/internal/handler"
	"github.com/iliyamo/hotel-room-reservation/internal/integration"
	"github.com/iliyamo/hotel-room-reservation/internal/middleware"
	"github.com/iliyamo/hotel-room-reservation/internal/queue"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
	"github.com/iliyamo/hotel-room-reservation/internal/repository/memory"
	"github.com/iliyamo/hotel-room-reservation/internal/router"
	"github.com/iliyamo/hotel-room-reservation/internal/service"
	"github.com/iliyamo/hotel-room-reservation/internal/utils"
)

const (
	uploadsPath = "/uploads"
	eventBuffer = 256
)

type stores struct {
	users    repository.Users
	rooms    repository.Rooms
	bookings repository.Bookings
	db       *sql.DB
}

func openStores(cfg config.Config) stores {
	if cfg.Storage == config.StorageMemory {
		logrus.Warn("using in-memory storage; data is lost on restart")
		st := memory.New()
		return stores{users: st.Users(), rooms: st.Rooms(), bookings: st.Bookings()}
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("database unavailable")
	}
	return stores{
		users:    repository.NewUserRepo(db),
		rooms:    repository.NewRoomRepo(db),
		bookings: repository.NewBookingRepo(db),
		db:       db,
	}
}

func newBlobStore(cfg config.Config) service.BlobStore {
	if cfg.BlobDriver == "cloudinary" {
		cs, err := integration.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, "rooms")
		if err != nil {
			logrus.WithError(err).Fatal("cloudinary config")
		}
		return cs
	}
	return &integration.DiskStore{Dir: cfg.UploadDir, BaseURL: cfg.PublicBaseURL + uploadsPath}
}

func newRevocations(rdb *redis.Client) repository.Revocations {
	if rdb == nil {
		return memory.NewRevocations(time.Now)
	}
	return repository.NewRedisRevocationStore(rdb, "revoked")
}

func main() {
	cfg := config.Load()
	if cfg.IsProd() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logrus.SetLevel(logrus.DebugLevel)
	}

	st := openStores(cfg)
	if st.db != nil {
		defer st.db.Close()
	}
	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	limitCfg := config.LoadRateLimitConfig()

	engine := service.NewAvailabilityEngine(st.rooms, st.bookings, time.Now)

	var ledgerOpts []service.LedgerOption
	var events *queue.Dispatcher
	if cfg.EventsEnabled {
		events = queue.NewDispatcher(queue.NewPublisher(cfg.RabbitMQURL), eventBuffer)
		ledgerOpts = append(ledgerOpts, service.WithEvents(events))
		go queue.StartBookingConsumer(cfg.RabbitMQURL, cfg.BookingLog)
	}
	ledger := service.NewReservationLedger(engine, st.bookings, st.users, ledgerOpts...)

	catalog := service.NewRoomCatalog(st.rooms, st.bookings, newBlobStore(cfg), engine, func(ctx context.Context) {
		if err := middleware.InvalidateCache(ctx, rdb, cacheCfg.Prefix); err != nil {
			logrus.WithError(err).Warn("room cache invalidation failed")
		}
	})

	codec := utils.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL, time.Now)
	auth := service.NewAuthenticator(st.users, codec, cfg.BcryptCost,
		service.WithRevocations(newRevocations(rdb)),
		service.WithAdminSignup(cfg.AllowAdminSignup),
		service.WithSubjectCheck(cfg.CheckSubject),
	)

	var gateway service.PaymentGateway
	if cfg.StripeSecretKey != "" {
		gateway = integration.NewStripeGateway(cfg.StripeSecretKey, cfg.PaymentCurrency)
	} else {
		logrus.Warn("STRIPE_SECRET_KEY not set; payment intents disabled")
	}
	var gen service.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gen = integration.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	} else {
		logrus.Warn("GEMINI_API_KEY not set; concierge answers with fallbacks")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			entry := logrus.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
			} else {
				entry.Info("request")
			}
			return nil
		},
	}))
	if cfg.BlobDriver != "cloudinary" {
		e.Static(uploadsPath, cfg.UploadDir)
	}

	guards := router.Guards{
		Auth:  auth,
		Cache: middleware.NewRedisCache(cacheCfg, rdb),
		Limit: middleware.NewTokenBucket(limitCfg, rdb),
	}
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(auth, cfg.TokenTTL), guards)
	router.RegisterRooms(e, handler.NewRoomHandler(catalog, engine), guards)
	router.RegisterBookings(e, handler.NewBookingHandler(ledger, catalog), guards)
	router.RegisterUsers(e, handler.NewUserHandler(service.NewUserDirectory(st.users, ledger)), guards)
	router.RegisterPayments(e, handler.NewPaymentHandler(service.NewPayments(gateway)), guards)
	router.RegisterConcierge(e, handler.NewConciergeHandler(service.NewConcierge(gen, catalog)), guards)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	go func() {
		logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "storage": cfg.Storage}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("shutdown")
	}
	if events != nil {
		if err := events.Close(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("pending booking events dropped")
		}
	}
}
