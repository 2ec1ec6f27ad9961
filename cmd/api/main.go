package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"time"

	"turfbook/internal/auth"
	"turfbook/internal/db"
	"turfbook/internal/domain/bookings"
	"turfbook/internal/domain/storage"
	"turfbook/internal/events"
	"turfbook/internal/idempotency"
	"turfbook/internal/mailer"
	"turfbook/internal/media"
	"turfbook/internal/notifications"
	"turfbook/internal/ratelimiter"

	"github.com/9ssi7/exponent"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new zap logger with color.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(os.Stdout), lvl)
	return zap.New(core).Sugar(), nil
}

var version = "1.0.0"

const idempotencyTTL = 24 * time.Hour

//	@title			Turfbook API
//	@description	API for Turfbook, a turf and venue booking marketplace.

//	@contact.name	API Support
//	@contact.url	http://www.swagger.io/support
//	@contact.email	support@swagger.io

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@BasePath					/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description

func main() {
	// .env is optional; in containers everything comes from the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "error loading .env file:", err)
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error creating logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	loc, _ := time.LoadLocation(cfg.Timezone)

	// Database
	pool, err := db.New(cfg.DB.Addr, cfg.DB.MaxConns, cfg.DB.MaxIdleTime)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	refs, err := bookings.NewReferenceCoder(cfg.HashidsSalt)
	if err != nil {
		logger.Fatal(err)
	}

	// Media
	var uploader media.Uploader = media.Disabled{}
	if cfg.CloudinaryURL != "" {
		cld, err := media.NewCloudinary(cfg.CloudinaryURL)
		if err != nil {
			logger.Fatal(err)
		}
		uploader = cld
	} else {
		logger.Warn("CLOUDINARY_URL not set, photo uploads are disabled")
	}

	// Idempotency keys live in redis when it is configured
	var idem idempotency.Store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Fatalw("redis ping failed", "addr", cfg.Redis.Addr, "error", err)
		}
		defer rdb.Close()
		idem = idempotency.NewRedisStore(rdb, idempotencyTTL)
		logger.Infow("redis connected", "addr", cfg.Redis.Addr)
	} else {
		idem = idempotency.NewMemoryStore(idempotencyTTL)
	}

	// Events
	var publisher events.Publisher = events.Nop{}
	if cfg.AMQP.URL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logger.Fatalw("amqp connect failed", "error", err)
		}
		publisher = p
		logger.Infow("amqp publisher ready", "exchange", cfg.AMQP.Exchange)
	}
	defer publisher.Close()

	// Mail
	var mail mailer.Client = mailer.Disabled{}
	smtp, err := mailer.NewSMTPClient(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.FromEmail)
	switch {
	case err == nil:
		mail = smtp
	case errors.Is(err, mailer.ErrNotConfigured):
		logger.Warn("SMTP not configured, e-mails are disabled")
	default:
		logger.Fatal(err)
	}

	// Push
	var push notifications.PushSender = notifications.Disabled{}
	if cfg.ExpoAccessToken != "" {
		push = notifications.NewExpoAdapter(exponent.NewClient(exponent.WithAccessToken(cfg.ExpoAccessToken)))
	}

	// Rate limiter
	rateLimiter := ratelimiter.NewTokenBucketLimiter(
		cfg.RateLimiter.RequestsPerTimeFrame,
		cfg.RateLimiter.TimeFrame,
	)
	defer rateLimiter.Stop()

	// Authenticator
	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.Auth.Token.Secret,
		cfg.Auth.Token.RefreshSecret,
		cfg.Auth.Token.Iss,
		cfg.Auth.Token.Iss,
		cfg.Auth.Token.AccessExp,
		cfg.Auth.Token.RefreshExp,
	)

	app := &application{
		config:        cfg,
		store:         storage.NewContainer(pool),
		logger:        logger,
		media:         uploader,
		mailer:        mail,
		push:          push,
		events:        publisher,
		idempotency:   idem,
		refs:          refs,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
		location:      loc,
		now:           time.Now,
	}

	//Metrics collected http://localhost:8080/v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]any{
			"total_conns":    s.TotalConns(),
			"idle_conns":     s.IdleConns(),
			"acquired_conns": s.AcquiredConns(),
			"max_conns":      s.MaxConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	if err := app.run(mux); err != nil {
		logger.Error(err)
	}
}
