package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"turfbook/docs" //this is required to generate swagger docs
	"turfbook/internal/auth"
	"turfbook/internal/domain/bookings"
	"turfbook/internal/domain/storage"
	"turfbook/internal/domain/users"
	"turfbook/internal/events"
	"turfbook/internal/idempotency"
	"turfbook/internal/mailer"
	"turfbook/internal/media"
	"turfbook/internal/notifications"
	"turfbook/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	logger        *zap.SugaredLogger
	media         media.Uploader
	mailer        mailer.Client
	push          notifications.PushSender
	events        events.Publisher
	idempotency   idempotency.Store
	refs          *bookings.ReferenceCoder
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter

	// location is the wall clock booking dates and times are read in.
	location *time.Location
	now      func() time.Time

	wg sync.WaitGroup
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if app.config.RateLimiter.Enabled {
		r.Use(app.RateLimiterMiddleware)
	}

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(app.TimeoutMiddleware(app.config.RequestTimeout))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.Addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		// Public routes
		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		r.Route("/venues", func(r chi.Router) {
			r.With(app.OptionalAuthMiddleware).Get("/", app.listVenuesHandler)
			r.With(app.AuthTokenMiddleware, app.RequireRole(users.RoleVenueOwner, users.RoleAdmin)).
				Post("/", app.createVenueHandler)

			r.Route("/{venueID}", func(r chi.Router) {
				r.With(app.OptionalAuthMiddleware).Get("/", app.getVenueHandler)
				r.With(app.OptionalAuthMiddleware).Get("/turfs", app.listVenueTurfsHandler)

				r.Group(func(r chi.Router) {
					r.Use(app.AuthTokenMiddleware)
					r.Use(app.RequireRole(users.RoleVenueOwner, users.RoleAdmin))
					r.Delete("/", app.deleteVenueHandler)
					//Call DELETE /venues/{venueID}/photos?photo_url={url}.
					r.Post("/photos", app.uploadVenuePhotoHandler)
					r.Delete("/photos", app.deleteVenuePhotoHandler)
					r.Post("/turfs", app.createTurfHandler)
				})
			})
		})

		r.Route("/turfs", func(r chi.Router) {
			r.Get("/", app.listTurfsHandler)
			r.Route("/{turfID}", func(r chi.Router) {
				r.With(app.OptionalAuthMiddleware).Get("/", app.getTurfHandler)
				r.Get("/availability", app.turfAvailabilityHandler)
				r.With(app.AuthTokenMiddleware, app.RequireRole(users.RoleVenueOwner, users.RoleAdmin)).
					Post("/photos", app.uploadTurfPhotoHandler)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.createBookingHandler)
			r.With(app.RequireRole(users.RoleVenueOwner, users.RoleAdmin)).
				Get("/reference/{reference}", app.getBookingByReferenceHandler)

			r.Route("/{bookingID}", func(r chi.Router) {
				r.Get("/", app.getBookingHandler)
				r.Patch("/", app.updateBookingHandler)
				r.Get("/pass.png", app.bookingPassHandler)
				r.Post("/cancel", app.cancelBookingHandler)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", app.listReviewsHandler)
			r.With(app.AuthTokenMiddleware).Post("/", app.createReviewHandler)
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/", app.getCurrentUserHandler)
			r.Get("/bookings", app.listMyBookingsHandler)
			r.Put("/push-token", app.savePushTokenHandler)
			r.Delete("/push-token", app.removePushTokenHandler)
		})

		r.Route("/owner", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RequireRole(users.RoleVenueOwner))
			r.Get("/venues", app.listOwnerVenuesHandler)
			r.Get("/bookings", app.listOwnerBookingsHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RequireRole(users.RoleAdmin))

			r.Get("/overview", app.adminOverviewHandler)
			r.Get("/revenue", app.adminRevenueHandler)

			r.Get("/venues", app.adminListVenuesHandler)
			r.Patch("/venues/{venueID}", app.adminUpdateVenueHandler)
			r.Get("/turfs", app.adminListTurfsHandler)
			r.Patch("/turfs/{turfID}", app.adminUpdateTurfHandler)
			r.Get("/bookings", app.adminListBookingsHandler)
			r.Get("/users", app.adminListUsersHandler)
			r.Patch("/users/{userID}", app.adminUpdateUserHandler)
			r.Get("/audit", app.adminListAuditHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.APIURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.Addr,
		Handler:      mux,
		WriteTimeout: app.config.RequestTimeout + 15*time.Second,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	app.startJobs(jobsCtx)

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		err := srv.Shutdown(ctx)
		stopJobs()

		app.logger.Infow("completing background tasks", "addr", app.config.Addr)
		app.wg.Wait()

		shutdown <- err
	}()

	app.logger.Infow("server has started", "addr", app.config.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.Addr, "env", app.config.Env)

	return nil
}
