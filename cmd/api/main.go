package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/vaughan-dsouza/campdirectory/internal/config"
	"github.com/vaughan-dsouza/campdirectory/internal/db"
	"github.com/vaughan-dsouza/campdirectory/internal/geocode"
	"github.com/vaughan-dsouza/campdirectory/internal/handlers"
	"github.com/vaughan-dsouza/campdirectory/internal/mailer"
	"github.com/vaughan-dsouza/campdirectory/internal/middleware"
	"github.com/vaughan-dsouza/campdirectory/internal/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		logrus.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}
	if cfg.Production() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	dbConn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("db connect: %v", err)
	}
	defer dbConn.Close()

	if err := db.Migrate(dbConn); err != nil {
		logrus.Fatalf("db migrate: %v", err)
	}

	h := handlers.New(dbConn, cfg,
		geocode.New(cfg.GeocoderURL, cfg.GeocoderAPIKey),
		mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName))

	protect := middleware.Protect(dbConn, cfg.JWTSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(cors.AllowAll().Handler)
	r.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateWindow))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/forgotpassword", h.Auth.ForgotPassword)
			r.Put("/resetpassword/{resettoken}", h.Auth.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(protect)
				r.Get("/logout", h.Auth.Logout)
				r.Get("/me", h.Auth.Me)
				r.Put("/updatedetails", h.Auth.UpdateDetails)
				r.Put("/updatepassword", h.Auth.UpdatePassword)
			})
		})

		r.Route("/bootcamps", func(r chi.Router) {
			r.Get("/", h.Bootcamps.List)
			r.Get("/radius/{zipcode}/{distance}", h.Bootcamps.InRadius)
			r.Get("/{bootcampID}", h.Bootcamps.Get)

			// Nested resource routes.
			r.Get("/{bootcampID}/courses", h.Courses.List)
			r.Get("/{bootcampID}/reviews", h.Reviews.List)

			r.Group(func(r chi.Router) {
				r.Use(protect)

				r.Group(func(r chi.Router) {
					r.Use(middleware.Authorize(models.RolePublisher, models.RoleAdmin))
					r.Post("/", h.Bootcamps.Create)
					r.Put("/{bootcampID}", h.Bootcamps.Update)
					r.Delete("/{bootcampID}", h.Bootcamps.Delete)
					r.Put("/{bootcampID}/photo", h.Bootcamps.UploadPhoto)
					r.Post("/{bootcampID}/courses", h.Courses.Create)
				})

				r.With(middleware.Authorize(models.RoleUser, models.RoleAdmin)).
					Post("/{bootcampID}/reviews", h.Reviews.Create)
			})
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", h.Courses.List)
			r.Get("/{id}", h.Courses.Get)

			r.Group(func(r chi.Router) {
				r.Use(protect, middleware.Authorize(models.RolePublisher, models.RoleAdmin))
				r.Put("/{id}", h.Courses.Update)
				r.Delete("/{id}", h.Courses.Delete)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", h.Reviews.List)
			r.Get("/{id}", h.Reviews.Get)

			r.Group(func(r chi.Router) {
				r.Use(protect, middleware.Authorize(models.RoleUser, models.RoleAdmin))
				r.Put("/{id}", h.Reviews.Update)
				r.Delete("/{id}", h.Reviews.Delete)
			})
		})

		r.Route("/users", func(r chi.Router) {
			// Publicly nested listing; admin CRUD below.
			r.Get("/{userID}/reviews", h.Reviews.List)

			r.Group(func(r chi.Router) {
				r.Use(protect, middleware.Authorize(models.RoleAdmin))

				r.Get("/", h.Users.List)
				r.Post("/", h.Users.Create)
				r.Get("/{userID}", h.Users.Get)
				r.Put("/{userID}", h.Users.Update)
				r.Delete("/{userID}", h.Users.Delete)
			})
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logrus.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.Env}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logrus.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("server forced to shutdown: %v", err)
	}

	logrus.Info("server exited")
}
